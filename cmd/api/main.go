package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/config"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/db"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/disbursement"
	loandomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/partner"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/report"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/handlers"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/observability"
	postgresrepo "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/repository/postgres"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/server"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/ws"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	annualRate, err := decimal.NewFromString(cfg.AnnualInterestRate)
	if err != nil {
		logger.Error("invalid annual interest rate", "value", cfg.AnnualInterestRate, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(
		db.NewAuthRepository(pool),
		jwtManager,
		cfg.JWTAccessTTL,
		cfg.ResetTokenTTL,
		int(cfg.MinPasswordLen),
		cfg.BootstrapAdminEnabled,
		cfg.FrontendResetURL,
	)

	orgRepo := postgresrepo.NewOrganizationRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	linkRepo := postgresrepo.NewLoanLinkRepository(pool)
	customerRepo := postgresrepo.NewCustomerRepository(pool)
	appRepo := postgresrepo.NewApplicationRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	disbRepo := postgresrepo.NewDisbursementRepository(pool)
	remitRepo := postgresrepo.NewRemittanceRepository(pool)
	partnerRepo := postgresrepo.NewPartnerRepository(pool)
	reportRepo := postgresrepo.NewReportRepository(pool)

	orgService := organization.NewService(orgRepo)
	productService := product.NewService(productRepo)
	linkService := loanlink.NewService(linkRepo, orgRepo, productRepo)
	customerService := customer.NewService(customerRepo, cfg.AccountNumberPrefix)
	loanService := loandomain.NewService(loanRepo, annualRate)
	appService := application.NewService(appRepo, customerService, productRepo, linkRepo, linkService, loanRepo)
	disbService := disbursement.NewService(disbRepo, appService, customerService, annualRate)

	hub := ws.NewHub()
	remitService := remittance.NewService(remitRepo, orgRepo, ws.NewBroadcaster(hub), cfg.AccountNumberPrefix)
	partnerService := partner.NewService(partnerRepo, orgRepo, jwtManager, cfg.JWTAccessTTL, cfg.InviteTTL, int(cfg.MinPasswordLen), cfg.FrontendBaseURL)
	reportService := report.NewService(reportRepo, orgRepo)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:                  pool,
		AuthHandler:             handlers.NewAuthHandler(authService),
		OrganizationHandler:     handlers.NewOrganizationHandler(orgService),
		ProductHandler:          handlers.NewProductHandler(productService),
		LoanLinkHandler:         handlers.NewLoanLinkHandler(linkService),
		CustomerHandler:         handlers.NewCustomerHandler(customerService, appService),
		ApplicationHandler:      handlers.NewApplicationHandler(appService),
		LoanHandler:             handlers.NewLoanHandler(loanService),
		DisbursementHandler:     handlers.NewDisbursementHandler(disbService),
		RemittanceHandler:       handlers.NewRemittanceHandler(remitService),
		AdminRemittanceHandler:  handlers.NewAdminRemittanceHandler(remitService),
		PartnerHandler:          handlers.NewPartnerHandler(partnerService),
		PartnerDashboardHandler: handlers.NewPartnerDashboardHandler(partnerService, remitService),
		ReportHandler:           handlers.NewReportHandler(reportService),
		WSHandler:               ws.NewHandler(hub),
		JWTManager:              jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
