package server

import (
	"log/slog"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/config"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/handlers"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/middleware"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/version"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/ws"
	"github.com/gin-gonic/gin"
)

const maxRequestBody = 1 << 20

type Dependencies struct {
	Pinger                  handlers.Pinger
	AuthHandler             *handlers.AuthHandler
	OrganizationHandler     *handlers.OrganizationHandler
	ProductHandler          *handlers.ProductHandler
	LoanLinkHandler         *handlers.LoanLinkHandler
	CustomerHandler         *handlers.CustomerHandler
	ApplicationHandler      *handlers.ApplicationHandler
	LoanHandler             *handlers.LoanHandler
	DisbursementHandler     *handlers.DisbursementHandler
	RemittanceHandler       *handlers.RemittanceHandler
	AdminRemittanceHandler  *handlers.AdminRemittanceHandler
	PartnerHandler          *handlers.PartnerHandler
	PartnerDashboardHandler *handlers.PartnerDashboardHandler
	ReportHandler           *handlers.ReportHandler
	WSHandler               *ws.Handler
	JWTManager              *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(maxRequestBody))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	requireStaff := middleware.RequireStaff(deps.JWTManager)
	requirePartner := middleware.RequirePartner(deps.JWTManager)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	reviewRoles := middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleLoanOfficer)
	disburseRoles := middleware.RequireRole(auth.RoleAdmin, auth.RoleCashier, auth.RoleAuthorizer)
	reconcileRoles := middleware.RequireRole(auth.RoleAdmin, auth.RoleAuthorizer)
	reportRoles := middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)

	authGroup := r.Group("/v1/auth")
	authGroup.POST("/login", deps.AuthHandler.Login)
	authGroup.POST("/bootstrap-admin", deps.AuthHandler.BootstrapAdmin)
	authGroup.POST("/forgot-password", deps.AuthHandler.ForgotPassword)
	authGroup.POST("/reset-password", deps.AuthHandler.ResetPassword)

	authProtected := authGroup.Group("", requireStaff)
	authProtected.GET("/me", deps.AuthHandler.Me)
	authProtected.POST("/change-password", deps.AuthHandler.ChangePassword)
	authProtected.POST("/users", adminOnly, deps.AuthHandler.CreateUser)
	authProtected.GET("/users", adminOnly, deps.AuthHandler.ListUsers)
	authProtected.POST("/users/:id/reset-password", adminOnly, deps.AuthHandler.AdminResetPassword)

	// Unauthenticated application flow behind a loan link token.
	public := r.Group("/v1/public")
	public.GET("/links/:token", deps.LoanLinkHandler.ResolvePublic)
	public.POST("/links/:token/applications", deps.ApplicationHandler.SubmitPublic)

	staff := r.Group("/v1", requireStaff)

	orgs := staff.Group("/organizations")
	orgs.POST("", adminOnly, deps.OrganizationHandler.Create)
	orgs.GET("", deps.OrganizationHandler.List)
	orgs.GET("/:id", deps.OrganizationHandler.Get)
	orgs.PATCH("/:id", adminOnly, deps.OrganizationHandler.Update)
	orgs.POST("/:id/activate", adminOnly, deps.OrganizationHandler.Activate)
	orgs.POST("/:id/deactivate", adminOnly, deps.OrganizationHandler.Deactivate)

	products := staff.Group("/products")
	products.POST("", adminOnly, deps.ProductHandler.Create)
	products.GET("", deps.ProductHandler.List)
	products.GET("/:id", deps.ProductHandler.Get)
	products.PATCH("/:id", adminOnly, deps.ProductHandler.Update)

	links := staff.Group("/links")
	links.POST("", reviewRoles, deps.LoanLinkHandler.Create)
	links.GET("", deps.LoanLinkHandler.List)
	links.GET("/:id", deps.LoanLinkHandler.Get)
	links.POST("/:id/deactivate", reviewRoles, deps.LoanLinkHandler.Deactivate)

	customers := staff.Group("/customers")
	customers.POST("", reviewRoles, deps.CustomerHandler.Create)
	customers.GET("", deps.CustomerHandler.List)
	customers.GET("/:id", deps.CustomerHandler.Get)
	customers.GET("/:id/history", deps.CustomerHandler.History)
	customers.GET("/by-staff/:orgId/:staffId", deps.CustomerHandler.GetByStaffID)

	applications := staff.Group("/loan-applications")
	applications.POST("", reviewRoles, deps.ApplicationHandler.Create)
	applications.GET("", deps.ApplicationHandler.List)
	applications.GET("/:id", deps.ApplicationHandler.Get)
	applications.PATCH("/:id/status", reviewRoles, deps.ApplicationHandler.UpdateStatus)

	loans := staff.Group("/loans")
	loans.POST("", adminOnly, deps.LoanHandler.Create)
	loans.GET("", deps.LoanHandler.List)
	loans.GET("/:id", deps.LoanHandler.Get)

	repayments := staff.Group("/repayments")
	repayments.GET("/loan/:id", deps.LoanHandler.ListRepayments)
	repayments.GET("/:id", deps.LoanHandler.GetRepayment)
	repayments.PATCH("/:id/pay", deps.LoanHandler.PayRepayment)
	repayments.PATCH("/:id/reverse", reconcileRoles, deps.LoanHandler.ReverseRepayment)

	disbursements := staff.Group("/disbursements", disburseRoles)
	disbursements.POST("/application/:id", deps.DisbursementHandler.Disburse)
	disbursements.GET("/application/:id", deps.DisbursementHandler.GetByApplication)

	remitAccounts := staff.Group("/remittance-accounts")
	remitAccounts.POST("", reconcileRoles, deps.RemittanceHandler.CreateAccount)
	remitAccounts.GET("", deps.RemittanceHandler.ListAccounts)
	remitAccounts.GET("/active/:orgId", deps.RemittanceHandler.ActiveAccount)

	staff.POST("/remittance/ingest", disburseRoles, deps.RemittanceHandler.Ingest)

	adminRemit := staff.Group("/admin/remittances", reconcileRoles)
	adminRemit.GET("/transactions", deps.AdminRemittanceHandler.List)
	adminRemit.GET("/transactions/:id", deps.AdminRemittanceHandler.Get)
	adminRemit.GET("/transactions/:id/allocations", deps.AdminRemittanceHandler.Allocations)
	adminRemit.POST("/transactions/:id/apply", deps.AdminRemittanceHandler.Apply)
	adminRemit.POST("/transactions/:id/reverse", deps.AdminRemittanceHandler.Reverse)
	adminRemit.GET("/summary", deps.AdminRemittanceHandler.Summary)

	inviteRoles := middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)
	staff.POST("/partner/invite/create", inviteRoles, deps.PartnerHandler.CreateInvite)

	partnerAdmin := staff.Group("/admin/partner-users", adminOnly)
	partnerAdmin.GET("/organization/:orgId", deps.PartnerHandler.ListUsers)
	partnerAdmin.PATCH("/:id/active", deps.PartnerHandler.SetUserActive)
	partnerAdmin.DELETE("/:id", deps.PartnerHandler.DeleteUser)

	reports := staff.Group("/reports", reportRoles)
	reports.GET("/org-monthly", deps.ReportHandler.Legacy)
	reports.GET("/org-monthly-v2", deps.ReportHandler.Monthly)
	reports.GET("/org-monthly-v2/export", deps.ReportHandler.ExportMonthly)

	staff.GET("/dashboard/summary", reportRoles, deps.ReportHandler.Dashboard)

	partnerAuth := r.Group("/v1/partner")
	partnerAuth.POST("/auth/login", deps.PartnerHandler.Login)
	partnerAuth.POST("/invite/validate", deps.PartnerHandler.ValidateInvite)
	partnerAuth.POST("/invite/complete", deps.PartnerHandler.CompleteInvite)

	portal := partnerAuth.Group("/dashboard", requirePartner)
	portal.GET("/me", deps.PartnerDashboardHandler.Me)
	portal.GET("/remittance-account", deps.PartnerDashboardHandler.RemittanceAccount)
	portal.POST("/remit", deps.PartnerDashboardHandler.Remit)
	portal.GET("/transactions", deps.PartnerDashboardHandler.Transactions)
	portal.GET("/staff-loans", deps.PartnerDashboardHandler.StaffLoans)
	portal.GET("/monthly-due", deps.PartnerDashboardHandler.MonthlyDue)

	if deps.WSHandler != nil {
		// Browsers cannot set headers on websocket dials; the token
		// rides in the query string instead.
		r.GET("/ws/remittances", requireStaff, deps.WSHandler.HandleWebSocket)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
