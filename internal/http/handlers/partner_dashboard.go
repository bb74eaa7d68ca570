package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/partner"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PartnerPortalService interface {
	Me(ctx context.Context, userID int64) (*partner.User, *organization.Entity, error)
	StaffLoans(ctx context.Context, organizationID int64) ([]partner.StaffLoan, error)
	MonthlyDue(ctx context.Context, organizationID int64, year, month int) (*partner.MonthlyDue, error)
}

type PartnerRemittanceService interface {
	ActiveAccount(ctx context.Context, organizationID int64) (*remittance.Account, error)
	Remit(ctx context.Context, organizationID int64, amount decimal.Decimal, narration string) (*remittance.Transaction, error)
	Transactions(ctx context.Context, organizationID int64) ([]remittance.TransactionView, error)
}

// PartnerDashboardHandler serves the authenticated partner portal. The
// organization always comes from the token, never from the request.
type PartnerDashboardHandler struct {
	portalService PartnerPortalService
	remitService  PartnerRemittanceService
}

func NewPartnerDashboardHandler(portalService PartnerPortalService, remitService PartnerRemittanceService) *PartnerDashboardHandler {
	return &PartnerDashboardHandler{portalService: portalService, remitService: remitService}
}

func (h *PartnerDashboardHandler) Me(c *gin.Context) {
	user, org, err := h.portalService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		partnerError(c, err, "get_profile_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "organization": org})
}

func (h *PartnerDashboardHandler) RemittanceAccount(c *gin.Context) {
	acct, err := h.remitService.ActiveAccount(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		remitError(c, err, "get_account_failed")
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (h *PartnerDashboardHandler) Remit(c *gin.Context) {
	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Narration string          `json:"narration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	tx, err := h.remitService.Remit(c.Request.Context(), middleware.OrganizationID(c), req.Amount, strings.TrimSpace(req.Narration))
	if err != nil {
		remitError(c, err, "remit_failed")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *PartnerDashboardHandler) Transactions(c *gin.Context) {
	items, err := h.remitService.Transactions(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_transactions_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PartnerDashboardHandler) StaffLoans(c *gin.Context) {
	items, err := h.portalService.StaffLoans(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_staff_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PartnerDashboardHandler) MonthlyDue(c *gin.Context) {
	due, err := h.portalService.MonthlyDue(
		c.Request.Context(),
		middleware.OrganizationID(c),
		queryInt(c, "year", 0),
		queryInt(c, "month", 0),
	)
	if err != nil {
		partnerError(c, err, "monthly_due_failed")
		return
	}
	c.JSON(http.StatusOK, due)
}
