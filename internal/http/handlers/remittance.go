package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/gin-gonic/gin"
)

type RemittanceService interface {
	CreateAccount(ctx context.Context, in remittance.CreateAccountInput) (*remittance.Account, error)
	ListAccounts(ctx context.Context, organizationID int64) ([]remittance.Account, error)
	ActiveAccount(ctx context.Context, organizationID int64) (*remittance.Account, error)
	Ingest(ctx context.Context, in remittance.IngestInput) (*remittance.ApplyResult, error)
}

type RemittanceHandler struct {
	remitService RemittanceService
}

func NewRemittanceHandler(remitService RemittanceService) *RemittanceHandler {
	return &RemittanceHandler{remitService: remitService}
}

func remitError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "organization_not_found"})
	case errors.Is(err, remittance.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction_not_found"})
	case errors.Is(err, remittance.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "remittance_account_not_found"})
	case errors.Is(err, remittance.ErrAlreadyMatched):
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_matched"})
	case errors.Is(err, remittance.ErrNothingToReverse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing_to_reverse"})
	case errors.Is(err, remittance.ErrMissingReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference_required"})
	case errors.Is(err, remittance.ErrDuplicateReference):
		c.JSON(http.StatusConflict, gin.H{"error": "reference_exists"})
	case errors.Is(err, remittance.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *RemittanceHandler) CreateAccount(c *gin.Context) {
	var req remittance.CreateAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	acct, err := h.remitService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		remitError(c, err, "create_account_failed")
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (h *RemittanceHandler) ListAccounts(c *gin.Context) {
	items, err := h.remitService.ListAccounts(c.Request.Context(), queryInt64(c, "organization_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_accounts_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *RemittanceHandler) ActiveAccount(c *gin.Context) {
	orgID, ok := pathID(c, "orgId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	acct, err := h.remitService.ActiveAccount(c.Request.Context(), orgID)
	if err != nil {
		remitError(c, err, "get_account_failed")
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Ingest records an inbound bank credit and applies it in the same
// request.
func (h *RemittanceHandler) Ingest(c *gin.Context) {
	var req remittance.IngestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	result, err := h.remitService.Ingest(c.Request.Context(), req)
	if err != nil {
		remitError(c, err, "ingest_failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}
