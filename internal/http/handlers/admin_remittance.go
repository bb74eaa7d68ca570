package handlers

import (
	"context"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/gin-gonic/gin"
)

type AdminRemittanceService interface {
	Apply(ctx context.Context, transactionID int64) (*remittance.ApplyResult, error)
	Reverse(ctx context.Context, transactionID int64) (*remittance.Transaction, error)
	Transaction(ctx context.Context, id int64) (*remittance.Transaction, error)
	Transactions(ctx context.Context, organizationID int64) ([]remittance.TransactionView, error)
	Allocations(ctx context.Context, transactionID int64) ([]remittance.Allocation, error)
	Summary(ctx context.Context, organizationID int64) (*remittance.Summary, error)
}

// AdminRemittanceHandler is the reconciliation console: inspect inbound
// transactions, re-apply, and reverse.
type AdminRemittanceHandler struct {
	remitService AdminRemittanceService
}

func NewAdminRemittanceHandler(remitService AdminRemittanceService) *AdminRemittanceHandler {
	return &AdminRemittanceHandler{remitService: remitService}
}

func (h *AdminRemittanceHandler) List(c *gin.Context) {
	items, err := h.remitService.Transactions(c.Request.Context(), queryInt64(c, "organization_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_transactions_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AdminRemittanceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}
	tx, err := h.remitService.Transaction(c.Request.Context(), id)
	if err != nil {
		remitError(c, err, "get_transaction_failed")
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *AdminRemittanceHandler) Allocations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}
	items, err := h.remitService.Allocations(c.Request.Context(), id)
	if err != nil {
		remitError(c, err, "list_allocations_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AdminRemittanceHandler) Apply(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}
	result, err := h.remitService.Apply(c.Request.Context(), id)
	if err != nil {
		remitError(c, err, "apply_failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminRemittanceHandler) Reverse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transaction_id"})
		return
	}
	tx, err := h.remitService.Reverse(c.Request.Context(), id)
	if err != nil {
		remitError(c, err, "reverse_failed")
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *AdminRemittanceHandler) Summary(c *gin.Context) {
	orgID := queryInt64(c, "organization_id")
	if orgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	summary, err := h.remitService.Summary(c.Request.Context(), orgID)
	if err != nil {
		remitError(c, err, "summary_failed")
		return
	}
	c.JSON(http.StatusOK, summary)
}
