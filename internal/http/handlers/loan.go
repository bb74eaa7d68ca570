package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/gin-gonic/gin"
)

type LoanService interface {
	Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error)
	Get(ctx context.Context, id int64) (*loan.Entity, error)
	List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error)
	ListRepayments(ctx context.Context, loanID int64) ([]loan.Repayment, error)
	GetRepayment(ctx context.Context, id int64) (*loan.Repayment, error)
	ReverseRepayment(ctx context.Context, id int64) (*loan.Repayment, error)
}

type LoanHandler struct {
	loanService LoanService
}

func NewLoanHandler(loanService LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

func (h *LoanHandler) loanError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
	case errors.Is(err, loan.ErrRepaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "repayment_not_found"})
	case errors.Is(err, loan.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan"})
	case errors.Is(err, loan.ErrNothingToReverse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing_to_reverse"})
	case errors.Is(err, loan.ErrHasAllocations):
		c.JSON(http.StatusConflict, gin.H{"error": "repayment_has_allocations"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *LoanHandler) Create(c *gin.Context) {
	var req loan.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	l, err := h.loanService.Create(c.Request.Context(), req)
	if err != nil {
		h.loanError(c, err, "create_loan_failed")
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) List(c *gin.Context) {
	items, err := h.loanService.List(c.Request.Context(), loan.ListFilter{
		Status:         strings.TrimSpace(c.Query("status")),
		OrganizationID: queryInt64(c, "organization_id"),
		Limit:          int32(queryInt(c, "limit", 50)),
		Offset:         int32(queryInt(c, "skip", 0)),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}
	l, err := h.loanService.Get(c.Request.Context(), id)
	if err != nil {
		h.loanError(c, err, "get_loan_failed")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) ListRepayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}
	items, err := h.loanService.ListRepayments(c.Request.Context(), id)
	if err != nil {
		h.loanError(c, err, "list_repayments_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) GetRepayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_repayment_id"})
		return
	}
	rep, err := h.loanService.GetRepayment(c.Request.Context(), id)
	if err != nil {
		h.loanError(c, err, "get_repayment_failed")
		return
	}
	c.JSON(http.StatusOK, rep)
}

// PayRepayment is permanently disabled: repayments settle only through
// remittance allocation.
func (h *LoanHandler) PayRepayment(c *gin.Context) {
	c.JSON(http.StatusGone, gin.H{"error": "manual_payment_disabled"})
}

func (h *LoanHandler) ReverseRepayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_repayment_id"})
		return
	}
	rep, err := h.loanService.ReverseRepayment(c.Request.Context(), id)
	if err != nil {
		h.loanError(c, err, "reverse_repayment_failed")
		return
	}
	c.JSON(http.StatusOK, rep)
}
