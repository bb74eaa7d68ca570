package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/disbursement"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

type DisbursementService interface {
	Disburse(ctx context.Context, applicationID int64, in disbursement.Input, actorID int64) (*disbursement.Entity, *loan.Entity, error)
	GetByApplication(ctx context.Context, applicationID int64) (*disbursement.Entity, error)
}

type DisbursementHandler struct {
	disbursementService DisbursementService
}

func NewDisbursementHandler(disbursementService DisbursementService) *DisbursementHandler {
	return &DisbursementHandler{disbursementService: disbursementService}
}

func (h *DisbursementHandler) Disburse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	var req disbursement.Input
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	d, l, err := h.disbursementService.Disburse(c.Request.Context(), id, req, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
		case errors.Is(err, disbursement.ErrAlreadyDisbursed):
			c.JSON(http.StatusConflict, gin.H{"error": "application_disbursed"})
		case errors.Is(err, disbursement.ErrNotApproved):
			c.JSON(http.StatusBadRequest, gin.H{"error": "application_not_approved"})
		case errors.Is(err, disbursement.ErrMissingAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "approved_amount_required"})
		case errors.Is(err, disbursement.ErrDuplicateRef):
			c.JSON(http.StatusConflict, gin.H{"error": "reference_exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "disbursement_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"disbursement": d, "loan": l})
}

func (h *DisbursementHandler) GetByApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	d, err := h.disbursementService.GetByApplication(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, disbursement.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "disbursement_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_disbursement_failed"})
		return
	}
	c.JSON(http.StatusOK, d)
}
