package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type ApplicationService interface {
	Create(ctx context.Context, in application.CreateInput) (*application.Entity, error)
	SubmitPublic(ctx context.Context, token string, in application.PublicInput) (*application.Entity, error)
	Get(ctx context.Context, id int64) (*application.Entity, error)
	List(ctx context.Context, f application.ListFilter) ([]application.Entity, error)
	UpdateStatus(ctx context.Context, id int64, in application.StatusInput) (*application.Entity, error)
}

type ApplicationHandler struct {
	appService ApplicationService
}

func NewApplicationHandler(appService ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

func (h *ApplicationHandler) appError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
	case errors.Is(err, customer.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
	case errors.Is(err, product.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
	case errors.Is(err, loanlink.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
	case errors.Is(err, loanlink.ErrLinkUnavailable):
		c.JSON(http.StatusGone, gin.H{"error": "link_unavailable"})
	case errors.Is(err, application.ErrInactiveProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_inactive"})
	case errors.Is(err, application.ErrLinkMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_mismatch"})
	case errors.Is(err, application.ErrActiveLoan):
		c.JSON(http.StatusConflict, gin.H{"error": "active_loan_exists"})
	case errors.Is(err, application.ErrOpenApplication):
		c.JSON(http.StatusConflict, gin.H{"error": "open_application_exists"})
	case errors.Is(err, application.ErrAmountOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_out_of_range"})
	case errors.Is(err, application.ErrUnaffordable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_unaffordable"})
	case errors.Is(err, application.ErrMissingNetPay):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_net_pay"})
	case errors.Is(err, application.ErrStatusNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "status_not_allowed"})
	case errors.Is(err, application.ErrApprovedAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved_amount_required"})
	case errors.Is(err, application.ErrAlreadyDisbursed):
		c.JSON(http.StatusConflict, gin.H{"error": "application_disbursed"})
	case errors.Is(err, application.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var req application.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	app, err := h.appService.Create(c.Request.Context(), req)
	if err != nil {
		h.appError(c, err, "create_application_failed")
		return
	}
	c.JSON(http.StatusCreated, app)
}

// SubmitPublic is the unauthenticated form submission behind a loan
// link.
func (h *ApplicationHandler) SubmitPublic(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
		return
	}
	var req application.PublicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	app, err := h.appService.SubmitPublic(c.Request.Context(), token, req)
	if err != nil {
		h.appError(c, err, "submit_application_failed")
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	items, err := h.appService.List(c.Request.Context(), application.ListFilter{
		Status:         strings.TrimSpace(c.Query("status")),
		OrganizationID: queryInt64(c, "organization_id"),
		Limit:          int32(queryInt(c, "limit", 50)),
		Offset:         int32(queryInt(c, "skip", 0)),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_applications_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	app, err := h.appService.Get(c.Request.Context(), id)
	if err != nil {
		h.appError(c, err, "get_application_failed")
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	var req application.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	app, err := h.appService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.appError(c, err, "update_application_failed")
		return
	}
	c.JSON(http.StatusOK, app)
}
