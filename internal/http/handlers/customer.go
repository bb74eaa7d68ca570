package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/gin-gonic/gin"
)

type CustomerService interface {
	Create(ctx context.Context, in customer.CreateInput) (*customer.Entity, error)
	Get(ctx context.Context, id int64) (*customer.Entity, error)
	List(ctx context.Context, organizationID int64) ([]customer.Entity, error)
	GetByStaffID(ctx context.Context, organizationID int64, staffID string) (*customer.Entity, error)
}

type CustomerHistoryService interface {
	HistoryByCustomer(ctx context.Context, customerID int64) ([]application.Entity, error)
}

type CustomerHandler struct {
	customerService CustomerService
	historyService  CustomerHistoryService
}

func NewCustomerHandler(customerService CustomerService, historyService CustomerHistoryService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, historyService: historyService}
}

func (h *CustomerHandler) customerError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, customer.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
	case errors.Is(err, customer.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req customer.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	cust, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.customerError(c, err, "create_customer_failed")
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) List(c *gin.Context) {
	items, err := h.customerService.List(c.Request.Context(), queryInt64(c, "organization_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_customers_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
		return
	}
	cust, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		h.customerError(c, err, "get_customer_failed")
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) GetByStaffID(c *gin.Context) {
	orgID, ok := pathID(c, "orgId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	staffID := strings.TrimSpace(c.Param("staffId"))
	if staffID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_staff_id"})
		return
	}
	cust, err := h.customerService.GetByStaffID(c.Request.Context(), orgID, staffID)
	if err != nil {
		h.customerError(c, err, "get_customer_failed")
		return
	}
	c.JSON(http.StatusOK, cust)
}

// History lists the customer's applications, latest first.
func (h *CustomerHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
		return
	}
	items, err := h.historyService.HistoryByCustomer(c.Request.Context(), id)
	if err != nil {
		h.customerError(c, err, "customer_history_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
