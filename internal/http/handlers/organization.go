package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/gin-gonic/gin"
)

type OrganizationService interface {
	Create(ctx context.Context, in organization.CreateInput) (*organization.Entity, error)
	Get(ctx context.Context, id int64) (*organization.Entity, error)
	List(ctx context.Context) ([]organization.Entity, error)
	Update(ctx context.Context, id int64, in organization.UpdateInput) (*organization.Entity, error)
	SetActive(ctx context.Context, id int64, active bool) (*organization.Entity, error)
}

type OrganizationHandler struct {
	orgService OrganizationService
}

func NewOrganizationHandler(orgService OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) orgError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "organization_not_found"})
	case errors.Is(err, organization.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "organization_name_taken"})
	case errors.Is(err, organization.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req organization.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	org, err := h.orgService.Create(c.Request.Context(), req)
	if err != nil {
		h.orgError(c, err, "create_organization_failed")
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandler) List(c *gin.Context) {
	items, err := h.orgService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_organizations_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	org, err := h.orgService.Get(c.Request.Context(), id)
	if err != nil {
		h.orgError(c, err, "get_organization_failed")
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	var req organization.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	org, err := h.orgService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.orgError(c, err, "update_organization_failed")
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *OrganizationHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *OrganizationHandler) setActive(c *gin.Context, active bool) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	org, err := h.orgService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		h.orgError(c, err, "update_organization_failed")
		return
	}
	c.JSON(http.StatusOK, org)
}
