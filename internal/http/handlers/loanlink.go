package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type LoanLinkService interface {
	Create(ctx context.Context, in loanlink.CreateInput) (*loanlink.Entity, error)
	Get(ctx context.Context, id int64) (*loanlink.Entity, error)
	List(ctx context.Context, f loanlink.ListFilter) ([]loanlink.Entity, error)
	Deactivate(ctx context.Context, id int64) (*loanlink.Entity, error)
	Resolve(ctx context.Context, token string) (*loanlink.PublicView, error)
}

type LoanLinkHandler struct {
	linkService LoanLinkService
}

func NewLoanLinkHandler(linkService LoanLinkService) *LoanLinkHandler {
	return &LoanLinkHandler{linkService: linkService}
}

func (h *LoanLinkHandler) linkError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, loanlink.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "link_not_found"})
	case errors.Is(err, loanlink.ErrLinkUnavailable):
		c.JSON(http.StatusGone, gin.H{"error": "link_unavailable"})
	case errors.Is(err, loanlink.ErrInactiveOrg):
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_inactive"})
	case errors.Is(err, loanlink.ErrInactiveProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_inactive"})
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "organization_not_found"})
	case errors.Is(err, product.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *LoanLinkHandler) Create(c *gin.Context) {
	var req loanlink.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	link, err := h.linkService.Create(c.Request.Context(), req)
	if err != nil {
		h.linkError(c, err, "create_link_failed")
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *LoanLinkHandler) List(c *gin.Context) {
	items, err := h.linkService.List(c.Request.Context(), loanlink.ListFilter{
		OrganizationID: queryInt64(c, "organization_id"),
		ProductID:      queryInt64(c, "product_id"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_links_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanLinkHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_link_id"})
		return
	}
	link, err := h.linkService.Get(c.Request.Context(), id)
	if err != nil {
		h.linkError(c, err, "get_link_failed")
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LoanLinkHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_link_id"})
		return
	}
	link, err := h.linkService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.linkError(c, err, "deactivate_link_failed")
		return
	}
	c.JSON(http.StatusOK, link)
}

// ResolvePublic serves the unauthenticated application form.
func (h *LoanLinkHandler) ResolvePublic(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
		return
	}
	view, err := h.linkService.Resolve(c.Request.Context(), token)
	if err != nil {
		h.linkError(c, err, "resolve_link_failed")
		return
	}
	c.JSON(http.StatusOK, view)
}
