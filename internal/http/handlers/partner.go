package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/partner"
	"github.com/gin-gonic/gin"
)

type PartnerAdminService interface {
	CreateInvite(ctx context.Context, in partner.InviteInput) (*partner.InviteResult, error)
	ValidateInvite(ctx context.Context, rawToken string) (*partner.InviteDetails, error)
	CompleteInvite(ctx context.Context, rawToken, password string) (*partner.User, error)
	Login(ctx context.Context, email, password string) (*partner.LoginResult, error)
	ListUsers(ctx context.Context, organizationID int64) ([]partner.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (*partner.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// PartnerHandler covers partner user lifecycle: staff-side invites and
// administration, plus the public invite and login endpoints.
type PartnerHandler struct {
	partnerService PartnerAdminService
}

func NewPartnerHandler(partnerService PartnerAdminService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

func partnerError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "organization_not_found"})
	case errors.Is(err, partner.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "partner_user_not_found"})
	case errors.Is(err, partner.ErrEmailBound):
		c.JSON(http.StatusConflict, gin.H{"error": "email_bound_elsewhere"})
	case errors.Is(err, partner.ErrInvalidInvite):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_invite_token"})
	case errors.Is(err, partner.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, partner.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "password_too_short"})
	case errors.Is(err, partner.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_partner_input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *PartnerHandler) CreateInvite(c *gin.Context) {
	var req partner.InviteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	result, err := h.partnerService.CreateInvite(c.Request.Context(), req)
	if err != nil {
		partnerError(c, err, "create_invite_failed")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ValidateInvite is public; the partner's browser calls it before
// showing the set-password form.
func (h *PartnerHandler) ValidateInvite(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
		return
	}
	details, err := h.partnerService.ValidateInvite(c.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		partnerError(c, err, "validate_invite_failed")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *PartnerHandler) CompleteInvite(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	user, err := h.partnerService.CompleteInvite(c.Request.Context(), strings.TrimSpace(req.Token), req.Password)
	if err != nil {
		partnerError(c, err, "complete_invite_failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *PartnerHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_credentials"})
		return
	}
	result, err := h.partnerService.Login(c.Request.Context(), username, password)
	if err != nil {
		partnerError(c, err, "login_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"user":         result.User,
	})
}

func (h *PartnerHandler) ListUsers(c *gin.Context) {
	orgID, ok := pathID(c, "orgId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return
	}
	items, err := h.partnerService.ListUsers(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_partner_users_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PartnerHandler) SetUserActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_partner_user_id"})
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	user, err := h.partnerService.SetUserActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		partnerError(c, err, "update_partner_user_failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *PartnerHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_partner_user_id"})
		return
	}
	if err := h.partnerService.DeleteUser(c.Request.Context(), id); err != nil {
		partnerError(c, err, "delete_partner_user_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
