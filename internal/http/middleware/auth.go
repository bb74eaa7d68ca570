package middleware

import (
	"net/http"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// Websocket clients cannot set headers; allow the token as a query param.
	return c.Query("token")
}

func requireToken(jwtManager *auth.JWTManager, tokenType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtManager.Parse(raw)
		if err != nil || claims.Type != tokenType {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		if claims.OrganizationID != 0 {
			c.Set("organization_id", claims.OrganizationID)
		}
		c.Next()
	}
}

// RequireStaff admits STAFF-typed tokens only.
func RequireStaff(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return requireToken(jwtManager, auth.TokenTypeStaff)
}

// RequirePartner admits PARTNER-typed tokens only.
func RequirePartner(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return requireToken(jwtManager, auth.TokenTypePartner)
}

func UserID(c *gin.Context) int64 {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func OrganizationID(c *gin.Context) int64 {
	if v, ok := c.Get("organization_id"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
