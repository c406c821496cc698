package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"flappion-backend/services"
	"flappion-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	adminSessionKey = "adminSession"
	// AdminAuthPath is the client sign-in page.
	AdminAuthPath = "/admin/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, token string) (services.AdminSession, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin resolves the bearer session into an AdminSession. Callers
// without a live session get 401, sessions without the admin role are ended
// and get 403. Both carry the sign-in redirect.
func RequireAdmin(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.AbortRedirect(c, http.StatusUnauthorized, "Authentication required", AdminAuthPath)
			return
		}

		admin, err := auth.Authorize(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrUnauthenticated):
			utils.AbortRedirect(c, http.StatusUnauthorized, "Authentication required", AdminAuthPath)
			return
		case errors.Is(err, services.ErrForbidden):
			utils.AbortRedirect(c, http.StatusForbidden, "Access denied. Admin privileges required.", AdminAuthPath)
			return
		default:
			log.Printf("authorize session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(adminSessionKey, admin)
		c.Next()
	}
}

// AdminFrom returns the session stored by RequireAdmin.
func AdminFrom(c *gin.Context) (services.AdminSession, bool) {
	v, ok := c.Get(adminSessionKey)
	if !ok {
		return services.AdminSession{}, false
	}
	admin, ok := v.(services.AdminSession)
	return admin, ok
}
