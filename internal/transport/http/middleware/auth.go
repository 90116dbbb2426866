package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profilehub/internal/app"
	"profilehub/internal/model"
	"profilehub/internal/transport/http/response"
)

const ContextUserKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthJWT requires "Authorization: Bearer <token>" and stores the resolved
// user under ContextUserKey. Every rejection is answered here and the chain
// is aborted.
func AuthJWT(auth Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			reject(c, http.StatusUnauthorized, "Authorization token missing")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			reject(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrUnauthorized):
				reject(c, http.StatusUnauthorized, "Invalid or expired token")
			case errors.Is(err, app.ErrUserNotFound):
				reject(c, http.StatusUnauthorized, "User not found")
			default:
				logger.ErrorContext(c.Request.Context(), "resolve token user failed",
					"request_id", RequestIDFromContext(c), "error", err)
				reject(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthJWT, or nil on unprotected routes.
func CurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}

func reject(c *gin.Context, status int, message string) {
	response.Error(c, status, message)
	c.Abort()
}
