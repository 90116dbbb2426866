package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"profilehub/internal/app"
	"profilehub/internal/transport/http/middleware"
	"profilehub/internal/transport/http/response"
)

// writeServiceError maps a service error onto the HTTP error taxonomy.
// Internal failures are logged with the request id and never echoed to clients.
func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Message, verr.Fields)
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found")
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", middleware.RequestIDFromContext(c),
			"route", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func invalidBody(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, "Invalid request body")
}
