package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const accessDeniedMessage = "access denied"

// respondError maps a service error onto a status code and JSON body.
// Infrastructure failures are logged with their cause; clients only see a
// generic message.
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	requestID := c.GetString(ContextRequestIDKey)

	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthorizationError
		notFoundErr   *domain.NotFoundError
		integrityErr  *domain.DataIntegrityError
		storeErr      *domain.StoreError
	)
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationErr.Fields})
	case errors.As(err, &authErr):
		slog.InfoContext(ctx, "request denied", "path", c.FullPath(), "reason", authErr.Reason, "requestId", requestID)
		abortWithError(c, http.StatusForbidden, accessDeniedMessage)
	case errors.As(err, &notFoundErr):
		abortWithError(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &integrityErr):
		slog.WarnContext(ctx, "stored data is malformed", "entity", integrityErr.Entity, "id", integrityErr.ID, "error", integrityErr.Err, "requestId", requestID)
		abortWithError(c, http.StatusUnprocessableEntity, "stored "+integrityErr.Entity+" data is malformed")
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrMediaUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &storeErr):
		slog.ErrorContext(ctx, "storage failure", "op", storeErr.Op, "error", storeErr.Err, "requestId", requestID)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	default:
		slog.ErrorContext(ctx, "request failed", "path", c.FullPath(), "error", err, "requestId", requestID)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
