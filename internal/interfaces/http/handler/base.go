package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler writes the dto.Response envelope for every handler that
// embeds it.
type BaseHandler struct{}

func getSession(c *gin.Context) middleware.SessionInfo {
	return middleware.GetSession(c)
}

// parseID answers 400 itself when the path parameter is not a UUID.
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err != nil {
		h.bindError(c, err, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	}
	return err == nil
}

func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	err := c.ShouldBindQuery(req)
	if err != nil {
		h.bindError(c, err, dto.ErrCodeBadRequest, "Invalid query parameters")
	}
	return err == nil
}

// bindError prefers field details, then the body limit, then the generic
// code for syntax errors.
func (h *BaseHandler) bindError(c *gin.Context, err error, code, message string) {
	var tooLarge *http.MaxBytesError
	switch details := middleware.ValidationDetails(err); {
	case len(details) > 0:
		h.ValidationError(c, details)
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	default:
		h.Error(c, http.StatusBadRequest, code, message)
	}
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", middleware.GetRequestID(c), details))
}

// HandleError turns a service error into a response. A DomainError keeps its
// code and, unless the code hides it, its message. Anything else is logged
// and answered with a bare 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	switch {
	case err == nil:
	case errors.As(err, &domainErr):
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		h.Error(c, status, domainErr.Code, dto.UserMessage(domainErr.Code, domainErr.Message))
	case errors.Is(err, context.Canceled):
		// the client is gone; nothing to write
		c.AbortWithStatus(dto.StatusClientClosedRequest)
	default:
		logger.GetGinLogger(c).Error("unexpected error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, dto.UserMessage(dto.ErrCodeInternal, ""))
	}
}
