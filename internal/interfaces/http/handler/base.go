// Package handler holds the gin handlers of the HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/royale/pos/internal/application/catalog"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/infrastructure/logger"
	"github.com/royale/pos/internal/infrastructure/storage"
	"github.com/royale/pos/internal/interfaces/http/dto"
	"github.com/royale/pos/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// List sends a success response with the item count in meta
func (h *BaseHandler) List(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleError converts errors to HTTP responses. Client errors show the full
// message; server errors are logged and answered with the generic message
// of their code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	requestID := middleware.GetRequestID(c)

	var verr *catalogapp.ValidationError
	if errors.As(err, &verr) {
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidInput, "Invalid product form", requestID)
		for _, f := range verr.Fields {
			resp.Error.Details = append(resp.Error.Details, dto.ValidationDetail{Field: f.Field, Message: f.Message})
		}
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeInvalidInput)
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	if errors.Is(err, storage.ErrStorageDisabled) {
		h.Error(c, dto.ErrCodeStorageDisabled, "Report storage is not configured")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			h.logServerError(c, err)
			message = domainErr.Message
		}
		h.Error(c, domainErr.Code, message)
		return
	}

	h.logServerError(c, err)
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) logServerError(c *gin.Context, err error) {
	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
}

// parseID reads the :id path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body into obj, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}
