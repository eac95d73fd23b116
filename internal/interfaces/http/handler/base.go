// Package handler contains the gin handlers of the /api/v1 endpoints.
package handler

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	measurementapp "github.com/qbic/datamanager/internal/application/measurement"
	sampleapp "github.com/qbic/datamanager/internal/application/sample"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/shared"
	tsvimport "github.com/qbic/datamanager/internal/infrastructure/import"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
	"github.com/qbic/datamanager/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, offset, limit int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, offset, limit))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response for queued work
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed request binding
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts service errors to HTTP responses. Sheet row errors
// and metadata validation failures carry their details; domain errors keep
// their code and get a status from it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if rows, ok := tsvimport.IsRowErrors(err); ok {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Data:    dto.NewSheetErrorResponse(rows),
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeValidation,
				Message:   "The sheet contains invalid rows",
				RequestID: requestID,
			},
		})
		return
	}

	if failures := validationFailures(err); failures != nil {
		details := make([]dto.ValidationDetail, 0, len(failures))
		for i, f := range failures {
			details = append(details, dto.ValidationDetail{Field: "row." + strconv.Itoa(i), Message: f})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Metadata validation failed", requestID, details))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.HTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

func validationFailures(err error) []string {
	var sampleErr *sampleapp.ValidationFailedError
	if errors.As(err, &sampleErr) {
		return sampleErr.Result.Failures
	}
	var measurementErr *measurementapp.ValidationFailedError
	if errors.As(err, &measurementErr) {
		return measurementErr.Result.Failures
	}
	return nil
}

// pathUUID parses a path parameter and answers 404 when it is no uuid
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.NotFound(c, "Resource not found")
		return uuid.Nil, false
	}
	return id, true
}

// projectID returns the project authorized by the permission middleware,
// falling back to the :id parameter
func (h *BaseHandler) projectID(c *gin.Context) (uuid.UUID, bool) {
	if id, ok := middleware.GetProjectID(c); ok {
		return id, true
	}
	return h.pathUUID(c, "id")
}

func (h *BaseHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return id, ok
}

func (h *BaseHandler) subject(c *gin.Context) (access.Subject, bool) {
	s, ok := middleware.GetSubject(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return s, ok
}

func attachment(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}
