package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/errors"
	"github.com/zfogg/dailybrief/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse represents a standard error response. Error duplicates
// Message for clients that only read the error key.
type ErrorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Field     string `json:"field,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	level := zapcore.WarnLevel
	if apiErr.Status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	if ce := logger.Log.Check(level, "API error"); ce != nil {
		fields := []zap.Field{
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("route", c.FullPath()),
			logger.WithStatus(apiErr.Status),
			logger.WithRequestID(c.GetString(ContextRequestID)),
		}
		if apiErr.Field != "" {
			fields = append(fields, zap.String("field", apiErr.Field))
		}
		ce.Write(fields...)
	}

	response := ErrorResponse{
		Code:      string(apiErr.Code),
		Error:     apiErr.Message,
		Message:   apiErr.Message,
		Field:     apiErr.Field,
		Details:   apiErr.Details,
		Retryable: apiErr.Retryable,
	}
	c.AbortWithStatusJSON(apiErr.Status, response)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "user not authenticated"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response with the message verbatim
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "bad request"
	}
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message ...string) {
	msg := "internal server error"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.InternalError(msg))
}

// RespondValidationError sends a 400 response naming the offending field
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}

// RespondGenerationFailed sends the generic retryable 503
func RespondGenerationFailed(c *gin.Context) {
	RespondWithAPIError(c, errors.GenerationFailed())
}
