package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("topic is required").Status)
	assert.Equal(t, http.StatusBadRequest, ValidationError("emoji", "emoji already used").Status)
	assert.Equal(t, http.StatusNotFound, NotFound("article").Status)
	assert.Equal(t, http.StatusServiceUnavailable, GenerationFailed().Status)
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("SOMETHING_ELSE").StatusCode())
}

func TestGenerationFailedIsRetryable(t *testing.T) {
	err := GenerationFailed()
	assert.True(t, err.Retryable)
	assert.Equal(t, ErrGenerationFailed, err.Code)
	assert.NotContains(t, err.Message, "gemini")
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: article not found", NotFound("article").Error())
	assert.Equal(t, "VALIDATION_ERROR: label is required (field: label)", ValidationError("label", "label is required").Error())
}
