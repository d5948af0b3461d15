package util

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/repository"
	"gorm.io/gorm"
)

// HandleStoreError maps store errors to HTTP responses.
// Returns true if the error was handled (and response was sent), false otherwise.
func HandleStoreError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}

	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound),
		stderrors.Is(err, repository.ErrArticleNotFound),
		stderrors.Is(err, repository.ErrUserNotFound):
		RespondNotFound(c, resourceName)
	case stderrors.Is(err, repository.ErrInvalidInput),
		stderrors.Is(err, repository.ErrInvalidVote):
		RespondBadRequest(c, err.Error())
	default:
		logger.ErrorWithFields("Store operation failed for "+resourceName, err)
		RespondInternalError(c, "failed to access "+resourceName)
	}
	return true
}
