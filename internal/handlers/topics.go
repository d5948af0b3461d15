package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/topics"
	"github.com/zfogg/dailybrief/internal/util"
)

// GetTopics lists the global topics and the servable date window.
// GET /api/v1/topics
func (h *Handlers) GetTopics(c *gin.Context) {
	start, latest := h.resolver.Window()
	c.JSON(http.StatusOK, gin.H{
		"topics":            topics.Global(),
		"max_custom_topics": topics.MaxCustomTopics,
		"window": gin.H{
			"start":  start,
			"latest": latest,
		},
	})
}

// GetMyTopics returns the caller's topic selection.
// GET /api/v1/users/me/topics
func (h *Handlers) GetMyTopics(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.store.Users.Get(c.Request.Context(), userID)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, selectionResponse(user))
}

// UpdateMyTopics replaces the caller's topic selection. A rejected selection changes nothing.
// PUT /api/v1/users/me/topics
func (h *Handlers) UpdateMyTopics(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Topics            []string             `json:"topics"`
		CustomTopics      []models.CustomTopic `json:"custom_topics"`
		CustomTopicsCamel []models.CustomTopic `json:"customTopics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	custom := req.CustomTopics
	if custom == nil {
		custom = req.CustomTopicsCamel
	}

	ctx := c.Request.Context()
	current, err := h.store.Users.Get(ctx, userID)
	if util.HandleStoreError(c, err, "user") {
		return
	}

	ids, validated, err := topics.ValidateSelection(req.Topics, custom, current.CustomTopics)
	if err != nil {
		var selErr *topics.SelectionError
		if stderrors.As(err, &selErr) {
			util.RespondValidationError(c, selErr.Field, selErr.Error())
			return
		}
		util.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.store.Users.UpdateTopics(ctx, userID, ids, validated)
	if util.HandleStoreError(c, err, "user") {
		return
	}
	c.JSON(http.StatusOK, selectionResponse(user))
}

func selectionResponse(user *models.User) gin.H {
	ids := []string(user.Topics)
	if ids == nil {
		ids = []string{}
	}
	custom := user.CustomTopics
	if custom == nil {
		custom = []models.CustomTopic{}
	}
	return gin.H{
		"topics":        ids,
		"custom_topics": custom,
	}
}
