package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/topics"
	"github.com/zfogg/dailybrief/internal/util"
)

type ratingResponse struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// validateRatingKey checks the (date, topic) key of a rating request and
// responds with 400 when it is unusable
func validateRatingKey(c *gin.Context, date, topic string) bool {
	if date == "" || topic == "" {
		util.RespondBadRequest(c, "Date and topic are required")
		return false
	}
	if d, err := time.Parse(models.DateLayout, date); err != nil || d.Format(models.DateLayout) != date {
		util.RespondValidationError(c, "date", "date must be formatted as YYYY-MM-DD")
		return false
	}
	if !topics.IsGlobal(topic) && !topics.IsCustomID(topic) {
		util.RespondValidationError(c, "topic", "unknown topic")
		return false
	}
	return true
}

// RateTopic records a like or dislike for a topic's coverage on a day.
// POST /api/v1/ratings
func (h *Handlers) RateTopic(c *gin.Context) {
	var req struct {
		Date  string      `json:"date"`
		Topic string      `json:"topic"`
		Vote  models.Vote `json:"vote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !validateRatingKey(c, req.Date, req.Topic) {
		return
	}
	if !req.Vote.Valid() {
		util.RespondValidationError(c, "vote", "vote must be like or dislike")
		return
	}

	ctx, span := h.events.TraceEngagement(c.Request.Context(), "vote", telemetry.EngagementEventAttrs{
		Date:  req.Date,
		Topic: req.Topic,
		Vote:  string(req.Vote),
	})
	defer span.End()

	rating, err := h.store.Ratings.Increment(ctx, req.Date, req.Topic, req.Vote)
	if util.HandleStoreError(c, err, "rating") {
		return
	}
	metrics.Get().VotesTotal.WithLabelValues(string(req.Vote)).Inc()

	c.JSON(http.StatusOK, ratingResponse{Likes: rating.Likes, Dislikes: rating.Dislikes})
}

// GetRating returns the vote counters for a (date, topic) key, zero when nobody voted.
// GET /api/v1/ratings?date=&topic=
func (h *Handlers) GetRating(c *gin.Context) {
	date := c.Query("date")
	topic := c.Query("topic")
	if !validateRatingKey(c, date, topic) {
		return
	}

	rating, err := h.store.Ratings.Get(c.Request.Context(), date, topic)
	if util.HandleStoreError(c, err, "rating") {
		return
	}

	c.JSON(http.StatusOK, ratingResponse{Likes: rating.Likes, Dislikes: rating.Dislikes})
}
