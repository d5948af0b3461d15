package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/util"
)

type pinnedArticleResponse struct {
	ID       string    `json:"id"`
	Headline string    `json:"headline"`
	Text     string    `json:"text"`
	Sources  []string  `json:"sources"`
	Topic    string    `json:"topic"`
	Date     string    `json:"date"`
	Emoji    string    `json:"emoji"`
	PinnedAt time.Time `json:"pinnedAt"`
}

type articleRef struct {
	ArticleID      string `json:"articleId"`
	ArticleIDSnake string `json:"article_id"`
}

func (r articleRef) id() string {
	return util.FirstNonEmpty(r.ArticleID, r.ArticleIDSnake)
}

// ListPins returns the caller's pinned articles, newest first.
// GET /api/v1/pins
func (h *Handlers) ListPins(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	pins, err := h.store.Pins.List(c.Request.Context(), userID)
	if util.HandleStoreError(c, err, "pinned articles") {
		return
	}

	articles := make([]pinnedArticleResponse, 0, len(pins))
	for _, pin := range pins {
		if pin.Article == nil {
			continue
		}
		sources := []string(pin.Article.Sources)
		if sources == nil {
			sources = []string{}
		}
		articles = append(articles, pinnedArticleResponse{
			ID:       pin.Article.ID,
			Headline: pin.Article.Headline,
			Text:     pin.Article.Text,
			Sources:  sources,
			Topic:    pin.Article.Topic,
			Date:     pin.Article.Date,
			Emoji:    pin.Article.Emoji,
			PinnedAt: pin.PinnedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// PinArticle pins an article for the caller. Pinning twice is a no-op.
// POST /api/v1/pins
func (h *Handlers) PinArticle(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req articleRef
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	articleID := req.id()
	if articleID == "" {
		util.RespondBadRequest(c, "Article ID is required")
		return
	}

	ctx, span := h.events.TraceEngagement(c.Request.Context(), "pin", telemetry.EngagementEventAttrs{ArticleID: articleID})
	defer span.End()

	if util.HandleStoreError(c, h.store.Pins.Pin(ctx, userID, articleID), "article") {
		return
	}
	metrics.Get().PinsTotal.WithLabelValues("pin").Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Article pinned successfully"})
}

// UnpinArticle removes a pin. Removing a pin that does not exist succeeds.
// DELETE /api/v1/pins?articleId=
func (h *Handlers) UnpinArticle(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	articleID := util.QueryAny(c, "articleId", "article_id")
	if articleID == "" {
		util.RespondBadRequest(c, "Article ID is required")
		return
	}

	ctx, span := h.events.TraceEngagement(c.Request.Context(), "unpin", telemetry.EngagementEventAttrs{ArticleID: articleID})
	defer span.End()

	if util.HandleStoreError(c, h.store.Pins.Unpin(ctx, userID, articleID), "pin") {
		return
	}
	metrics.Get().PinsTotal.WithLabelValues("unpin").Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Article unpinned successfully"})
}
