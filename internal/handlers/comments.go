package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/util"
)

// MaxCommentLength bounds comment text in characters
const MaxCommentLength = 2000

type commentResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponse(c models.Comment) commentResponse {
	return commentResponse{ID: c.ID, Username: c.Username, Text: c.Text, CreatedAt: c.CreatedAt}
}

// GetComments returns an article's comments oldest first.
// GET /api/v1/comments?articleId=
func (h *Handlers) GetComments(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	articleID := util.QueryAny(c, "articleId", "article_id")
	if articleID == "" {
		util.RespondBadRequest(c, "Article ID is required")
		return
	}

	comments, err := h.store.Articles.Comments(c.Request.Context(), articleID)
	if util.HandleStoreError(c, err, "article") {
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentResponse(comment))
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

// CreateComment appends a comment to an article.
// POST /api/v1/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		articleRef
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	articleID := req.id()
	text := strings.TrimSpace(req.Text)
	if articleID == "" || text == "" {
		util.RespondBadRequest(c, "Article ID and text are required")
		return
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		util.RespondValidationError(c, "text", "comment is too long")
		return
	}

	ctx, span := h.events.TraceEngagement(c.Request.Context(), "comment", telemetry.EngagementEventAttrs{ArticleID: articleID})
	defer span.End()

	comment := &models.Comment{
		UserID:   userID,
		Username: util.GetUsernameFromContext(c),
		Text:     text,
	}
	if util.HandleStoreError(c, h.store.Articles.AddComment(ctx, articleID, comment), "article") {
		return
	}
	metrics.Get().CommentsTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{"comment": toCommentResponse(*comment)})
}
