package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/util"
)

// MaxQuestionLength bounds chat questions in characters
const MaxQuestionLength = 1000

// SummarizeDiscussion asks the text model to summarize the comments on an article.
// POST /api/v1/articles/:id/summary
func (h *Handlers) SummarizeDiscussion(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	ctx := c.Request.Context()

	article, err := h.store.Articles.Get(ctx, c.Param("id"))
	if util.HandleStoreError(c, err, "article") {
		return
	}
	comments, err := h.store.Articles.Comments(ctx, article.ID)
	if util.HandleStoreError(c, err, "article") {
		return
	}
	if len(comments) == 0 {
		c.JSON(http.StatusOK, gin.H{"summary": "", "comment_count": 0})
		return
	}

	summary, err := h.insights.SummarizeComments(ctx, article, comments)
	if err != nil {
		respondInsightError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "comment_count": len(comments)})
}

// ChatAboutArticle answers a question using only the article's content.
// POST /api/v1/articles/:id/chat
func (h *Handlers) ChatAboutArticle(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		util.RespondBadRequest(c, "Question is required")
		return
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		util.RespondValidationError(c, "question", "question is too long")
		return
	}

	ctx := c.Request.Context()
	article, err := h.store.Articles.Get(ctx, c.Param("id"))
	if util.HandleStoreError(c, err, "article") {
		return
	}

	answer, err := h.insights.Answer(ctx, article, question)
	if err != nil {
		respondInsightError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
