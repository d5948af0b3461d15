package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/util"
)

// GetArticles returns stored articles for a (date, topic) key.
// GET /api/v1/articles?date=&topic=
func (h *Handlers) GetArticles(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	date := c.Query("date")
	topic := c.Query("topic")
	if date == "" || topic == "" {
		util.RespondBadRequest(c, "Date and topic are required")
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), userID, date, topic)
	if err != nil {
		respondContentError(c, err)
		return
	}

	body := gin.H{
		"date":         res.Date,
		"topic":        res.Topic,
		"articles":     res.Articles,
		"generated":    res.Generated,
		"can_generate": res.CanGenerate,
	}

	// An empty key is a normal state; the flags tell the client whether to offer generation
	if len(res.Articles) == 0 {
		body["code"] = "NOT_FOUND"
		body["error"] = "No articles found"
		c.JSON(http.StatusNotFound, body)
		return
	}

	c.JSON(http.StatusOK, body)
}

// GenerateArticle calls the text model for a (date, topic) key and stores the result.
// POST /api/v1/generate
func (h *Handlers) GenerateArticle(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Topic string `json:"topic"`
		Date  string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if req.Topic == "" || req.Date == "" {
		util.RespondBadRequest(c, "Topic and date are required")
		return
	}

	g, err := h.resolver.Generate(c.Request.Context(), userID, req.Date, req.Topic)
	if err != nil {
		respondContentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"headline": g.Headline,
		"analysis": g.Analysis,
		"article":  g.Article,
		"tier":     g.Tier.String(),
	})
}
