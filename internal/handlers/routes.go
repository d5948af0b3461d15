package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every API endpoint onto the /api/v1 group.
// authRequired validates bearer tokens; generationLimit guards endpoints that call the text model.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, authRequired, generationLimit gin.HandlerFunc) {
	// Public endpoints
	api.GET("/topics", h.GetTopics)
	api.GET("/ratings", h.GetRating)
	api.POST("/ratings", h.RateTopic)

	authed := api.Group("")
	authed.Use(authRequired)
	{
		authed.GET("/articles", h.GetArticles)
		authed.POST("/generate", generationLimit, h.GenerateArticle)

		authed.GET("/pins", h.ListPins)
		authed.POST("/pins", h.PinArticle)
		authed.DELETE("/pins", h.UnpinArticle)

		authed.GET("/comments", h.GetComments)
		authed.POST("/comments", h.CreateComment)

		authed.GET("/users/me/topics", h.GetMyTopics)
		authed.PUT("/users/me/topics", h.UpdateMyTopics)

		authed.POST("/articles/:id/summary", generationLimit, h.SummarizeDiscussion)
		authed.POST("/articles/:id/chat", generationLimit, h.ChatAboutArticle)
	}
}
