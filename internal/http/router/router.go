package router

import (
	"github.com/gin-gonic/gin"

	"tradepost.app/messenger/internal/http/handler"
	"tradepost.app/messenger/internal/http/middleware"
	"tradepost.app/messenger/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services, resolver middleware.TokenResolver) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(resolver))
	{
		v1.GET("/me", func(c *gin.Context) {
			userID, ok := middleware.CurrentUserID(c)
			if !ok {
				c.JSON(401, gin.H{"error": "not authenticated"})
				return
			}
			c.JSON(200, gin.H{"user_id": userID})
		})

		convHandler := handler.NewConversationHandler(services.Conversations())
		msgHandler := handler.NewMessageHandler(services.Messages())

		conversations := v1.Group("/conversations")
		{
			conversations.GET("", convHandler.List)
			conversations.POST("", convHandler.Create)
			conversations.GET("/:id/messages", msgHandler.List)
			conversations.POST("/:id/messages", msgHandler.Post)
			conversations.GET("/:id/unread", msgHandler.Unread)
			conversations.POST("/:id/read", msgHandler.MarkRead)
		}
	}
}
