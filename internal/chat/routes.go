package chat

import (
	"portfolio-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, chatService ChatServiceAPI, allowedOrigins []string) {
	chatController := NewChatController(chatService, allowedOrigins)

	chatGroup := r.Group("/api/chat")
	chatGroup.Use(middlewares.SessionMiddleware())
	{
		chatGroup.POST("", chatController.Chat)
		chatGroup.POST("/stream", chatController.Stream)
		chatGroup.GET("/ws", chatController.WebSocket)
		chatGroup.GET("/speech", chatController.Speech)
		chatGroup.POST("/tts", chatController.TTS)
		chatGroup.DELETE("/cache", chatController.ClearCache)
	}
}
