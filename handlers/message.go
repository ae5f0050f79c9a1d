package handlers

import (
	"athlete-network/middleware"
	"athlete-network/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMessageRoutes(app *fiber.App, conversationService *services.ConversationService, notificationService *services.NotificationService) {
	// 🔐 Messaging and notifications are always scoped to the caller
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/messages", conversationService.SendMessage)
	secured.Get("/conversations", conversationService.GetConversations)
	secured.Get("/conversations/:user_id", conversationService.GetConversation)
	secured.Post("/conversations/:user_id/read", conversationService.MarkConversationRead)
	secured.Get("/messages/unread-count", conversationService.GetUnreadCount)

	secured.Get("/notifications", notificationService.GetNotifications)
}
