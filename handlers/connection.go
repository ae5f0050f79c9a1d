package handlers

import (
	"athlete-network/middleware"
	"athlete-network/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConnectionRoutes(app *fiber.App, connectionService *services.ConnectionService) {
	// 🔐 All connection routes require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/connections", connectionService.RequestConnection)
	secured.Patch("/connections/:id", connectionService.RespondToConnection)
	secured.Get("/connections/pending", connectionService.GetPendingConnections)
	secured.Get("/connections/suggestions", connectionService.GetSuggestions)
	secured.Get("/connections", connectionService.GetNeighbors)
}
