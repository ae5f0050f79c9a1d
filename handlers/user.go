package handlers

import (
	"athlete-network/middleware"
	"athlete-network/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, feedService *services.FeedService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Post("/users", userService.CreateUser)
	app.Get("/users/search", userService.SearchUsers)

	// 🔐 Secured routes — require user context (userID, roles), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/me", userService.GetMe)
	secured.Patch("/users/me", userService.UpdateMe)
	secured.Post("/users/me/avatar", userService.UploadAvatar)
	secured.Get("/users/username/:username", userService.GetUserByUsername)
	secured.Get("/users/:id", userService.GetUserByID)

	// ✅ Feed & post routes — auth required
	secured.Get("/feed", feedService.GetFeed)
	secured.Post("/posts", feedService.CreatePost)
	secured.Post("/posts/:id/like", feedService.LikePostEndpoint)
	secured.Post("/posts/:id/comments", feedService.CreateComment)
	secured.Get("/posts/:id/comments", feedService.GetComments)
}
