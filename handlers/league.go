package handlers

import (
	"athlete-network/middleware"
	"athlete-network/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(app *fiber.App, leagueService *services.LeagueService) {
	// 🔓 Public routes — league and match reads need no user context
	app.Get("/leagues", leagueService.GetLeagues)
	app.Get("/leagues/:id/matches", leagueService.GetLeagueMatches)
	app.Get("/matches/live", leagueService.GetLiveMatches)
	app.Get("/matches/upcoming", leagueService.GetUpcomingMatches)

	// 🔐 Secured routes — require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/leagues", leagueService.CreateLeague)
	secured.Post("/leagues/:id/subscribe", leagueService.SubscribeToLeague)
	secured.Get("/leagues/subscribed", leagueService.GetSubscribedLeagues)
	secured.Post("/leagues/:id/matches", leagueService.CreateMatch)
	secured.Patch("/matches/:id/status", leagueService.UpdateMatchStatus)
}
