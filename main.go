package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"athlete-network/handlers"
	"athlete-network/middleware"
	"athlete-network/models"
	"athlete-network/services"
	"athlete-network/store"
	"athlete-network/utils"
	"athlete-network/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024, // 100MB, post media included
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 not configured, storing media locally: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Connection{},
		&models.Message{},
		&models.League{},
		&models.Match{},
		&models.Subscription{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	st := store.NewGormStore(db)

	userService := services.NewUserService(st)
	connectionService := services.NewConnectionService(st)
	feedService := services.NewFeedService(st, connectionService)
	conversationService := services.NewConversationService(st)
	notificationService := services.NewNotificationService(st)
	leagueService := services.NewLeagueService(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Sports feed sync (optional — skipped when no feed is configured) ---
	if feedURL := os.Getenv("SPORTS_FEED_URL"); feedURL != "" {
		serviceToken := os.Getenv("SOCIAL_SERVICE_TOKEN")
		matchSync := workers.NewMatchSyncWorker(db, feedURL, serviceToken)
		matchSync.Start(ctx)
	} else {
		log.Println("⚠️  SPORTS_FEED_URL not set — match sync disabled")
	}

	// --- Presence sync (optional) ---
	if os.Getenv("AUTH_SERVICE_URL") != "" {
		presenceClient := workers.NewPresenceSyncClient(db)
		go workers.PollPresence(ctx, presenceClient, 30*time.Second)
	} else {
		log.Println("⚠️  AUTH_SERVICE_URL not set — presence sync disabled")
	}

	sched, err := leagueService.StartMatchScheduler()
	if err != nil {
		log.Fatal("failed to start match scheduler:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	// ✅ Setup routes — enforced Gateway auth globally
	handlers.SetupUserRoutes(app, userService, feedService)
	handlers.SetupConnectionRoutes(app, connectionService)
	handlers.SetupLeagueRoutes(app, leagueService)
	handlers.SetupMessageRoutes(app, conversationService, notificationService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
