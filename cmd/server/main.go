package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/agrilink/agrichat-backend/internal/cache"
	"github.com/agrilink/agrichat-backend/internal/handlers"
	"github.com/agrilink/agrichat-backend/internal/handlers/ws"
	"github.com/agrilink/agrichat-backend/internal/middleware"
	"github.com/agrilink/agrichat-backend/internal/push"
	"github.com/agrilink/agrichat-backend/internal/repository"
	"github.com/agrilink/agrichat-backend/internal/service"
	"github.com/agrilink/agrichat-backend/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "AgriLink Chat Backend",
		// Attachment uploads up to 10MB + multipart overhead.
		BodyLimit: 12 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache (optional; profile lookups fall back to the DB)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}
	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}
	userCache := cache.NewUserCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	productRepo := repository.NewProductRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	alertLogRepo := repository.NewAlertLogRepository(db)

	// Initialize FCM gateway (optional; dispatches count as failed without it)
	var gateway service.PushGateway
	if cfg, err := push.LoadConfigFromEnv(); err != nil {
		log.Printf("WARNING: FCM not configured: %v. Push notifications disabled.", err)
	} else if g, err := push.NewFCMGateway(context.Background(), cfg); err != nil {
		log.Printf("WARNING: Failed to initialize FCM: %v. Push notifications disabled.", err)
	} else {
		gateway = g
		log.Println("FCM gateway initialized successfully")
	}

	// The hub carries presence, rooms and activity, so it exists before the
	// services that broadcast through it.
	hub := ws.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo)
	notificationService := service.NewNotificationService(deviceTokenRepo, gateway)
	chatService := service.NewChatService(conversationRepo, messageRepo, userRepo, productRepo, hub, hub, hub, notificationService, userCache)
	readService := service.NewReadService(conversationRepo, messageRepo, hub)
	alertService := service.NewAlertService(alertLogRepo, notificationService)

	// Initialize S3/MinIO storage (best-effort; media endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(hub, chatService, readService)
	authHandler := handlers.NewAuthHandler(authService)
	conversationHandler := handlers.NewConversationHandler(chatService, readService)
	tokenHandler := handlers.NewTokenHandler(deviceTokenRepo)
	alertHandler := handlers.NewAlertHandler(alertService)
	mediaHandler := handlers.NewMediaHandler(s3Store)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/conversations", conversationHandler.ListConversations)
	protected.Post("/conversations", conversationHandler.FindOrCreate)
	protected.Get("/conversations/:id/messages", conversationHandler.GetMessages)
	protected.Post("/conversations/:id/read", conversationHandler.MarkRead)
	protected.Post("/conversations/:id/attachments", mediaHandler.UploadAttachment)
	protected.Get("/media/*", mediaHandler.GetAttachment)
	protected.Post("/notifications/tokens", tokenHandler.RegisterToken)
	protected.Delete("/notifications/tokens", tokenHandler.DeleteToken)
	protected.Post("/alerts/weather", alertHandler.SendWeatherAlert)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "AgriLink chat backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
