// Package main runs the training-event registration HTTP server with a
// WebSocket check-in feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cyberlab-events/backend/config"
	"github.com/cyberlab-events/backend/internal/ai"
	"github.com/cyberlab-events/backend/internal/analytics"
	"github.com/cyberlab-events/backend/internal/attendees"
	"github.com/cyberlab-events/backend/internal/auth"
	"github.com/cyberlab-events/backend/internal/events"
	"github.com/cyberlab-events/backend/internal/feedback"
	"github.com/cyberlab-events/backend/internal/middleware"
	"github.com/cyberlab-events/backend/internal/realtime"
	"github.com/cyberlab-events/backend/internal/resources"
	"github.com/cyberlab-events/backend/internal/worker"
	"github.com/cyberlab-events/backend/pkg/database"
	"github.com/cyberlab-events/backend/pkg/queue"
	"github.com/cyberlab-events/backend/pkg/redis"
	"github.com/cyberlab-events/backend/pkg/response"
	"github.com/cyberlab-events/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ResourcesBucket:      cfg.AWS.ResourcesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth (dashboard users)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, cfg.App.PublicBaseURL, cfg.App.QRSize)

	// Attendees: registry, access-code ledger, check-in flow
	attendeeRepo := attendees.NewRepository(pool)
	attendeeHandler := attendees.NewHandler(attendeeRepo, eventRepo, hub, logger)

	// Resources (S3-backed workshop materials)
	resourceRepo := resources.NewRepository(pool)
	resourceHandler := resources.NewHandler(resourceRepo, eventRepo, s3Client, logger)

	// Feedback + AI suggestions
	jobQueue := queue.NewQueue(rdb.Client, logger)
	feedbackRepo := feedback.NewRepository(pool)
	feedbackHandler := feedback.NewHandler(feedbackRepo, eventRepo, jobQueue, logger)
	aiClient := ai.NewClient(cfg.AI, logger)
	suggestionProcessor := worker.NewSuggestionProcessor(feedbackRepo, aiClient, jobQueue, logger)

	// Analytics
	analyticsHandler := analytics.NewHandler(pool, eventRepo, feedbackRepo)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: event listing, QR codes, and the attendee check-in flow.
	// No session required for attendees.
	router.GET("/events", eventHandler.ListUpcoming)
	router.GET("/events/:id", eventHandler.GetByID)
	router.GET("/events/:id/qr", eventHandler.QRCode)
	router.POST("/checkin", attendeeHandler.Checkin)
	router.POST("/checkin/verify", attendeeHandler.VerifyCode)
	router.POST("/checkin/confirm", attendeeHandler.Confirm)

	// Workshop content: gated by a valid access code.
	gated := router.Group("")
	gated.Use(middleware.AccessCode(attendeeRepo))
	{
		gated.GET("/events/:id/resources", resourceHandler.ListByEvent)
		gated.GET("/resources/:id/download-url", resourceHandler.DownloadURL)
		gated.GET("/events/:id/feedback/questions", feedbackHandler.ListQuestions)
		gated.POST("/feedback/questions/:id/responses", feedbackHandler.SubmitResponse)
	}

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Admin API (JWT required)
	api := router.Group("/admin")
	api.Use(middleware.JWT(jwtService))
	{
		// Dashboard users
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)
		api.PATCH("/users/:id/role", middleware.RequireRole("admin"), authHandler.UpdateRole)

		// Attendees and access codes
		api.GET("/attendees", attendeeHandler.ListWithCodes)
		api.POST("/attendees/:id/reset-code", attendeeHandler.ResetCode)
		api.DELETE("/attendees/:id", middleware.RequireRole("admin"), attendeeHandler.Delete)

		// Events
		api.GET("/events", eventHandler.List)
		api.POST("/events", eventHandler.Create)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", middleware.RequireRole("admin"), eventHandler.Delete)
		api.GET("/events/:id/attendance", eventHandler.Attendance)
		api.GET("/events/:id/analytics", analyticsHandler.GetByEvent)
		api.GET("/analytics", analyticsHandler.Overview)

		// Resources
		api.POST("/events/:id/resources/upload", resourceHandler.Upload)
		api.POST("/events/:id/resources/generate-upload-url", resourceHandler.GenerateUploadURL)
		api.POST("/events/:id/resources", resourceHandler.Create)
		api.DELETE("/resources/:id", resourceHandler.Delete)

		// Feedback
		api.POST("/events/:id/feedback/questions", feedbackHandler.CreateQuestion)
		api.GET("/events/:id/feedback/questions", feedbackHandler.ListQuestions)
		api.GET("/feedback/questions/:id/responses", feedbackHandler.ListResponses)
		api.POST("/feedback/questions/:id/suggest", feedbackHandler.Suggest)
		api.DELETE("/feedback/questions/:id", middleware.RequireRole("admin"), feedbackHandler.DeleteQuestion)
	}

	// WebSocket check-in feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process suggestion worker (cmd/worker runs the same loop standalone)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if aiClient.Enabled() {
		go suggestionProcessor.Run(workerCtx)
		logger.Info("suggestion worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
