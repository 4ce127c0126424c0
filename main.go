// File: bookwise/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookwise/config"
	"bookwise/cron"
	"bookwise/database"
	recordsRepo "bookwise/database/repository/records"
	"bookwise/handlers"
	"bookwise/middleware"
	"bookwise/routes"
	"bookwise/services/agent"
	"bookwise/services/calendar"
	ai "bookwise/services/intelligence"
	"bookwise/services/tasks"
	"bookwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRecords := recordsRepo.NewMongoRecordRepo()

	// external collaborators.
	calendarGateway, err := calendar.NewGoogleGateway(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar gateway: %v", err)
	}

	var responder ai.Responder
	if config.AppConfig.GeminiAPIKey != "" {
		responder, err = ai.NewGeminiClient(config.AppConfig.GeminiAPIKey)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
		}
	} else {
		logger.Sugar().Warn("main: GEMINI_API_KEY not set, fallback responder disabled")
	}

	// services.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	stateStore := agent.NewRedisConversationStore(utils.GetSessionCacheClient(), sessionTTL)

	agentService := &agent.DefaultAgentService{
		Store:     stateStore,
		Calendar:  calendarGateway,
		Responder: responder,
		Records:   bookingRecords,
		Reminders: tasks.NewAsynqScheduler(),
	}

	chatHandler := handlers.NewChatHandler(agentService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:        chatHandler.HandleChat,
		VoiceChatHandler:   chatHandler.HandleVoiceChat,
		AgentStatusHandler: chatHandler.HandleAgentStatus,
		ResetAgentHandler:  chatHandler.HandleResetAgent,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and health monitoring.
	cron.InitReminderWorker(bookingRecords)
	utils.StartHealthMonitor([]*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
