package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/api"
	"github.com/luminakb/lumina/internal/config"
	"github.com/luminakb/lumina/internal/llm"
	"github.com/luminakb/lumina/internal/passage"
	"github.com/luminakb/lumina/internal/repository"
	"github.com/luminakb/lumina/internal/retrieval"
	"github.com/luminakb/lumina/internal/seek"
	"github.com/luminakb/lumina/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	collectionRepo := repository.NewCollectionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize LLM client (OpenAI-compatible endpoint)
	llmClient := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		ChatModel:      cfg.LLM.ChatModel,
		Temperature:    cfg.LLM.Temperature,
	})

	// Initialize pipeline components
	normalizer := passage.NewNormalizer(logger)
	ranker := retrieval.NewRanker(llmClient, logger)
	coordinator := seek.NewCoordinator(cfg.Seek.ReadyTimeout, logger)

	// Initialize services
	adminService := service.NewAdminService(collectionRepo, contentRepo, sessionRepo)
	ingestService := service.NewIngestService(collectionRepo, contentRepo, logger)
	chatService := service.NewChatService(
		cfg,
		collectionRepo,
		contentRepo,
		sessionRepo,
		normalizer,
		ranker,
		llmClient,
		logger,
	)
	seekService := service.NewSeekService(contentRepo, coordinator)

	// Setup router
	router := api.SetupRouter(adminService, ingestService, chatService, seekService, api.RouterConfig{
		APIKey:           cfg.Admin.APIKey,
		AllowOrigins:     []string{"*"},
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RequestsPerHour:  cfg.RateLimit.RequestsPerHour,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Lumina server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
