package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsagg/internal/api"
	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/fetcher"
	"newsagg/internal/ingest"
	"newsagg/internal/poller"
	"newsagg/internal/service"
	"newsagg/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize cache for hot data
	cacheManager := cache.NewManager(10 * time.Minute)

	// Initialize persistent storage
	storageManager, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Clean up old articles based on retention policy
	log.Printf("Cleaning up articles older than %v", cfg.ArticleRetention)
	if err := storageManager.CleanupOldArticles(cfg.ArticleRetention); err != nil {
		log.Printf("Warning: failed to cleanup old articles: %v", err)
	}

	// Initialize the ingestion pipeline
	ingestor := ingest.New(fetcher.New(cfg.FetchTimeout), storageManager, cfg.Sources)

	// Initialize background poller
	backgroundPoller := poller.New(ingestor, cfg.PollInterval)
	if cfg.EnablePoller {
		backgroundPoller.Start()
	}

	// Initialize services and API server
	articleSvc := service.NewArticleService(storageManager, cacheManager, cfg)
	preferenceSvc := service.NewPreferenceService(storageManager, cacheManager, cfg)
	server := api.NewServer(articleSvc, preferenceSvc, backgroundPoller, storageManager, cfg)

	log.Printf("Starting news aggregator server on port %d", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Configured sources: %d", len(cfg.Sources))
	log.Printf("Background polling interval: %v (enabled: %v)", cfg.PollInterval, cfg.EnablePoller)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start signal handler in goroutine
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		backgroundPoller.Stop()
		if err := storageManager.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
		cancel() // Cancel the context to stop the server
	}()

	// Start the server with context for graceful shutdown
	if err := server.StartWithContext(ctx); err != nil && err != context.Canceled {
		log.Fatal("Failed to start server:", err)
	}
}
