package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsift/internal/api"
	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/recommend"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	embedClient := embed.NewClient(cfg.EmbedURL, cfg.EmbedAPIKey, cfg.EmbedModel)
	embedder := embed.NewCachedEmbedder(embedClient, embed.NewMemoryCache())

	var rerankClient *embed.RerankClient
	var reranker embed.Reranker
	if cfg.RerankURL != "" {
		rerankClient = embed.NewRerankClient(cfg.RerankURL, cfg.RerankAPIKey)
		reranker = rerankClient
	}

	// Initialize pipeline.
	ranker := rank.NewRanker(embedder, reranker, log)
	ranker.TopN = cfg.TopN
	ranker.Diversity = cfg.Diversity

	library := recommend.NewLibrary()
	processor := pipeline.NewProcessor(embedder, ranker, library, cfg.DedupThreshold, log)

	orch := pipeline.NewOrchestrator(cfg, processor, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		embedClient.Close()
		if rerankClient != nil {
			rerankClient.Close()
		}
	}()

	log.Info("starting docsift", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
