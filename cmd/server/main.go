package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arai-works/contextd/internal/api"
	"github.com/arai-works/contextd/internal/config"
	"github.com/arai-works/contextd/internal/extract"
	"github.com/arai-works/contextd/internal/notion"
	"github.com/arai-works/contextd/internal/pipeline"
	"github.com/arai-works/contextd/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients and storage.
	nc := notion.NewClient(cfg.NotionBaseURL, cfg.NotionAPIKey, cfg.RequestTimeout, cfg.MaxBlockPages)
	llm := extract.NewClient(cfg.ExaoneAPIKey, cfg.ExaoneBaseURL, cfg.ExaoneModel, cfg.MaxContentChars)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Error("failed to open record store", "error", err)
		os.Exit(1)
	}

	orch := pipeline.NewOrchestrator(nc, llm, st, log)

	srv := api.NewServer(orch, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		llm.Close()
		nc.Close()
		if err := st.Close(); err != nil {
			log.Error("closing record store", "error", err)
		}
	}()

	log.Info("starting contextd", "port", cfg.Port, "db", st.Path())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
