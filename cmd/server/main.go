package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	httpadapter "acolhimento/internal/adapters/http"
	"acolhimento/internal/adapters/ollama"
	pg "acolhimento/internal/adapters/postgres"
	"acolhimento/internal/config"
	contactsvc "acolhimento/internal/services/contacts"
	"acolhimento/internal/services/extraction"
	"acolhimento/internal/services/validation"
	"acolhimento/internal/workers/syncrunner"
)

func main() {
	cfg, err := config.Load()

	log := newLogger(cfg.Env)
	defer log.Sync()

	if err != nil {
		log.Warn("config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for the Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	llm := ollama.New(ollama.Config{
		BaseURL:    cfg.OllamaURL,
		Model:      cfg.OllamaModel,
		Timeout:    cfg.OllamaTimeout,
		MaxRetries: cfg.OllamaMaxRetries,
	}, log)

	extractor := extraction.NewEngine(llm, extraction.NewRenderer(), cfg.MaxTextLength, log)
	validator := validation.New()
	contacts := contactsvc.New(db, extractor, cfg.ExportMaxRecords, log)

	srv := httpadapter.New(extractor, validator, llm, contacts, db, cfg.CORSOrigins, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	// Optional background sync workers
	if cfg.SyncWorkers > 0 {
		syncrunner.Run(ctx, db, validator, cfg.SyncWorkers, 500*time.Millisecond, log)
		log.Info("sync workers started", zap.Int("count", cfg.SyncWorkers))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", zap.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}
