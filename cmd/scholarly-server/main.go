package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/assistant"
	"github.com/muffakiribnhamid/Scholarly/internal/config"
	"github.com/muffakiribnhamid/Scholarly/internal/docstore"
	"github.com/muffakiribnhamid/Scholarly/internal/flags"
	"github.com/muffakiribnhamid/Scholarly/internal/identity"
	"github.com/muffakiribnhamid/Scholarly/internal/logging"
	"github.com/muffakiribnhamid/Scholarly/internal/quote"
	"github.com/muffakiribnhamid/Scholarly/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	log, err := logging.New(cfg.ServerEnv)
	if err != nil {
		zap.NewExample().Fatal("logger init failed", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer store.Close(context.Background())

	ids, err := identity.NewFirebase(ctx, []byte(cfg.FirebaseServiceAccount), cfg.FirebaseWebAPIKey, log)
	if err != nil {
		log.Fatal("firebase init failed", zap.Error(err))
	}

	ai, err := assistant.New(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal("assistant init failed", zap.Error(err))
	}

	flagStore, err := flags.Open(filepath.Join(cfg.StateDir, "flags.json"))
	if err != nil {
		log.Fatal("flag store init failed", zap.Error(err))
	}

	srv := server.New(store, ids, ai, quote.New(log), flagStore, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(cfg.ListenAddr) }()
	log.Info("server started", zap.String("addr", cfg.ListenAddr), zap.String("env", cfg.ServerEnv))

	select {
	case err := <-errCh:
		log.Fatal("server stopped", zap.Error(err))
	case <-ctx.Done():
		log.Info("shutting down")
	}
}
