package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"songstream/config"
	"songstream/db"
	"songstream/handlers"
	"songstream/server"
	"songstream/songs"
	"songstream/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores come up before the listener: no request is served against an
	// uninitialized handle.
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	database := client.Database(cfg.MongoDB)

	repo, err := songs.NewRepository(ctx, database)
	if err != nil {
		logger.Error("song repository init failed", "error", err)
		os.Exit(1)
	}
	store, err := storage.NewGridFS(database)
	if err != nil {
		logger.Error("object store init failed", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(handlers.New(repo, store, logger))

	logger.Info("server listening", "port", cfg.Port, "database", cfg.MongoDB)
	if err := server.Run(ctx, ":"+cfg.Port, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
