package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/Adham-Emam/Forge-Api/internal/auth"
	"github.com/Adham-Emam/Forge-Api/internal/bids"
	"github.com/Adham-Emam/Forge-Api/internal/catalog"
	"github.com/Adham-Emam/Forge-Api/internal/config"
	"github.com/Adham-Emam/Forge-Api/internal/db"
	"github.com/Adham-Emam/Forge-Api/internal/ledger"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
	"github.com/Adham-Emam/Forge-Api/internal/projects"
	"github.com/Adham-Emam/Forge-Api/internal/repository"
	"github.com/Adham-Emam/Forge-Api/internal/router"
	"github.com/Adham-Emam/Forge-Api/internal/users"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("Connected to PostgreSQL database successfully!")

	schemaPath := os.Getenv("SCHEMA_PATH")
	if schemaPath == "" {
		schemaPath = "db/schema.sql"
	}
	if err := db.EnsureSchema(ctx, pool, schemaPath); err != nil {
		slog.Error("Schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	projectRepo := repository.NewProjectRepo(pool)
	bidRepo := repository.NewBidRepo(pool)
	transactionRepo := repository.NewTransactionRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)
	subscriberRepo := repository.NewSubscriberRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)

	// Notification worker and queue client
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewDeliverWorker(notificationRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}
	enqueuer := &notify.RiverEnqueuer{Client: riverClient}

	// Services
	ledgerSvc := ledger.NewService(transactionRepo)
	authSvc := auth.NewService(userRepo, subscriberRepo, enqueuer)
	projectSvc := projects.NewService(projectRepo, catalog.SkillIntersect{}, enqueuer)
	bidSvc := bids.NewService(pool, projectRepo, bidRepo, userRepo, ledgerSvc, enqueuer)

	// Handlers
	handlers := router.Handlers{
		Auth:     auth.NewHandler(authSvc, logger),
		Projects: projects.NewHandler(projectSvc, logger),
		Bids:     bids.NewHandler(bidSvc, logger),
		Users:    users.NewHandler(userRepo, messageRepo, logger),
		Ledger:   ledger.NewHandler(ledgerSvc, logger),
		Notify:   notify.NewHandler(notificationRepo, subscriberRepo, logger),
	}

	apiRouter := router.New(handlers, authSvc)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(apiRouter)

	// Start River client (delivers notifications)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
