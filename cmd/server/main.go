package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/studypulse/notify-engine/internal/auth"
	auth_postgres "github.com/studypulse/notify-engine/internal/auth/postgres"
	"github.com/studypulse/notify-engine/internal/gateway"
	"github.com/studypulse/notify-engine/internal/gateway/middleware"
	"github.com/studypulse/notify-engine/internal/ingest"
	"github.com/studypulse/notify-engine/internal/notify"
	"github.com/studypulse/notify-engine/internal/shared/infrastructure/config"
	"github.com/studypulse/notify-engine/internal/shared/infrastructure/database"
	"github.com/studypulse/notify-engine/pkg/migration"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Println("Connecting to DB...")
	db, err := database.ConnectPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner(&migration.Config{
		MigrationsPath: "migrations",
		DatabaseURL:    cfg.Database.URL(),
		Logger:         logger,
	})
	if err := runner.Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	module := notify.NewModule(notify.Config{
		DB:             db,
		Redis:          rdb,
		PushEndpoint:   cfg.Push.Endpoint,
		PushAPIKey:     cfg.Push.APIKey,
		PushTimeout:    cfg.Push.SendTimeout,
		ReaperInterval: cfg.Reaper.Interval,
		Logger:         logger,
	})

	verifier := auth.NewVerifier(auth_postgres.NewPgUserRepository(db), cfg.JWT.Secret)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go module.Reaper().Run(ctx)

	if cfg.Kafka.Brokers != "" {
		consumer := ingest.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, module.Service(), logger)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("kafka consumer stopped", "error", err)
			}
		}()
	}

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:      authMiddleware,
		NotificationHandler: module.HTTPHandler(),
		DeviceHandler:       module.DeviceHandler(),
	})

	handler := middleware.PrometheusMiddleware(
		middleware.CORSMiddleware(mux, cfg.Server.AllowedOrigins))

	server := gateway.NewServer(cfg.Server.Port, handler, func() {
		cancel()
		module.Stop()
	})
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
