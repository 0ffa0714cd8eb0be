// The sweeper binary runs the expiry reclaim loop on its own, for
// deployments that keep background work out of the API processes. The
// batch update it issues is idempotent, so running it next to API
// processes that also sweep is safe.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sapar/internal/config"
	"sapar/internal/database"
	"sapar/internal/jobs"
	"sapar/internal/logger"
	"sapar/internal/messaging"
	"sapar/internal/repository"
	"sapar/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	var events service.EventPublisher = service.NopPublisher{}
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Get().Warn("NATS unavailable, expiry events will not be published", "error", err)
	} else {
		events = natsClient
		defer natsClient.Close()
	}

	stores := repository.NewStores(db)
	sweeper := jobs.NewExpirySweeper(stores.Reservations, events, cfg.ReservationExpiry, cfg.ExpirySweepInterval)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)

	logger.Get().Info("Expiry sweeper started",
		"expiry", cfg.ReservationExpiry,
		"interval", cfg.ExpirySweepInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	sweeper.Stop()
	logger.Get().Info("Expiry sweeper stopped")
}
