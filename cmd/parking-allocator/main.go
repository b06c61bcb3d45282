package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"parking-allocator/internal/config"
	"parking-allocator/internal/parking"
	"parking-allocator/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	setupLogging(cfg.Log.Level)

	telemetry, err := parking.NewTelemetryProvider(cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logrus.Fatalf("Failed to initialize telemetry: %v", err)
	}

	pricing, err := parking.NewStandardPricing(cfg.Parking.ReservationPremium)
	if err != nil {
		logrus.Fatalf("Invalid pricing config: %v", err)
	}

	engine, err := parking.NewInstrumentedEngine(parking.NewAllocationEngine(pricing), telemetry)
	if err != nil {
		logrus.Fatalf("Failed to build allocation engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 1; i <= cfg.Parking.Capacity; i++ {
		id := fmt.Sprintf("%s%d", cfg.Parking.SpotPrefix, i)
		if err := engine.RegisterSpot(ctx, id); err != nil {
			logrus.Fatalf("Failed to register spot %s: %v", id, err)
		}
	}
	logrus.WithField("capacity", cfg.Parking.Capacity).Info("spot pool registered")

	sweeper := parking.NewExpirySweeper(engine, cfg.Worker.ExpiryInterval)
	go sweeper.Run(ctx)

	srv := server.New(cfg, engine)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Server error: %v", err)
		}
	case sig := <-sigChan:
		logrus.WithField("signal", sig.String()).Info("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}
	cancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Telemetry shutdown error: %v", err)
	}
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
