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
	"github.com/spf13/pflag"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/config"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/logging"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/messaging/rabbitmq"
	transporthttp "github.com/cimillas/ultimate-ticket/services/inventory/internal/transport/http"
)

const startupTimeout = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("inventory", pflag.ExitOnError)
	config.Flags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("inventory service failed")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := openStorage(startupCtx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.WithError(err).Warn("close storage")
		}
	}()

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithMaxReservation(cfg.Reservations.MaxDuration),
	}
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.Dial(rabbitmq.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.WithError(err).Warn("close rabbitmq publisher")
			}
		}()
		opts = append(opts, app.WithNotifier(publisher))
	}

	svc := app.NewCoordinator(store.repo, clock.NewSystem(), opts...)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Reservations.SweepInterval > 0 {
		go svc.RunSweeper(stopCtx, cfg.Reservations.SweepInterval)
	}

	handler := transporthttp.NewRouter(svc, logger, transporthttp.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		HealthChecks:   store.checks,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"addr":        server.Addr,
		"storage":     cfg.Storage.Driver,
		"environment": cfg.Server.Environment,
	}).Info("inventory listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("server shutdown")
	}
	logger.Info("server stopped")
	return nil
}
