package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type options struct {
	addr         string
	kafkaBrokers []string
	kafkaTopic   string
	dev          bool
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("backend", flag.ContinueOnError)
	addr := fs.String("addr", getenv("GOMOKU_ADDR", ":8080"), "listen address")
	brokers := fs.String("kafka-brokers", getenv("GOMOKU_KAFKA_BROKERS", ""), "comma separated kafka brokers, empty disables outcome events")
	topic := fs.String("kafka-topic", getenv("GOMOKU_KAFKA_TOPIC", DefaultOutcomeTopic), "kafka topic for outcome events")
	dev := fs.Bool("dev", false, "development logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return options{
		addr:         *addr,
		kafkaBrokers: splitList(*brokers),
		kafkaTopic:   *topic,
		dev:          *dev,
	}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	logger := newLogger(opts.dev)
	defer func() { _ = logger.Sync() }()

	publisher := newOutcomePublisher(opts, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close outcome publisher", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := NewGameRegistry(configStore, publisher, logger)
	hub := NewHub()
	go hub.Run(ctx.Done())
	go runTicker(ctx, registry, hub)

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           NewServer(ctx, registry, hub, configStore, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info("backend listening", zap.String("addr", opts.addr))
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			logger.Error("server error", zap.Error(err))
		}
	}

	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

// runTicker drives every game and pushes changed snapshots to the hub. The
// interval follows config updates.
func runTicker(ctx context.Context, registry *GameRegistry, hub *Hub) {
	interval := GetConfig().TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range registry.TickAll() {
				gc, err := registry.Get(id)
				if err != nil {
					continue
				}
				hub.PublishState(id, statePayload(gc))
			}
			if next := GetConfig().TickInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func newLogger(dev bool) *zap.Logger {
	build := zap.NewProduction
	if dev {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newOutcomePublisher(opts options, logger *zap.Logger) OutcomePublisher {
	publisher, err := NewKafkaPublisher(opts.kafkaBrokers, opts.kafkaTopic, logger)
	switch {
	case errors.Is(err, ErrPublisherDisabled):
		logger.Info("outcome events disabled")
		return noopPublisher{}
	case err != nil:
		logger.Warn("outcome events unavailable", zap.Error(err))
		return noopPublisher{}
	}
	logger.Info("outcome events enabled", zap.Strings("brokers", opts.kafkaBrokers), zap.String("topic", opts.kafkaTopic))
	return publisher
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
