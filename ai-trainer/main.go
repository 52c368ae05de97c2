package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type options struct {
	backendURL   string
	apiAddr      string
	mode         string
	autostart    bool
	games        int
	pollInterval time.Duration
	gameTimeout  time.Duration
	sweepWeights []float64
	dev          bool
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("ai-trainer", flag.ContinueOnError)
	backendURL := fs.String("backend", getenv("BACKEND_URL", "http://backend:8080"), "backend base url")
	apiAddr := fs.String("api-addr", getenv("TRAINER_API_ADDR", ":8090"), "status api listen address")
	mode := fs.String("mode", getenv("TRAINER_MODE", modeSelfPlay), "selfplay or sweep")
	autostart := fs.Bool("autostart", getenv("TRAINER_AUTOSTART", "") != "", "start training on boot")
	games := fs.Int("games", getenvInt("TRAINER_GAMES", 20), "games per batch")
	pollMs := fs.Int("poll-ms", getenvInt("POLL_INTERVAL_MS", 250), "game poll interval in ms")
	timeoutSec := fs.Int("game-timeout-sec", getenvInt("TRAINER_GAME_TIMEOUT_SEC", 180), "give up on a game after this many seconds")
	sweep := fs.String("sweep", getenv("TRAINER_SWEEP", "0.5,0.8,1.2"), "comma separated defense weights for sweep mode")
	dev := fs.Bool("dev", false, "development logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	weights, err := parseWeights(*sweep)
	if err != nil {
		return options{}, err
	}
	if *mode != modeSelfPlay && *mode != modeSweep {
		return options{}, fmt.Errorf("unknown mode %q", *mode)
	}
	if *games < 1 {
		*games = 1
	}
	return options{
		backendURL:   strings.TrimRight(*backendURL, "/"),
		apiAddr:      *apiAddr,
		mode:         *mode,
		autostart:    *autostart,
		games:        *games,
		pollInterval: time.Duration(*pollMs) * time.Millisecond,
		gameTimeout:  time.Duration(*timeoutSec) * time.Second,
		sweepWeights: weights,
		dev:          *dev,
	}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := newLogger(opts.dev)
	defer func() { _ = logger.Sync() }()

	t := newTrainer(newBackendClient(opts.backendURL, 10*time.Second), opts, logger)
	logger.Info("ai trainer started",
		zap.String("backend", opts.backendURL),
		zap.String("mode", opts.mode),
		zap.Duration("poll_interval", opts.pollInterval),
	)

	server := &http.Server{
		Addr:              opts.apiAddr,
		Handler:           statusRoutes(t),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("trainer api server error", zap.Error(err))
		}
	}()

	if opts.autostart {
		if err := t.startTraining(opts.mode); err != nil {
			logger.Warn("autostart failed", zap.Error(err))
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	_ = t.stopTraining("shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("trainer stopping")
}

func statusRoutes(t *trainer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	r.Get("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	r.Post("/api/trainer/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Mode string `json:"mode"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if err := t.startTraining(payload.Mode); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	r.Post("/api/trainer/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := t.stopTraining("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
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

func parseWeights(raw string) ([]float64, error) {
	weights := []float64{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		weight, err := strconv.ParseFloat(item, 64)
		if err != nil || weight <= 0 {
			return nil, fmt.Errorf("invalid defense weight %q", item)
		}
		weights = append(weights, weight)
	}
	return weights, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
