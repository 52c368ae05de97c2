package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	modeSelfPlay = "selfplay"
	modeSweep    = "sweep"
)

var (
	errTrainingRunning = errors.New("training already running")
	errNoTraining      = errors.New("no running training job")
	errGameTimeout     = errors.New("game did not finish in time")
)

// tally counts finished games by result.
type tally struct {
	Games      int            `json:"games"`
	Results    map[string]int `json:"results"`
	TotalTurns int            `json:"total_turns"`
}

func newTally() tally {
	return tally{Results: map[string]int{}}
}

func (t *tally) add(game gameView) {
	t.Games++
	t.Results[game.State.Winner]++
	t.TotalTurns += game.State.TurnCount
}

func (t tally) averageTurns() float64 {
	if t.Games == 0 {
		return 0
	}
	return float64(t.TotalTurns) / float64(t.Games)
}

func (t tally) clone() tally {
	out := tally{Games: t.Games, TotalTurns: t.TotalTurns, Results: make(map[string]int, len(t.Results))}
	for k, v := range t.Results {
		out.Results[k] = v
	}
	return out
}

type sweepResult struct {
	DefenseWeight float64 `json:"defense_weight"`
	Tally         tally   `json:"tally"`
}

type trainerStatus struct {
	Running     bool          `json:"running"`
	Mode        string        `json:"mode"`
	Phase       string        `json:"phase"`
	Message     string        `json:"message"`
	StartedAt   string        `json:"started_at"`
	UpdatedAt   string        `json:"updated_at"`
	GamesPlayed int           `json:"games_played"`
	Totals      tally         `json:"totals"`
	Sweep       []sweepResult `json:"sweep,omitempty"`
}

type trainer struct {
	client       *backendClient
	logger       *zap.Logger
	mode         string
	games        int
	pollInterval time.Duration
	gameTimeout  time.Duration
	sweepWeights []float64

	statusMu  sync.RWMutex
	status    trainerStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

func newTrainer(client *backendClient, opts options, logger *zap.Logger) *trainer {
	now := time.Now().UTC().Format(time.RFC3339)
	return &trainer{
		client:       client,
		logger:       logger,
		mode:         opts.mode,
		games:        opts.games,
		pollInterval: opts.pollInterval,
		gameTimeout:  opts.gameTimeout,
		sweepWeights: opts.sweepWeights,
		status: trainerStatus{
			Mode:      opts.mode,
			Phase:     "idle",
			Message:   "service ready",
			StartedAt: now,
			UpdatedAt: now,
			Totals:    newTally(),
		},
	}
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	status := t.status
	status.Totals = t.status.Totals.clone()
	status.Sweep = append([]sweepResult(nil), t.status.Sweep...)
	return status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) startTraining(mode string) error {
	if mode == "" {
		mode = t.mode
	}
	if mode != modeSelfPlay && mode != modeSweep {
		return fmt.Errorf("unknown mode %q", mode)
	}
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return errTrainingRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	t.updateStatus(func(s *trainerStatus) {
		s.Running = true
		s.Mode = mode
		s.Phase = "starting"
		s.Message = "training starting"
		s.GamesPlayed = 0
		s.Totals = newTally()
		s.Sweep = nil
	})
	go func() {
		defer close(done)
		err := t.waitBackendReady(ctx)
		if err == nil {
			err = t.runMode(ctx, mode)
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			switch {
			case err != nil && !errors.Is(err, context.Canceled):
				s.Phase = "error"
				s.Message = err.Error()
			default:
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Error("training failed", zap.String("mode", mode), zap.Error(err))
		}
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
	}()
	return nil
}

func (t *trainer) stopTraining(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return errNoTraining
	}
	t.logger.Info("stopping training", zap.String("reason", reason))
	cancel()
	if done != nil {
		<-done
	}
	return nil
}

// wait blocks until the running job, if any, is done.
func (t *trainer) wait() {
	t.jobMu.Lock()
	done := t.jobDone
	t.jobMu.Unlock()
	if done != nil {
		<-done
	}
}

func (t *trainer) runMode(ctx context.Context, mode string) error {
	if mode == modeSweep {
		return t.runSweep(ctx)
	}
	_, err := t.runSelfPlay(ctx, "self-play running")
	return err
}

func (t *trainer) runSelfPlay(ctx context.Context, message string) (tally, error) {
	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = message
	})
	result := newTally()
	for i := 0; i < t.games; i++ {
		game, err := t.playGame(ctx)
		if err != nil {
			return result, err
		}
		result.add(game)
		t.updateStatus(func(s *trainerStatus) {
			s.GamesPlayed++
			s.Totals.add(game)
		})
		t.logger.Info("game finished",
			zap.String("game_id", game.GameID),
			zap.String("result", game.State.Winner),
			zap.Int("turns", game.State.TurnCount),
			zap.Int("game", i+1),
			zap.Int("of", t.games),
		)
	}
	t.logger.Info("self-play batch done",
		zap.Int("games", result.Games),
		zap.Any("results", result.Results),
		zap.Float64("avg_turns", result.averageTurns()),
	)
	return result, nil
}

// runSweep plays a batch per defense weight and restores the backend config
// afterwards.
func (t *trainer) runSweep(ctx context.Context) error {
	original, err := t.client.getConfig(ctx)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer func() {
		restoreCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.client.updateConfig(restoreCtx, original); err != nil {
			t.logger.Warn("restore config", zap.Error(err))
		}
	}()

	for _, weight := range t.sweepWeights {
		candidate := make(map[string]any, len(original))
		for k, v := range original {
			candidate[k] = v
		}
		candidate["defense_weight"] = weight
		if err := t.client.updateConfig(ctx, candidate); err != nil {
			return fmt.Errorf("apply defense_weight %.2f: %w", weight, err)
		}
		result, err := t.runSelfPlay(ctx, fmt.Sprintf("sweep defense_weight=%.2f", weight))
		if err != nil {
			return err
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Sweep = append(s.Sweep, sweepResult{DefenseWeight: weight, Tally: result})
		})
	}
	return nil
}

// playGame runs one ai_vs_ai game to the end and removes it from the backend.
func (t *trainer) playGame(ctx context.Context) (gameView, error) {
	created, err := t.client.createGame(ctx, "ai_vs_ai")
	if err != nil {
		return gameView{}, fmt.Errorf("create game: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.client.deleteGame(cleanupCtx, created.GameID); err != nil {
			t.logger.Debug("delete game", zap.String("game_id", created.GameID), zap.Error(err))
		}
	}()

	deadline := time.Now().Add(t.gameTimeout)
	game := created
	for game.State.Phase != "ended" {
		if time.Now().After(deadline) {
			return game, fmt.Errorf("%w: %s after %d turns", errGameTimeout, created.GameID, game.State.TurnCount)
		}
		if !sleepWithContext(ctx, t.pollInterval) {
			return game, ctx.Err()
		}
		if game, err = t.client.getGame(ctx, created.GameID); err != nil {
			return game, fmt.Errorf("poll game: %w", err)
		}
	}
	return game, nil
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if err := t.client.ping(ctx); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return errors.New("backend not ready after 60s")
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
