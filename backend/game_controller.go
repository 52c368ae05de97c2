package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GameController serializes every action on one game and drives the AI
// seats from Tick.
type GameController struct {
	mu        sync.Mutex
	id        string
	game      *Game
	settings  GameSettings
	seats     map[PlayerColor]IPlayer
	config    *ConfigStore
	logger    *zap.Logger
	publisher OutcomePublisher
	now       func() time.Time

	createdAt       time.Time
	startedAt       time.Time
	turnStartedAt   time.Time
	lastCounterTick time.Time
	seenTurn        turnKey
	skillDecided    turnKey
	announced       bool
	outbox          []OutcomeEvent
}

type turnKey struct {
	turn   int
	player PlayerColor
}

type ControllerOption func(*GameController)

func WithClock(now func() time.Time) ControllerOption {
	return func(gc *GameController) { gc.now = now }
}

func WithPublisher(publisher OutcomePublisher) ControllerOption {
	return func(gc *GameController) {
		if publisher != nil {
			gc.publisher = publisher
		}
	}
}

func NewGameController(id string, settings GameSettings, config *ConfigStore, logger *zap.Logger, opts ...ControllerOption) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = NewConfigStore(DefaultConfig())
	}
	gc := &GameController{
		id:        id,
		config:    config,
		logger:    logger.With(zap.String("game_id", id)),
		publisher: noopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(gc)
	}
	gc.game = NewGame(gc.logger)
	gc.createdAt = gc.now()
	gc.applySettings(settings)
	return gc
}

func (gc *GameController) ID() string {
	return gc.id
}

func (gc *GameController) applySettings(settings GameSettings) {
	gc.settings = settings
	gc.seats = map[PlayerColor]IPlayer{
		PlayerBlack: gc.newPlayer(settings.BlackType),
		PlayerWhite: gc.newPlayer(settings.WhiteType),
	}
}

func (gc *GameController) newPlayer(kind PlayerType) IPlayer {
	if kind == PlayerAI {
		return NewAIPlayer(gc.config.Get)
	}
	return NewHumanPlayer()
}

func (gc *GameController) aiSeat(player PlayerColor) (*AIPlayer, bool) {
	ai, ok := gc.seats[player].(*AIPlayer)
	return ai, ok
}

func (gc *GameController) isHuman(player PlayerColor) bool {
	seat, ok := gc.seats[player]
	return ok && seat.IsHuman()
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.settings
}

func (gc *GameController) CreatedAt() time.Time {
	return gc.createdAt
}

func (gc *GameController) Start() GameState {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	gc.game.Start()
	return gc.restartLocked()
}

// Reset starts over, optionally with new seats.
func (gc *GameController) Reset(settings *GameSettings) GameState {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	if settings != nil {
		gc.applySettings(*settings)
	}
	gc.game.Reset()
	return gc.restartLocked()
}

func (gc *GameController) restartLocked() GameState {
	now := gc.now()
	gc.startedAt = now
	gc.turnStartedAt = now
	gc.lastCounterTick = now
	gc.seenTurn = turnKey{}
	gc.skillDecided = turnKey{turn: -1}
	gc.announced = false
	gc.logger.Info("game started", zap.String("mode", gc.settings.Mode()))
	return gc.settleLocked()
}

func (gc *GameController) ApplyHumanMove(move Move) (GameState, error) {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	current := gc.game.state.CurrentPlayer
	if !gc.isHuman(current) {
		return gc.game.State(), ErrNotHumanTurn
	}
	return gc.placeAndPassLocked(move, current)
}

func (gc *GameController) placeAndPassLocked(move Move, player PlayerColor) (GameState, error) {
	state, err := gc.game.PlacePiece(move.X, move.Y, player)
	if err != nil {
		return state, err
	}
	if state.Phase == PhasePlaying {
		if _, err := gc.game.SwitchPlayer(); err != nil {
			return gc.game.State(), err
		}
	}
	return gc.settleLocked(), nil
}

// UseHumanSkill casts a skill for a human seat. Skills are cast on the
// owner's turn, except board restoration which answers the opponent's break.
func (gc *GameController) UseHumanSkill(owner PlayerColor, id SkillID, target *Move) (GameState, error) {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	if !gc.isHuman(owner) {
		return gc.game.State(), ErrNotHumanTurn
	}
	def, ok := LookupSkill(id)
	if !ok {
		return gc.game.State(), fmt.Errorf("%w: %s", ErrUnknownSkill, id)
	}
	if def.Category != CategoryRevive && gc.game.state.CurrentPlayer != owner {
		return gc.game.State(), ErrNotHumanTurn
	}
	if _, err := gc.game.UseSkill(id, owner, target); err != nil {
		return gc.game.State(), err
	}
	return gc.settleLocked(), nil
}

func (gc *GameController) HumanCounter(counterID, targetID SkillID) (GameState, error) {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	pending := gc.game.state.Effects.PendingCounter
	if pending == nil {
		return gc.game.State(), ErrNoCounterWindow
	}
	if !gc.isHuman(pending.Counterer) {
		return gc.game.State(), ErrNotHumanTurn
	}
	if _, err := gc.game.CounterSkill(counterID, pending.Counterer, targetID); err != nil {
		return gc.game.State(), err
	}
	return gc.settleLocked(), nil
}

func (gc *GameController) HumanSkipCounter() (GameState, error) {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	pending := gc.game.state.Effects.PendingCounter
	if pending == nil {
		return gc.game.State(), ErrNoCounterWindow
	}
	if !gc.isHuman(pending.Counterer) {
		return gc.game.State(), ErrNotHumanTurn
	}
	if _, err := gc.game.SkipCounter(); err != nil {
		return gc.game.State(), err
	}
	return gc.settleLocked(), nil
}

// PassFrozenTurn gives up the turn of a frozen human.
func (gc *GameController) PassFrozenTurn() (GameState, error) {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	current := gc.game.state.CurrentPlayer
	if !gc.isHuman(current) {
		return gc.game.State(), ErrNotHumanTurn
	}
	if !gc.game.state.IsFrozen(current) {
		return gc.game.State(), ErrNotFrozen
	}
	if _, err := gc.game.SwitchPlayer(); err != nil {
		return gc.game.State(), err
	}
	return gc.settleLocked(), nil
}

func (gc *GameController) SelectSkillTarget(owner PlayerColor, id SkillID) (GameState, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.isHuman(owner) || gc.game.state.CurrentPlayer != owner {
		return gc.game.State(), ErrNotHumanTurn
	}
	return gc.game.SetSelectingSkillTarget(&SkillTarget{SkillID: id, Owner: owner})
}

func (gc *GameController) ClearSkillTarget() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	state, _ := gc.game.SetSelectingSkillTarget(nil)
	return state
}

// Hint suggests a placement for the side to move.
func (gc *GameController) Hint() (Move, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	state := gc.game.state
	if state.Phase != PhasePlaying {
		return Move{}, false
	}
	return heuristicFromConfig(gc.config.Get()).bestMove(state.Board, state.CurrentPlayer)
}

// Tick advances whatever is pending: the human counter countdown, a frozen
// turn, or an AI turn. It reports whether the state changed.
func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.unlockAndPublish()
	before := gc.game.state
	if before.Phase == PhaseReady || before.Phase == PhasePaused {
		return false
	}
	changed := gc.stepLocked()
	after := gc.settleLocked()
	return changed || after.TurnCount != before.TurnCount || after.Phase != before.Phase ||
		after.CurrentPlayer != before.CurrentPlayer
}

func (gc *GameController) stepLocked() bool {
	state := gc.game.state
	now := gc.now()
	config := gc.config.Get()

	if pending := state.Effects.PendingCounter; pending != nil {
		// AI counterers are answered in settleLocked.
		if now.Sub(gc.lastCounterTick) < config.CounterTick() {
			return false
		}
		gc.lastCounterTick = now
		_, expired := gc.game.TickCounterWindow()
		if expired {
			gc.logger.Info("counter window timed out", zap.String("skill", string(pending.SkillID)))
		}
		return true
	}
	if state.Phase != PhasePlaying {
		return false
	}

	current := state.CurrentPlayer
	ai, isAI := gc.aiSeat(current)
	if state.IsFrozen(current) {
		if isAI {
			if decision, ok := ai.DecideRescue(NewAIView(state, current)); ok {
				if _, err := gc.game.UseSkill(decision.SkillID, current, decision.Target); err == nil {
					return true
				}
			}
			_, err := gc.game.SwitchPlayer()
			return err == nil
		}
		if now.Sub(gc.turnStartedAt) < config.FrozenPass() {
			return false
		}
		gc.logger.Debug("frozen turn auto-passed", zap.Stringer("player", current))
		_, err := gc.game.SwitchPlayer()
		return err == nil
	}
	if !isAI {
		return false
	}
	if now.Sub(gc.turnStartedAt) < config.AiMoveDelay() {
		return false
	}

	key := turnKey{turn: state.TurnCount, player: current}
	if gc.skillDecided != key {
		gc.skillDecided = key
		if decision, ok := ai.DecideSkill(NewAIView(state, current)); ok {
			if _, err := gc.game.UseSkill(decision.SkillID, current, decision.Target); err == nil {
				return true
			}
		}
	}

	move, ok := ai.ChooseMove(NewAIView(state, current))
	if !ok {
		return false
	}
	_, err := gc.placeAndPassLocked(move, current)
	return err == nil
}

// settleLocked resolves everything the AI seats answer immediately, then
// announces a finished game once.
func (gc *GameController) settleLocked() GameState {
	for range 4 {
		if !gc.answerAILocked() {
			break
		}
	}
	state := gc.game.State()
	now := gc.now()

	if seen := (turnKey{turn: state.TurnCount, player: state.CurrentPlayer}); seen != gc.seenTurn {
		gc.seenTurn = seen
		gc.turnStartedAt = now
	}
	if state.Effects.PendingCounter == nil {
		gc.lastCounterTick = now
	}

	switch {
	case state.Phase == PhasePlaying:
		gc.announced = false
	case state.Phase == PhaseEnded && state.Effects.PendingCounter == nil && !gc.announced:
		gc.announced = true
		gc.announceLocked(state, now)
	}
	return state
}

func (gc *GameController) answerAILocked() bool {
	state := gc.game.state
	if pending := state.Effects.PendingCounter; pending != nil {
		ai, ok := gc.aiSeat(pending.Counterer)
		if !ok {
			return false
		}
		if counter, ok := ai.DecideCounter(pending.SkillID, state.SkillsFor(pending.Counterer)); ok {
			if _, err := gc.game.CounterSkill(counter, pending.Counterer, pending.SkillID); err == nil {
				return true
			}
		}
		_, err := gc.game.SkipCounter()
		return err == nil
	}
	if state.Phase == PhaseEnded && state.Effects.BoardBroken {
		victim := state.Effects.BrokenBy.Opponent()
		ai, ok := gc.aiSeat(victim)
		if !ok {
			return false
		}
		if decision, ok := ai.DecideRescue(NewAIView(state, victim)); ok {
			_, err := gc.game.UseSkill(decision.SkillID, victim, decision.Target)
			return err == nil
		}
	}
	return false
}

// announceLocked queues the outcome; unlockAndPublish sends it once the
// game lock is released so a slow broker never stalls ticking.
func (gc *GameController) announceLocked(state GameState, now time.Time) {
	gc.logger.Info("game over", zap.Stringer("result", state.Winner), zap.Int("turns", state.TurnCount))
	gc.outbox = append(gc.outbox, OutcomeEvent{
		Event:           "GAME_OVER",
		GameID:          gc.id,
		Result:          state.Winner,
		Turns:           state.TurnCount,
		DurationSeconds: now.Sub(gc.startedAt).Seconds(),
	})
}

func (gc *GameController) unlockAndPublish() {
	events := gc.outbox
	gc.outbox = nil
	gc.mu.Unlock()
	for _, event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := gc.publisher.PublishOutcome(ctx, event); err != nil {
			gc.logger.Warn("publish outcome", zap.String("game_id", event.GameID), zap.Error(err))
		}
		cancel()
	}
}
