package main

import (
	"fmt"

	"go.uber.org/zap"
)

// CounterWindowTicks is how many ticks a counter window stays open before
// the skip is forced.
const CounterWindowTicks = 5

// Game owns one authoritative GameState. Every action either returns the
// next snapshot or an error with the state left exactly as it was.
type Game struct {
	state  GameState
	logger *zap.Logger
}

func NewGame(logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{state: InitialGameState(), logger: logger}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) Start() GameState {
	state := InitialGameState()
	state.Phase = PhasePlaying
	g.state = state
	g.logger.Debug("game started")
	return g.State()
}

func (g *Game) Reset() GameState {
	g.logger.Debug("game reset", zap.Int("turns", g.state.TurnCount))
	return g.Start()
}

func (g *Game) PlacePiece(x, y int, player PlayerColor) (GameState, error) {
	s := g.state
	switch {
	case s.Phase != PhasePlaying:
		return g.reject("place", player, fmt.Errorf("%w: %s", ErrWrongPhase, s.Phase))
	case s.Effects.PendingCounter != nil:
		return g.reject("place", player, ErrCounterPending)
	case !player.Valid():
		return g.reject("place", player, ErrInvalidPlayer)
	case !s.Board.InBounds(x, y):
		return g.reject("place", player, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y))
	case !s.Board.IsEmpty(x, y):
		return g.reject("place", player, fmt.Errorf("%w: (%d,%d)", ErrCellOccupied, x, y))
	case s.IsFrozen(player):
		return g.reject("place", player, ErrPlayerFrozen)
	}

	next := s.Clone()
	next.Board.Set(x, y, CellFromPlayer(player))
	record := MoveRecord{X: x, Y: y, Owner: player, Turn: s.TurnCount}
	next.TurnCount++
	next.History.Push(record)
	next.LastMove = &record
	next.SelectingSkillTarget = nil

	if line, ok := CheckWin(next.Board, x, y, player); ok {
		next.Phase = PhaseEnded
		next.Winner = winResultFor(player)
		next.WinningLine = &line
		g.logger.Info("five in a row", zap.Stringer("player", player), zap.Int("turn", next.TurnCount))
	} else if IsDraw(next.Board) {
		next.Phase = PhaseEnded
		next.Winner = ResultDraw
		g.logger.Info("board full, draw", zap.Int("turn", next.TurnCount))
	}
	return g.commit(next), nil
}

func (g *Game) UseSkill(id SkillID, owner PlayerColor, target *Move) (GameState, error) {
	s := g.state
	def, ok := LookupSkill(id)
	if !ok {
		return g.reject("skill", owner, fmt.Errorf("%w: %s", ErrUnknownSkill, id))
	}
	if !owner.Valid() {
		return g.reject("skill", owner, ErrInvalidPlayer)
	}
	if s.Effects.PendingCounter != nil {
		return g.reject("skill", owner, ErrCounterPending)
	}
	if def.IsCounterOnly() {
		return g.reject("skill", owner, fmt.Errorf("%w: %s", ErrCounterOnly, id))
	}
	if s.SkillsFor(owner)[id].IsUsed {
		return g.reject("skill", owner, fmt.Errorf("%w: %s", ErrSkillUsed, id))
	}
	if def.Category == CategoryRevive {
		if !s.Effects.BoardBroken {
			return g.reject("skill", owner, fmt.Errorf("%w: board is intact", ErrSkillUnavailable))
		}
	} else if s.Phase != PhasePlaying {
		return g.reject("skill", owner, fmt.Errorf("%w: %s", ErrWrongPhase, s.Phase))
	}
	if s.IsFrozen(owner) && !usableWhileFrozen(def) {
		return g.reject("skill", owner, ErrPlayerFrozen)
	}
	if !skillAvailable(s, owner, def) {
		return g.reject("skill", owner, fmt.Errorf("%w: %s", ErrSkillUnavailable, id))
	}
	if def.NeedsTarget {
		if target == nil || s.Board.At(target.X, target.Y) != CellFromPlayer(owner.Opponent()) {
			return g.reject("skill", owner, fmt.Errorf("%w: %s needs an opponent stone", ErrInvalidTarget, id))
		}
	}

	next := markSkillUsed(s, owner, id)
	next, err := applySkillEffect(next, def, owner, target)
	if err != nil {
		return g.reject("skill", owner, err)
	}
	cast := SkillCast{SkillID: id, Owner: owner}
	if target != nil {
		t := *target
		cast.Target = &t
	}
	next.Effects.LastSkillUsed = &cast
	next.SelectingSkillTarget = nil
	next = openCounterWindow(next, def, owner, CounterWindowTicks)

	g.logger.Info("skill used",
		zap.String("skill", string(id)),
		zap.Stringer("player", owner),
		zap.Bool("counter_window", next.Effects.PendingCounter != nil),
	)
	return g.commit(next), nil
}

// CounterSkill spends counterID to negate targetID inside its open window.
func (g *Game) CounterSkill(counterID SkillID, owner PlayerColor, targetID SkillID) (GameState, error) {
	s := g.state
	pending := s.Effects.PendingCounter
	if pending == nil || pending.SkillID != targetID || pending.CounterSkillID != counterID || pending.Counterer != owner {
		return g.reject("counter", owner, fmt.Errorf("%w: %s against %s", ErrNoCounterWindow, counterID, targetID))
	}
	if s.SkillsFor(owner)[counterID].IsUsed {
		return g.reject("counter", owner, fmt.Errorf("%w: %s", ErrSkillUsed, counterID))
	}

	next := markSkillUsed(s, owner, counterID)
	next, err := revertSkillEffect(next, targetID)
	if err != nil {
		return g.reject("counter", owner, err)
	}
	next = closeCounterWindow(next)
	next.Effects.LastSkillUsed = &SkillCast{SkillID: counterID, Owner: owner}

	g.logger.Info("skill countered",
		zap.String("skill", string(targetID)),
		zap.String("counter", string(counterID)),
		zap.Stringer("player", owner),
	)
	return g.commit(next), nil
}

// SkipCounter closes the open counter window and lets the effect stand.
func (g *Game) SkipCounter() (GameState, error) {
	if g.state.Effects.PendingCounter == nil {
		return g.reject("skip_counter", PlayerNone, ErrNoCounterWindow)
	}
	pending := *g.state.Effects.PendingCounter
	g.logger.Debug("counter skipped", zap.String("skill", string(pending.SkillID)), zap.Stringer("player", pending.Counterer))
	return g.commit(closeCounterWindow(g.state)), nil
}

// TickCounterWindow counts the open window down by one tick and forces the
// skip when it runs out. The bool reports whether the window expired.
func (g *Game) TickCounterWindow() (GameState, bool) {
	pending := g.state.Effects.PendingCounter
	if pending == nil {
		return g.State(), false
	}
	if pending.TicksLeft <= 1 {
		g.logger.Debug("counter window expired", zap.String("skill", string(pending.SkillID)))
		return g.commit(closeCounterWindow(g.state)), true
	}
	next := g.state
	next.Effects = g.state.Effects.Clone()
	next.Effects.PendingCounter.TicksLeft--
	return g.commit(next), false
}

// SwitchPlayer hands the turn over. Entering a frozen player's turn burns
// one of their frozen turns.
func (g *Game) SwitchPlayer() (GameState, error) {
	s := g.state
	if s.Phase != PhasePlaying {
		return g.reject("switch", s.CurrentPlayer, fmt.Errorf("%w: %s", ErrWrongPhase, s.Phase))
	}
	if s.Effects.PendingCounter != nil {
		return g.reject("switch", s.CurrentPlayer, ErrCounterPending)
	}
	next := s
	next.CurrentPlayer = s.CurrentPlayer.Opponent()
	next.SelectingSkillTarget = nil
	next = tickFreeze(next, next.CurrentPlayer)
	return g.commit(next), nil
}

// SetSelectingSkillTarget records (or with nil clears) a skill waiting for
// its target. It never spends the skill.
func (g *Game) SetSelectingSkillTarget(target *SkillTarget) (GameState, error) {
	next := g.state
	if target == nil {
		next.SelectingSkillTarget = nil
		return g.commit(next), nil
	}
	def, ok := LookupSkill(target.SkillID)
	if !ok {
		return g.reject("select_target", target.Owner, fmt.Errorf("%w: %s", ErrUnknownSkill, target.SkillID))
	}
	if !target.Owner.Valid() {
		return g.reject("select_target", target.Owner, ErrInvalidPlayer)
	}
	if !def.NeedsTarget {
		return g.reject("select_target", target.Owner, fmt.Errorf("%w: %s takes no target", ErrInvalidTarget, def.ID))
	}
	selected := *target
	next.SelectingSkillTarget = &selected
	return g.commit(next), nil
}

func (g *Game) commit(next GameState) GameState {
	g.state = refreshAvailability(next)
	return g.State()
}

func (g *Game) reject(action string, player PlayerColor, err error) (GameState, error) {
	g.logger.Debug("action rejected",
		zap.String("action", action),
		zap.Stringer("player", player),
		zap.Error(err),
	)
	return g.State(), err
}
