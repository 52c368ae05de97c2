package main

import "fmt"

// Skill effects are pure: each takes a state value and returns a new one
// without touching the input's board, maps or slices.

func applySkillEffect(state GameState, def SkillDefinition, owner PlayerColor, target *Move) (GameState, error) {
	switch def.Category {
	case CategoryAttack:
		if target == nil {
			return state, ErrInvalidTarget
		}
		return removePiece(state, *target)
	case CategoryDefense:
		return restoreLastRemoved(state)
	case CategoryControl:
		return setFrozen(state, owner.Opponent(), def.FreezeTurns), nil
	case CategoryDecontrol:
		return clearFrozen(state), nil
	case CategoryFinisher:
		return breakBoard(state, owner), nil
	case CategoryRevive:
		return restoreBoard(state), nil
	default:
		return state, fmt.Errorf("%w: %s has no direct effect", ErrCounterOnly, def.ID)
	}
}

// revertSkillEffect undoes the effect a counterable skill just applied.
func revertSkillEffect(state GameState, targetID SkillID) (GameState, error) {
	def, ok := LookupSkill(targetID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownSkill, targetID)
	}
	switch def.Category {
	case CategoryAttack:
		return restoreLastRemoved(state)
	case CategoryFinisher:
		return restoreBoard(state), nil
	default:
		return state, fmt.Errorf("%w: %s cannot be reverted", ErrInvalidTarget, targetID)
	}
}

func removePiece(state GameState, target Move) (GameState, error) {
	owner, err := PlayerFromCell(state.Board.At(target.X, target.Y))
	if err != nil {
		return state, fmt.Errorf("%w: no stone at (%d,%d)", ErrInvalidTarget, target.X, target.Y)
	}
	next := state
	next.Board = state.Board.Clone()
	next.Board.Remove(target.X, target.Y)
	next.Effects = state.Effects.Clone()
	next.Effects.RemovedPieces = append(next.Effects.RemovedPieces, RemovedPiece{
		X:             target.X,
		Y:             target.Y,
		Owner:         owner,
		RemovedAtTurn: state.TurnCount,
	})
	return next, nil
}

func restoreLastRemoved(state GameState) (GameState, error) {
	piece, ok := state.Effects.lastRemoved()
	if !ok {
		return state, fmt.Errorf("%w: nothing to restore", ErrSkillUnavailable)
	}
	if !state.Board.IsEmpty(piece.X, piece.Y) {
		return state, fmt.Errorf("%w: (%d,%d) is occupied", ErrCellOccupied, piece.X, piece.Y)
	}
	next := state
	next.Board = state.Board.Clone()
	next.Board.Set(piece.X, piece.Y, CellFromPlayer(piece.Owner))
	next.Effects = state.Effects.Clone()
	next.Effects.RemovedPieces = next.Effects.RemovedPieces[:len(next.Effects.RemovedPieces)-1]
	return next, nil
}

func setFrozen(state GameState, player PlayerColor, turns int) GameState {
	next := state
	next.Effects = state.Effects.Clone()
	next.Effects.FrozenPlayer = player
	next.Effects.FrozenTurnsLeft = turns
	return next
}

func clearFrozen(state GameState) GameState {
	return setFrozen(state, PlayerNone, 0)
}

func breakBoard(state GameState, caster PlayerColor) GameState {
	next := state
	next.Effects = state.Effects.Clone()
	next.Effects.BoardBroken = true
	next.Effects.BrokenBy = caster
	next.Phase = PhaseEnded
	next.Winner = boardBrokenResultFor(caster)
	next.WinningLine = nil
	return next
}

func restoreBoard(state GameState) GameState {
	next := state
	next.Effects = state.Effects.Clone()
	next.Effects.BoardBroken = false
	next.Effects.BrokenBy = PlayerNone
	next.Phase = PhasePlaying
	next.Winner = ResultNone
	return next
}

// tickFreeze runs when the turn passes to player.
func tickFreeze(state GameState, player PlayerColor) GameState {
	if !state.IsFrozen(player) {
		return state
	}
	next := setFrozen(state, player, state.Effects.FrozenTurnsLeft-1)
	if next.Effects.FrozenTurnsLeft == 0 {
		next.Effects.FrozenPlayer = PlayerNone
	}
	return next
}

func markSkillUsed(state GameState, owner PlayerColor, id SkillID) GameState {
	next := state
	usages := state.SkillsFor(owner).Clone()
	turn := state.TurnCount
	usages[id] = SkillUsage{IsUsed: true, IsAvailable: false, UsedAtTurn: &turn}
	next.setSkillsFor(owner, usages)
	return next
}

// openCounterWindow gives the opponent a chance to answer a counterable
// skill, provided they still hold one of its counter skills.
func openCounterWindow(state GameState, def SkillDefinition, caster PlayerColor, ticks int) GameState {
	if !def.Counterable {
		return state
	}
	counterer := caster.Opponent()
	usages := state.SkillsFor(counterer)
	for _, counterID := range def.CounterSkillIDs {
		if usages[counterID].IsUsed {
			continue
		}
		next := state
		next.Effects = state.Effects.Clone()
		next.Effects.PendingCounter = &PendingCounter{
			SkillID:        def.ID,
			Caster:         caster,
			CounterSkillID: counterID,
			Counterer:      counterer,
			TicksLeft:      ticks,
		}
		return next
	}
	return state
}

func closeCounterWindow(state GameState) GameState {
	if state.Effects.PendingCounter == nil {
		return state
	}
	next := state
	next.Effects = state.Effects.Clone()
	next.Effects.PendingCounter = nil
	return next
}

// refreshAvailability recomputes IsAvailable for both players.
func refreshAvailability(state GameState) GameState {
	next := state
	for _, player := range []PlayerColor{PlayerBlack, PlayerWhite} {
		usages := state.SkillsFor(player).Clone()
		for id, usage := range usages {
			def := skillCatalog[id]
			usage.IsAvailable = skillAvailable(state, player, def)
			usages[id] = usage
		}
		next.setSkillsFor(player, usages)
	}
	return next
}

func skillAvailable(state GameState, owner PlayerColor, def SkillDefinition) bool {
	if state.SkillsFor(owner)[def.ID].IsUsed {
		return false
	}
	if state.IsFrozen(owner) && !usableWhileFrozen(def) {
		return false
	}
	switch def.RequiresCondition {
	case ConditionPieceRemoved:
		piece, ok := state.Effects.lastRemoved()
		if !ok || !state.Board.IsEmpty(piece.X, piece.Y) {
			return false
		}
	case ConditionFrozen:
		if !state.IsFrozen(owner) {
			return false
		}
	case ConditionBoardBroken:
		if !state.Effects.BoardBroken || state.Effects.BrokenBy == owner {
			return false
		}
	}
	if def.Category == CategoryControl && state.IsFrozen(owner.Opponent()) {
		return false
	}
	return true
}

// usableWhileFrozen lists what a frozen owner keeps: thawing itself and
// rebuilding a board the opponent broke. Ended games never tick the freeze.
func usableWhileFrozen(def SkillDefinition) bool {
	return def.Category == CategoryDecontrol || def.Category == CategoryRevive
}
