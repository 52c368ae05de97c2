package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillCatalogIsValid(t *testing.T) {
	require.NoError(t, validateSkillCatalog(skillCatalog, skillOrder))
	assert.Len(t, SkillCatalog(), 8)
}

func TestSkillCatalogOnlyTwoCounterable(t *testing.T) {
	counterable := []SkillID{}
	for _, def := range SkillCatalog() {
		if def.Counterable {
			counterable = append(counterable, def.ID)
		}
	}
	assert.ElementsMatch(t, []SkillID{SkillRemovePiece, SkillBreakBoard}, counterable)
}

func TestSkillCatalogCounterLinks(t *testing.T) {
	block, ok := LookupSkill(SkillBlockRemoval)
	require.True(t, ok)
	assert.Equal(t, SkillRemovePiece, block.CounterTargetID)
	assert.True(t, block.IsCounterOnly())

	reverse, ok := LookupSkill(SkillReverseBreak)
	require.True(t, ok)
	assert.Equal(t, SkillBreakBoard, reverse.CounterTargetID)

	freeze, ok := LookupSkill(SkillFreeze)
	require.True(t, ok)
	assert.False(t, freeze.Counterable)
	assert.Equal(t, 2, freeze.FreezeTurns)
	assert.Equal(t, []SkillID{SkillUnfreeze}, freeze.CounterSkillIDs)
}

func TestValidateSkillCatalogRejectsDanglingReference(t *testing.T) {
	catalog := map[SkillID]SkillDefinition{}
	for id, def := range skillCatalog {
		catalog[id] = def
	}
	broken := catalog[SkillBreakBoard]
	broken.CounterSkillIDs = []SkillID{"nope"}
	catalog[SkillBreakBoard] = broken
	assert.Error(t, validateSkillCatalog(catalog, skillOrder))

	delete(catalog, SkillBreakBoard)
	assert.Error(t, validateSkillCatalog(catalog, skillOrder))
}

func TestValidateSkillCatalogRejectsTargetingNonCounterable(t *testing.T) {
	catalog := map[SkillID]SkillDefinition{}
	for id, def := range skillCatalog {
		catalog[id] = def
	}
	block := catalog[SkillBlockRemoval]
	block.CounterTargetID = SkillFreeze
	catalog[SkillBlockRemoval] = block
	assert.Error(t, validateSkillCatalog(catalog, skillOrder))
}

func TestLookupUnknownSkill(t *testing.T) {
	_, ok := LookupSkill("teleport")
	assert.False(t, ok)
}

func TestInitialAvailability(t *testing.T) {
	state := InitialGameState()
	for _, player := range []PlayerColor{PlayerBlack, PlayerWhite} {
		skills := state.SkillsFor(player)
		require.Len(t, skills, 8)
		for id, usage := range skills {
			assert.False(t, usage.IsUsed, "%s", id)
		}
		assert.True(t, skills[SkillRemovePiece].IsAvailable)
		assert.True(t, skills[SkillFreeze].IsAvailable)
		assert.True(t, skills[SkillBreakBoard].IsAvailable)
		assert.True(t, skills[SkillBlockRemoval].IsAvailable)
		assert.False(t, skills[SkillRestorePiece].IsAvailable)
		assert.False(t, skills[SkillUnfreeze].IsAvailable)
		assert.False(t, skills[SkillRestoreBoard].IsAvailable)
	}
}

func TestRemoveThenRestoreRoundTrip(t *testing.T) {
	state := InitialGameState()
	state.Board.Set(4, 4, CellWhite)
	before := state.Clone()

	removed, err := removePiece(state, Move{X: 4, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, CellEmpty, removed.Board.At(4, 4))
	assert.Equal(t, CellWhite, state.Board.At(4, 4), "input state must not change")
	require.Len(t, removed.Effects.RemovedPieces, 1)
	assert.Equal(t, RemovedPiece{X: 4, Y: 4, Owner: PlayerWhite}, removed.Effects.RemovedPieces[0])

	restored, err := restoreLastRemoved(removed)
	require.NoError(t, err)
	assert.Equal(t, CellWhite, restored.Board.At(4, 4))
	assert.Len(t, restored.Effects.RemovedPieces, len(before.Effects.RemovedPieces))
	assert.Equal(t, before.Board.Rows(), restored.Board.Rows())
}

func TestRestoreIsLIFO(t *testing.T) {
	state := InitialGameState()
	state.Board.Set(1, 1, CellBlack)
	state.Board.Set(2, 2, CellWhite)

	state, err := removePiece(state, Move{X: 1, Y: 1})
	require.NoError(t, err)
	state, err = removePiece(state, Move{X: 2, Y: 2})
	require.NoError(t, err)

	state, err = restoreLastRemoved(state)
	require.NoError(t, err)
	assert.Equal(t, CellWhite, state.Board.At(2, 2))
	assert.Equal(t, CellEmpty, state.Board.At(1, 1))
	assert.Len(t, state.Effects.RemovedPieces, 1)
}

func TestRestoreNeedsEmptyCell(t *testing.T) {
	state := InitialGameState()
	state.Board.Set(1, 1, CellBlack)
	state, err := removePiece(state, Move{X: 1, Y: 1})
	require.NoError(t, err)
	state.Board.Set(1, 1, CellWhite)

	assert.False(t, skillAvailable(state, PlayerBlack, skillCatalog[SkillRestorePiece]))
	_, err = restoreLastRemoved(state)
	assert.ErrorIs(t, err, ErrCellOccupied)
}

func TestRemovePieceRejectsEmptyCell(t *testing.T) {
	_, err := removePiece(InitialGameState(), Move{X: 3, Y: 3})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestBreakAndRestoreBoard(t *testing.T) {
	state := InitialGameState()
	state.Phase = PhasePlaying

	broken := breakBoard(state, PlayerWhite)
	assert.True(t, broken.Effects.BoardBroken)
	assert.Equal(t, PhaseEnded, broken.Phase)
	assert.Equal(t, ResultBoardBrokenByAI, broken.Winner)
	assert.False(t, state.Effects.BoardBroken)

	restored := restoreBoard(broken)
	assert.False(t, restored.Effects.BoardBroken)
	assert.Equal(t, PhasePlaying, restored.Phase)
	assert.Equal(t, ResultNone, restored.Winner)
}

func TestFrozenOwnerOnlyHasDecontrol(t *testing.T) {
	state := refreshAvailability(setFrozen(InitialGameState(), PlayerBlack, 2))
	black := state.SkillsFor(PlayerBlack)
	assert.True(t, black[SkillUnfreeze].IsAvailable)
	assert.False(t, black[SkillRemovePiece].IsAvailable)
	assert.False(t, black[SkillFreeze].IsAvailable)

	white := state.SkillsFor(PlayerWhite)
	assert.False(t, white[SkillFreeze].IsAvailable, "opponent already frozen")
	assert.False(t, white[SkillUnfreeze].IsAvailable)
}

func TestFrozenOwnerKeepsReviveOnBrokenBoard(t *testing.T) {
	state := setFrozen(InitialGameState(), PlayerBlack, 2)
	state = refreshAvailability(breakBoard(state, PlayerWhite))
	black := state.SkillsFor(PlayerBlack)
	assert.True(t, black[SkillRestoreBoard].IsAvailable)
	assert.False(t, black[SkillRemovePiece].IsAvailable)
}

func TestTickFreeze(t *testing.T) {
	state := setFrozen(InitialGameState(), PlayerBlack, 2)

	state = tickFreeze(state, PlayerWhite)
	assert.Equal(t, 2, state.Effects.FrozenTurnsLeft)

	state = tickFreeze(state, PlayerBlack)
	assert.Equal(t, 1, state.Effects.FrozenTurnsLeft)
	assert.Equal(t, PlayerBlack, state.Effects.FrozenPlayer)

	state = tickFreeze(state, PlayerBlack)
	assert.Equal(t, 0, state.Effects.FrozenTurnsLeft)
	assert.Equal(t, PlayerNone, state.Effects.FrozenPlayer)
}
