package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OutcomeEvent
}

func (p *recordingPublisher) PublishOutcome(_ context.Context, event OutcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []OutcomeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OutcomeEvent(nil), p.events...)
}

func newTestController(t *testing.T, mode string) (*GameController, *fakeClock, *recordingPublisher) {
	t.Helper()
	settings, err := SettingsForMode(mode)
	require.NoError(t, err)
	clock := newFakeClock()
	publisher := &recordingPublisher{}
	gc := NewGameController("game-1", settings, NewConfigStore(DefaultConfig()), nil,
		WithClock(clock.Now), WithPublisher(publisher))
	gc.Start()
	return gc, clock, publisher
}

func TestControllerAIAnswersHumanMove(t *testing.T) {
	gc, _, _ := newTestController(t, ModeAIVsHuman)

	state, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	assert.Equal(t, PlayerWhite, state.CurrentPlayer)

	_, err = gc.ApplyHumanMove(Move{X: 0, Y: 0})
	assert.ErrorIs(t, err, ErrNotHumanTurn)

	require.True(t, gc.Tick())
	state = gc.State()
	assert.Equal(t, PlayerBlack, state.CurrentPlayer)
	assert.Equal(t, 2, state.TurnCount)
	assert.Equal(t, CellWhite, state.Board.At(6, 6))

	assert.False(t, gc.Tick(), "nothing to do on the human's turn")
}

func TestControllerRejectsIllegalHumanMove(t *testing.T) {
	gc, _, _ := newTestController(t, ModeHumanVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)

	state, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	assert.ErrorIs(t, err, ErrCellOccupied)
	assert.Equal(t, PlayerWhite, state.CurrentPlayer)
	assert.Equal(t, 1, state.TurnCount)
}

func TestControllerAICountersRemoval(t *testing.T) {
	gc, _, _ := newTestController(t, ModeAIVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	require.True(t, gc.Tick())

	state, err := gc.UseHumanSkill(PlayerBlack, SkillRemovePiece, &Move{X: 6, Y: 6})
	require.NoError(t, err)
	assert.Nil(t, state.Effects.PendingCounter)
	assert.Equal(t, CellWhite, state.Board.At(6, 6))
	assert.Empty(t, state.Effects.RemovedPieces)
	assert.True(t, state.BlackSkills[SkillRemovePiece].IsUsed)
	assert.True(t, state.WhiteSkills[SkillBlockRemoval].IsUsed)
	assert.Equal(t, PlayerBlack, state.CurrentPlayer)
}

func TestControllerAISuppressesBoardBreak(t *testing.T) {
	gc, _, publisher := newTestController(t, ModeAIVsHuman)

	state, err := gc.UseHumanSkill(PlayerBlack, SkillBreakBoard, nil)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, state.Phase)
	assert.False(t, state.Effects.BoardBroken)
	assert.True(t, state.WhiteSkills[SkillReverseBreak].IsUsed)
	assert.Empty(t, publisher.Events())
}

func TestControllerFrozenAIRevivesBrokenBoard(t *testing.T) {
	gc, _, publisher := newTestController(t, ModeAIVsHuman)
	_, err := gc.UseHumanSkill(PlayerBlack, SkillFreeze, nil)
	require.NoError(t, err)
	gc.game.state = refreshAvailability(markSkillUsed(gc.game.state, PlayerWhite, SkillReverseBreak))

	state, err := gc.UseHumanSkill(PlayerBlack, SkillBreakBoard, nil)
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, state.Phase)
	assert.False(t, state.Effects.BoardBroken)
	assert.True(t, state.WhiteSkills[SkillRestoreBoard].IsUsed)
	assert.True(t, state.IsFrozen(PlayerWhite))
	assert.Empty(t, publisher.Events())
}

func TestControllerSkillOnlyOnOwnTurn(t *testing.T) {
	gc, _, _ := newTestController(t, ModeHumanVsHuman)
	_, err := gc.UseHumanSkill(PlayerWhite, SkillFreeze, nil)
	assert.ErrorIs(t, err, ErrNotHumanTurn)

	gcAI, _, _ := newTestController(t, ModeAIVsHuman)
	_, err = gcAI.UseHumanSkill(PlayerWhite, SkillFreeze, nil)
	assert.ErrorIs(t, err, ErrNotHumanTurn)
}

func TestControllerHumanCounterWindowTimesOut(t *testing.T) {
	gc, clock, _ := newTestController(t, ModeAIVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = gc.game.UseSkill(SkillRemovePiece, PlayerWhite, &Move{X: 7, Y: 7})
	require.NoError(t, err)
	require.NotNil(t, gc.State().Effects.PendingCounter)

	assert.False(t, gc.Tick(), "tick interval not reached")
	for i := 0; i < CounterWindowTicks; i++ {
		clock.Advance(time.Second)
		require.True(t, gc.Tick())
	}
	state := gc.State()
	assert.Nil(t, state.Effects.PendingCounter)
	assert.Equal(t, CellEmpty, state.Board.At(7, 7))
	assert.False(t, state.BlackSkills[SkillBlockRemoval].IsUsed)
}

func TestControllerHumanCounters(t *testing.T) {
	gc, _, _ := newTestController(t, ModeAIVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = gc.game.UseSkill(SkillRemovePiece, PlayerWhite, &Move{X: 7, Y: 7})
	require.NoError(t, err)

	_, err = gc.HumanCounter(SkillReverseBreak, SkillRemovePiece)
	assert.ErrorIs(t, err, ErrNoCounterWindow)

	state, err := gc.HumanCounter(SkillBlockRemoval, SkillRemovePiece)
	require.NoError(t, err)
	assert.Equal(t, CellBlack, state.Board.At(7, 7))
	assert.Nil(t, state.Effects.PendingCounter)

	_, err = gc.HumanSkipCounter()
	assert.ErrorIs(t, err, ErrNoCounterWindow)
}

func TestControllerFrozenHumanAutoPasses(t *testing.T) {
	gc, clock, _ := newTestController(t, ModeAIVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = gc.game.UseSkill(SkillFreeze, PlayerWhite, nil)
	require.NoError(t, err)

	require.True(t, gc.Tick())
	state := gc.State()
	require.Equal(t, PlayerBlack, state.CurrentPlayer)
	require.True(t, state.IsFrozen(PlayerBlack))

	_, err = gc.ApplyHumanMove(Move{X: 0, Y: 0})
	assert.ErrorIs(t, err, ErrPlayerFrozen)
	assert.False(t, gc.Tick(), "frozen human keeps the turn until the pass delay")

	clock.Advance(3 * time.Second)
	require.True(t, gc.Tick())
	assert.Equal(t, PlayerWhite, gc.State().CurrentPlayer)
}

func TestControllerPassFrozenTurn(t *testing.T) {
	gc, _, _ := newTestController(t, ModeHumanVsHuman)
	_, err := gc.PassFrozenTurn()
	assert.ErrorIs(t, err, ErrNotFrozen)

	_, err = gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = gc.UseHumanSkill(PlayerWhite, SkillFreeze, nil)
	require.NoError(t, err)
	_, err = gc.ApplyHumanMove(Move{X: 8, Y: 8})
	require.NoError(t, err)

	state, err := gc.PassFrozenTurn()
	require.NoError(t, err)
	assert.Equal(t, PlayerWhite, state.CurrentPlayer)
	assert.Equal(t, 1, state.Effects.FrozenTurnsLeft)
}

func TestControllerPublishesOutcomeOnce(t *testing.T) {
	gc, clock, publisher := newTestController(t, ModeHumanVsHuman)
	moves := []Move{{7, 7}, {0, 0}, {7, 8}, {0, 2}, {7, 9}, {0, 4}, {7, 10}, {0, 6}}
	for _, m := range moves {
		_, err := gc.ApplyHumanMove(m)
		require.NoError(t, err)
	}
	clock.Advance(90 * time.Second)
	state, err := gc.ApplyHumanMove(Move{X: 7, Y: 11})
	require.NoError(t, err)
	assert.Equal(t, PhaseEnded, state.Phase)
	assert.Equal(t, ResultPlayerWin, state.Winner)

	gc.Tick()
	gc.Tick()
	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, OutcomeEvent{
		Event:           "GAME_OVER",
		GameID:          "game-1",
		Result:          ResultPlayerWin,
		Turns:           9,
		DurationSeconds: 90,
	}, events[0])
}

type lockCheckingPublisher struct {
	recordingPublisher
	gc       *GameController
	lockFree []bool
}

func (p *lockCheckingPublisher) PublishOutcome(ctx context.Context, event OutcomeEvent) error {
	free := p.gc.mu.TryLock()
	if free {
		p.gc.mu.Unlock()
	}
	p.lockFree = append(p.lockFree, free)
	return p.recordingPublisher.PublishOutcome(ctx, event)
}

func TestControllerPublishesAfterUnlocking(t *testing.T) {
	settings, err := SettingsForMode(ModeHumanVsHuman)
	require.NoError(t, err)
	publisher := &lockCheckingPublisher{}
	gc := NewGameController("game-1", settings, NewConfigStore(DefaultConfig()), nil,
		WithClock(newFakeClock().Now), WithPublisher(publisher))
	publisher.gc = gc
	gc.Start()

	moves := []Move{{7, 7}, {0, 0}, {7, 8}, {0, 2}, {7, 9}, {0, 4}, {7, 10}, {0, 6}, {7, 11}}
	for _, m := range moves {
		_, err := gc.ApplyHumanMove(m)
		require.NoError(t, err)
	}
	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, []bool{true}, publisher.lockFree)
}

func TestControllerAIVsAIFinishes(t *testing.T) {
	gc, _, publisher := newTestController(t, ModeAIVsAI)
	for i := 0; i < 2000 && gc.State().Phase != PhaseEnded; i++ {
		gc.Tick()
	}
	state := gc.State()
	require.Equal(t, PhaseEnded, state.Phase)
	assert.NotEqual(t, ResultNone, state.Winner)
	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, state.Winner, publisher.Events()[0].Result)
}

func TestControllerResetChangesMode(t *testing.T) {
	gc, _, _ := newTestController(t, ModeAIVsHuman)
	_, err := gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)

	settings := GameSettings{BlackType: PlayerHuman, WhiteType: PlayerHuman}
	state := gc.Reset(&settings)
	assert.Equal(t, 0, state.TurnCount)
	assert.Equal(t, ModeHumanVsHuman, gc.Settings().Mode())

	_, err = gc.ApplyHumanMove(Move{X: 7, Y: 7})
	require.NoError(t, err)
	_, err = gc.ApplyHumanMove(Move{X: 8, Y: 8})
	require.NoError(t, err)
}

func TestControllerHintAndTargets(t *testing.T) {
	gc, _, _ := newTestController(t, ModeHumanVsHuman)
	move, ok := gc.Hint()
	require.True(t, ok)
	assert.Equal(t, Move{X: 7, Y: 7}, move)

	state, err := gc.SelectSkillTarget(PlayerBlack, SkillRemovePiece)
	require.NoError(t, err)
	require.NotNil(t, state.SelectingSkillTarget)
	_, err = gc.SelectSkillTarget(PlayerWhite, SkillRemovePiece)
	assert.ErrorIs(t, err, ErrNotHumanTurn)

	state = gc.ClearSkillTarget()
	assert.Nil(t, state.SelectingSkillTarget)
}
