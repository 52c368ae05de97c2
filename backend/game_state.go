package main

import "slices"

// PlayerColor identifies a seat. Black is the player seat, White the AI seat.
type PlayerColor int

type GamePhase int

type GameResult int

const (
	PlayerNone PlayerColor = iota
	PlayerBlack
	PlayerWhite
)

const (
	PhaseReady GamePhase = iota
	PhasePlaying
	PhasePaused
	PhaseEnded
)

const (
	ResultNone GameResult = iota
	ResultPlayerWin
	ResultAIWin
	ResultDraw
	ResultBoardBrokenByPlayer
	ResultBoardBrokenByAI
)

func (p PlayerColor) Opponent() PlayerColor {
	switch p {
	case PlayerBlack:
		return PlayerWhite
	case PlayerWhite:
		return PlayerBlack
	default:
		return PlayerNone
	}
}

func (p PlayerColor) Valid() bool {
	return p == PlayerBlack || p == PlayerWhite
}

func (p PlayerColor) String() string {
	switch p {
	case PlayerBlack:
		return "black"
	case PlayerWhite:
		return "white"
	default:
		return "none"
	}
}

func (p GamePhase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "ready"
	}
}

func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (r GameResult) String() string {
	switch r {
	case ResultPlayerWin:
		return "player_win"
	case ResultAIWin:
		return "ai_win"
	case ResultDraw:
		return "draw"
	case ResultBoardBrokenByPlayer:
		return "board_broken_by_player"
	case ResultBoardBrokenByAI:
		return "board_broken_by_ai"
	default:
		return "none"
	}
}

func (r GameResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func winResultFor(player PlayerColor) GameResult {
	if player == PlayerBlack {
		return ResultPlayerWin
	}
	return ResultAIWin
}

func boardBrokenResultFor(player PlayerColor) GameResult {
	if player == PlayerBlack {
		return ResultBoardBrokenByPlayer
	}
	return ResultBoardBrokenByAI
}

type SkillUsage struct {
	IsUsed      bool `json:"is_used"`
	IsAvailable bool `json:"is_available"`
	UsedAtTurn  *int `json:"used_at_turn,omitempty"`
}

type SkillUsages map[SkillID]SkillUsage

func (s SkillUsages) Clone() SkillUsages {
	clone := make(SkillUsages, len(s))
	for id, usage := range s {
		clone[id] = usage
	}
	return clone
}

type RemovedPiece struct {
	X             int         `json:"x"`
	Y             int         `json:"y"`
	Owner         PlayerColor `json:"owner"`
	RemovedAtTurn int         `json:"removed_at_turn"`
}

type SkillCast struct {
	SkillID SkillID     `json:"skill_id"`
	Owner   PlayerColor `json:"owner"`
	Target  *Move       `json:"target,omitempty"`
}

// PendingCounter is an open counter-window: Counterer may spend
// CounterSkillID to negate SkillID before TicksLeft runs out.
type PendingCounter struct {
	SkillID        SkillID     `json:"skill_id"`
	Caster         PlayerColor `json:"caster"`
	CounterSkillID SkillID     `json:"counter_skill_id"`
	Counterer      PlayerColor `json:"counterer"`
	TicksLeft      int         `json:"ticks_left"`
}

// SkillTarget describes a skill waiting for the caster to pick a target.
type SkillTarget struct {
	SkillID SkillID     `json:"skill_id"`
	Owner   PlayerColor `json:"owner"`
}

type EffectState struct {
	FrozenPlayer    PlayerColor     `json:"frozen_player"`
	FrozenTurnsLeft int             `json:"frozen_turns_left"`
	RemovedPieces   []RemovedPiece  `json:"removed_pieces"`
	BoardBroken     bool            `json:"board_broken"`
	BrokenBy        PlayerColor     `json:"broken_by"`
	LastSkillUsed   *SkillCast      `json:"last_skill_used,omitempty"`
	PendingCounter  *PendingCounter `json:"pending_counter,omitempty"`
}

func (e EffectState) Clone() EffectState {
	clone := e
	clone.RemovedPieces = slices.Clone(e.RemovedPieces)
	if clone.RemovedPieces == nil {
		clone.RemovedPieces = []RemovedPiece{}
	}
	if e.LastSkillUsed != nil {
		cast := *e.LastSkillUsed
		if cast.Target != nil {
			target := *cast.Target
			cast.Target = &target
		}
		clone.LastSkillUsed = &cast
	}
	if e.PendingCounter != nil {
		pending := *e.PendingCounter
		clone.PendingCounter = &pending
	}
	return clone
}

func (e EffectState) lastRemoved() (RemovedPiece, bool) {
	if len(e.RemovedPieces) == 0 {
		return RemovedPiece{}, false
	}
	return e.RemovedPieces[len(e.RemovedPieces)-1], true
}

type GameState struct {
	Board                Board        `json:"board"`
	CurrentPlayer        PlayerColor  `json:"current_player"`
	Phase                GamePhase    `json:"phase"`
	Winner               GameResult   `json:"winner"`
	History              MoveHistory  `json:"history"`
	BlackSkills          SkillUsages  `json:"black_skills"`
	WhiteSkills          SkillUsages  `json:"white_skills"`
	Effects              EffectState  `json:"effects"`
	TurnCount            int          `json:"turn_count"`
	WinningLine          *WinLine     `json:"winning_line,omitempty"`
	LastMove             *MoveRecord  `json:"last_move,omitempty"`
	SelectingSkillTarget *SkillTarget `json:"selecting_skill_target,omitempty"`
}

// InitialGameState is the state before start: empty board, Black to move,
// all skills unused.
func InitialGameState() GameState {
	state := GameState{
		Board:         NewBoard(),
		CurrentPlayer: PlayerBlack,
		Phase:         PhaseReady,
		Winner:        ResultNone,
		BlackSkills:   newSkillUsages(),
		WhiteSkills:   newSkillUsages(),
		Effects:       EffectState{RemovedPieces: []RemovedPiece{}},
	}
	return refreshAvailability(state)
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.History = s.History.Clone()
	clone.BlackSkills = s.BlackSkills.Clone()
	clone.WhiteSkills = s.WhiteSkills.Clone()
	clone.Effects = s.Effects.Clone()
	if s.WinningLine != nil {
		line := s.WinningLine.Clone()
		clone.WinningLine = &line
	}
	if s.LastMove != nil {
		last := *s.LastMove
		clone.LastMove = &last
	}
	if s.SelectingSkillTarget != nil {
		target := *s.SelectingSkillTarget
		clone.SelectingSkillTarget = &target
	}
	return clone
}

func (s GameState) SkillsFor(player PlayerColor) SkillUsages {
	if player == PlayerBlack {
		return s.BlackSkills
	}
	return s.WhiteSkills
}

func (s *GameState) setSkillsFor(player PlayerColor, usages SkillUsages) {
	if player == PlayerBlack {
		s.BlackSkills = usages
		return
	}
	s.WhiteSkills = usages
}

func (s GameState) IsFrozen(player PlayerColor) bool {
	return player != PlayerNone && s.Effects.FrozenPlayer == player && s.Effects.FrozenTurnsLeft > 0
}
