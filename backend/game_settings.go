package main

import "fmt"

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

const (
	ModeAIVsHuman    = "ai_vs_human"
	ModeHumanVsHuman = "human_vs_human"
	ModeAIVsAI       = "ai_vs_ai"
)

type GameSettings struct {
	BlackType PlayerType `json:"-"`
	WhiteType PlayerType `json:"-"`
}

// DefaultGameSettings seats the human on Black against the AI on White.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		BlackType: PlayerHuman,
		WhiteType: PlayerAI,
	}
}

func (s GameSettings) TypeFor(player PlayerColor) PlayerType {
	if player == PlayerBlack {
		return s.BlackType
	}
	return s.WhiteType
}

func (s GameSettings) Mode() string {
	switch {
	case s.BlackType == PlayerAI && s.WhiteType == PlayerAI:
		return ModeAIVsAI
	case s.BlackType == PlayerHuman && s.WhiteType == PlayerHuman:
		return ModeHumanVsHuman
	default:
		return ModeAIVsHuman
	}
}

func SettingsForMode(mode string) (GameSettings, error) {
	switch mode {
	case "", ModeAIVsHuman:
		return DefaultGameSettings(), nil
	case ModeHumanVsHuman:
		return GameSettings{BlackType: PlayerHuman, WhiteType: PlayerHuman}, nil
	case ModeAIVsAI:
		return GameSettings{BlackType: PlayerAI, WhiteType: PlayerAI}, nil
	default:
		return GameSettings{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, mode)
	}
}
