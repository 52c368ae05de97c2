package main

import (
	"fmt"
	"strings"
	"time"
)

type gameStatePayload struct {
	GameID string    `json:"game_id"`
	Mode   string    `json:"mode"`
	State  GameState `json:"state"`
}

type gameSummary struct {
	ID        string     `json:"id"`
	Mode      string     `json:"mode"`
	Phase     GamePhase  `json:"phase"`
	Winner    GameResult `json:"winner"`
	TurnCount int        `json:"turn_count"`
	CreatedAt time.Time  `json:"created_at"`
}

type createGameRequest struct {
	Mode  string `json:"mode"`
	Start bool   `json:"start"`
}

type resetRequest struct {
	Mode *string `json:"mode"`
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type skillRequest struct {
	Player string  `json:"player"`
	Skill  SkillID `json:"skill"`
	Target *Move   `json:"target"`
}

type counterRequest struct {
	Counter SkillID `json:"counter"`
	Target  SkillID `json:"target"`
}

type targetRequest struct {
	Player string  `json:"player"`
	Skill  SkillID `json:"skill"`
}

type hintResponse struct {
	Move      *Move `json:"move"`
	Available bool  `json:"available"`
}

func statePayload(controller *GameController) gameStatePayload {
	return gameStatePayload{
		GameID: controller.ID(),
		Mode:   controller.Settings().Mode(),
		State:  controller.State(),
	}
}

func summaryOf(controller *GameController) gameSummary {
	state := controller.State()
	return gameSummary{
		ID:        controller.ID(),
		Mode:      controller.Settings().Mode(),
		Phase:     state.Phase,
		Winner:    state.Winner,
		TurnCount: state.TurnCount,
		CreatedAt: controller.CreatedAt(),
	}
}

func parsePlayer(raw string) (PlayerColor, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "black", "1":
		return PlayerBlack, nil
	case "white", "2":
		return PlayerWhite, nil
	default:
		return PlayerNone, fmt.Errorf("%w: %q", ErrInvalidPlayer, raw)
	}
}
