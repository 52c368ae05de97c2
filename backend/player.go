package main

// IPlayer occupies one seat of a game.
type IPlayer interface {
	IsHuman() bool
}

type HumanPlayer struct{}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}
