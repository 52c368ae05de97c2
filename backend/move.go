package main

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewMove(x, y int) Move {
	return Move{X: x, Y: y}
}

func (m Move) IsValid() bool {
	return m.X >= 0 && m.Y >= 0 && m.X < BoardSize && m.Y < BoardSize
}

func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y
}

// MoveRecord is one placement in the append-only move log. Turn, like
// RemovedAtTurn and UsedAtTurn, is the turn count before the action, so the
// first placement is turn 0.
type MoveRecord struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Owner PlayerColor `json:"owner"`
	Turn  int         `json:"turn"`
}

func (r MoveRecord) Move() Move {
	return Move{X: r.X, Y: r.Y}
}
