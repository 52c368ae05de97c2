package main

import (
	"encoding/json"
	"fmt"
)

const (
	BoardSize = 15
	WinLength = 5
)

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Direction is a unit step along one of the four line directions.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// lineDirections lists horizontal, vertical and both diagonals. x is the row,
// y the column.
var lineDirections = [4]Direction{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// neighborOffsets is the 8-neighbourhood of a cell.
var neighborOffsets = [8]Direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, 1}, {-1, 1}, {1, -1}}

type Board struct {
	cells []Cell
}

func NewBoard() Board {
	return Board{cells: make([]Cell, BoardSize*BoardSize)}
}

func (b Board) At(x, y int) Cell {
	if !b.InBounds(x, y) || b.cells == nil {
		return CellEmpty
	}
	return b.cells[b.index(x, y)]
}

func (b *Board) Set(x, y int, value Cell) {
	b.cells[b.index(x, y)] = value
}

func (b *Board) Remove(x, y int) {
	b.cells[b.index(x, y)] = CellEmpty
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < BoardSize && y < BoardSize
}

func (b Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b Board) CountEmpty() int {
	if b.cells == nil {
		return BoardSize * BoardSize
	}
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) IsFull() bool {
	return b.CountEmpty() == 0
}

func (b Board) Clone() Board {
	clone := Board{cells: make([]Cell, BoardSize*BoardSize)}
	copy(clone.cells, b.cells)
	return clone
}

// RunLength counts consecutive cells equal to target starting at (x,y) and
// walking by (dx,dy). The start cell is included.
func (b Board) RunLength(x, y, dx, dy int, target Cell) int {
	count := 0
	for b.InBounds(x, y) && b.At(x, y) == target {
		count++
		x += dx
		y += dy
	}
	return count
}

// Cells returns the coordinates holding value in row-major order.
func (b Board) Cells(value Cell) []Move {
	moves := []Move{}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.At(x, y) == value {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
	}
	return moves
}

func (b Board) Rows() [][]int {
	rows := make([][]int, BoardSize)
	for x := 0; x < BoardSize; x++ {
		rows[x] = make([]int, BoardSize)
		for y := 0; y < BoardSize; y++ {
			rows[x][y] = int(b.At(x, y))
		}
	}
	return rows
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

func (b Board) index(x, y int) int {
	return x*BoardSize + y
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	switch player {
	case PlayerBlack:
		return CellBlack
	case PlayerWhite:
		return CellWhite
	default:
		return CellEmpty
	}
}

func PlayerFromCell(cell Cell) (PlayerColor, error) {
	switch cell {
	case CellBlack:
		return PlayerBlack, nil
	case CellWhite:
		return PlayerWhite, nil
	default:
		return PlayerNone, fmt.Errorf("empty cell has no player")
	}
}
