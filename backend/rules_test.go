package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWinHorizontalFive(t *testing.T) {
	board := NewBoard()
	placeStones(&board, CellBlack, Move{7, 7}, Move{7, 8}, Move{7, 9}, Move{7, 10}, Move{7, 11})

	line, ok := CheckWin(board, 7, 11, PlayerBlack)
	require.True(t, ok)
	assert.Equal(t, Direction{DX: 0, DY: 1}, line.Direction)
	assert.Equal(t, []Move{{7, 7}, {7, 8}, {7, 9}, {7, 10}, {7, 11}}, line.Positions)
}

func TestCheckWinAntiDiagonal(t *testing.T) {
	board := NewBoard()
	placeStones(&board, CellWhite, Move{2, 6}, Move{3, 5}, Move{4, 4}, Move{5, 3}, Move{6, 2})

	line, ok := CheckWin(board, 4, 4, PlayerWhite)
	require.True(t, ok)
	assert.Equal(t, Direction{DX: 1, DY: -1}, line.Direction)
	assert.Equal(t, []Move{{2, 6}, {3, 5}, {4, 4}, {5, 3}, {6, 2}}, line.Positions)
}

func TestCheckWinTruncatesLongRunAroundMove(t *testing.T) {
	board := NewBoard()
	for y := 2; y <= 8; y++ {
		board.Set(3, y, CellBlack)
	}

	cases := []struct {
		anchor Move
		first  int
	}{
		{Move{3, 2}, 2},
		{Move{3, 5}, 3},
		{Move{3, 8}, 4},
	}
	for _, tc := range cases {
		line, ok := CheckWin(board, tc.anchor.X, tc.anchor.Y, PlayerBlack)
		require.True(t, ok)
		require.Len(t, line.Positions, WinLength)
		assert.True(t, line.Contains(tc.anchor), "line %v should contain %v", line.Positions, tc.anchor)
		assert.Equal(t, Move{3, tc.first}, line.Positions[0])
	}
}

func TestCheckWinRejectsFourAndWrongOwner(t *testing.T) {
	board := NewBoard()
	placeStones(&board, CellBlack, Move{7, 7}, Move{7, 8}, Move{7, 9}, Move{7, 10})

	_, ok := CheckWin(board, 7, 10, PlayerBlack)
	assert.False(t, ok)

	board.Set(7, 11, CellBlack)
	_, ok = CheckWin(board, 7, 11, PlayerWhite)
	assert.False(t, ok)
	_, ok = CheckWin(board, 0, 0, PlayerBlack)
	assert.False(t, ok)
}

func TestCheckWinOnlyThroughGivenCell(t *testing.T) {
	board := NewBoard()
	placeStones(&board, CellBlack, Move{0, 0}, Move{0, 1}, Move{0, 2}, Move{0, 3}, Move{0, 4})
	board.Set(9, 9, CellBlack)

	_, ok := CheckWin(board, 9, 9, PlayerBlack)
	assert.False(t, ok)
}

func TestIsDraw(t *testing.T) {
	board := NewBoard()
	assert.False(t, IsDraw(board))
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			board.Set(x, y, CellWhite)
		}
	}
	assert.True(t, IsDraw(board))
}
