package main

// WinLine is the five-stone segment that ended the game.
type WinLine struct {
	Direction Direction `json:"direction"`
	Positions []Move    `json:"positions"`
}

func (w WinLine) Contains(move Move) bool {
	for _, pos := range w.Positions {
		if pos.Equals(move) {
			return true
		}
	}
	return false
}

func (w WinLine) Clone() WinLine {
	return WinLine{Direction: w.Direction, Positions: append([]Move(nil), w.Positions...)}
}

// CheckWin reports the winning segment through (x,y) for player. Runs longer
// than WinLength are cut to WinLength cells centred as close as possible on
// (x,y).
func CheckWin(board Board, x, y int, player PlayerColor) (WinLine, bool) {
	cell := CellFromPlayer(player)
	if cell == CellEmpty || !board.InBounds(x, y) || board.At(x, y) != cell {
		return WinLine{}, false
	}
	for _, dir := range lineDirections {
		count := 1
		count += countDirection(board, x, y, dir.DX, dir.DY, cell)
		count += countDirection(board, x, y, -dir.DX, -dir.DY, cell)
		if count < WinLength {
			continue
		}
		line := collectLine(board, x, y, dir.DX, dir.DY, cell)
		return WinLine{Direction: dir, Positions: centerSegment(line, Move{X: x, Y: y})}, true
	}
	return WinLine{}, false
}

func IsDraw(board Board) bool {
	return board.IsFull()
}

// countDirection counts matching cells after (x,y), excluding it.
func countDirection(board Board, x, y, dx, dy int, target Cell) int {
	return board.RunLength(x+dx, y+dy, dx, dy, target)
}

func collectLine(board Board, x, y, dx, dy int, target Cell) []Move {
	line := []Move{}
	for board.InBounds(x-dx, y-dy) && board.At(x-dx, y-dy) == target {
		x -= dx
		y -= dy
	}
	for board.InBounds(x, y) && board.At(x, y) == target {
		line = append(line, Move{X: x, Y: y})
		x += dx
		y += dy
	}
	return line
}

func centerSegment(line []Move, anchor Move) []Move {
	if len(line) <= WinLength {
		return line
	}
	idx := 0
	for i, pos := range line {
		if pos.Equals(anchor) {
			idx = i
			break
		}
	}
	start := idx - WinLength/2
	if start < 0 {
		start = 0
	}
	if start+WinLength > len(line) {
		start = len(line) - WinLength
	}
	return append([]Move(nil), line[start:start+WinLength]...)
}
