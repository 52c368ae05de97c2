package main

type PatternType int

const (
	PatternNone PatternType = iota
	PatternFive
	PatternAliveFour
	PatternRushFour
	PatternAliveThree
	PatternSleepThree
	PatternAliveTwo
	PatternSleepTwo
)

func (p PatternType) String() string {
	switch p {
	case PatternFive:
		return "FIVE"
	case PatternAliveFour:
		return "ALIVE_FOUR"
	case PatternRushFour:
		return "RUSH_FOUR"
	case PatternAliveThree:
		return "ALIVE_THREE"
	case PatternSleepThree:
		return "SLEEP_THREE"
	case PatternAliveTwo:
		return "ALIVE_TWO"
	case PatternSleepTwo:
		return "SLEEP_TWO"
	default:
		return "NONE"
	}
}

func (p PatternType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PatternWeights scores each pattern of a hypothetical placement.
type PatternWeights struct {
	Five       int `json:"five"`
	AliveFour  int `json:"alive_four"`
	RushFour   int `json:"rush_four"`
	AliveThree int `json:"alive_three"`
	SleepThree int `json:"sleep_three"`
	AliveTwo   int `json:"alive_two"`
	SleepTwo   int `json:"sleep_two"`
}

func DefaultPatternWeights() PatternWeights {
	return PatternWeights{
		Five:       100000,
		AliveFour:  10000,
		RushFour:   5000,
		AliveThree: 2000,
		SleepThree: 500,
		AliveTwo:   200,
		SleepTwo:   50,
	}
}

func (w PatternWeights) score(p PatternType) int {
	switch p {
	case PatternFive:
		return w.Five
	case PatternAliveFour:
		return w.AliveFour
	case PatternRushFour:
		return w.RushFour
	case PatternAliveThree:
		return w.AliveThree
	case PatternSleepThree:
		return w.SleepThree
	case PatternAliveTwo:
		return w.AliveTwo
	case PatternSleepTwo:
		return w.SleepTwo
	default:
		return 0
	}
}

func resolvePatternWeights(config Config) PatternWeights {
	if config.Heuristics == (PatternWeights{}) {
		return DefaultPatternWeights()
	}
	return config.Heuristics
}

type DetectedPattern struct {
	Type      PatternType `json:"type"`
	Direction Direction   `json:"direction"`
}

type Evaluation struct {
	Score    int               `json:"score"`
	Patterns []DetectedPattern `json:"patterns"`
}

func (e Evaluation) Has(pattern PatternType) bool {
	for _, p := range e.Patterns {
		if p.Type == pattern {
			return true
		}
	}
	return false
}

// EvaluatePosition scores placing player's stone on the empty cell (x,y).
// Occupied or out-of-bounds cells score zero.
func EvaluatePosition(board Board, x, y int, player PlayerColor) Evaluation {
	return EvaluatePositionWith(board, x, y, player, DefaultPatternWeights())
}

func EvaluatePositionWith(board Board, x, y int, player PlayerColor, weights PatternWeights) Evaluation {
	eval := Evaluation{Patterns: []DetectedPattern{}}
	cell := CellFromPlayer(player)
	if cell == CellEmpty || !board.IsEmpty(x, y) {
		return eval
	}
	for _, dir := range lineDirections {
		forward := countDirection(board, x, y, dir.DX, dir.DY, cell)
		backward := countDirection(board, x, y, -dir.DX, -dir.DY, cell)
		length := forward + backward + 1

		openEnds := 0
		if board.IsEmpty(x+dir.DX*(forward+1), y+dir.DY*(forward+1)) {
			openEnds++
		}
		if board.IsEmpty(x-dir.DX*(backward+1), y-dir.DY*(backward+1)) {
			openEnds++
		}

		pattern := classifyRun(length, openEnds)
		if pattern == PatternNone {
			continue
		}
		eval.Patterns = append(eval.Patterns, DetectedPattern{Type: pattern, Direction: dir})
		eval.Score += weights.score(pattern)
	}
	return eval
}

func classifyRun(length, openEnds int) PatternType {
	if length >= WinLength {
		return PatternFive
	}
	if openEnds == 0 {
		return PatternNone
	}
	alive := openEnds == 2
	switch length {
	case 4:
		if alive {
			return PatternAliveFour
		}
		return PatternRushFour
	case 3:
		if alive {
			return PatternAliveThree
		}
		return PatternSleepThree
	case 2:
		if alive {
			return PatternAliveTwo
		}
		return PatternSleepTwo
	default:
		return PatternNone
	}
}
