package main

// DefaultDefenseWeight scales the opponent's pattern score when ranking
// cells, keeping defence slightly below offence.
const DefaultDefenseWeight = 0.8

// AIView is the read-only projection the AI decides from.
type AIView struct {
	Board             Board
	Self              PlayerColor
	CurrentPlayerIsAI bool
	Effects           EffectState
	OwnSkills         SkillUsages
}

func NewAIView(state GameState, self PlayerColor) AIView {
	return AIView{
		Board:             state.Board.Clone(),
		Self:              self,
		CurrentPlayerIsAI: state.CurrentPlayer == self,
		Effects:           state.Effects.Clone(),
		OwnSkills:         state.SkillsFor(self).Clone(),
	}
}

func (v AIView) usable(id SkillID) bool {
	usage, ok := v.OwnSkills[id]
	return ok && !usage.IsUsed && usage.IsAvailable
}

func (v AIView) frozen(player PlayerColor) bool {
	return player != PlayerNone && v.Effects.FrozenPlayer == player && v.Effects.FrozenTurnsLeft > 0
}

type SkillDecision struct {
	SkillID SkillID `json:"skill_id"`
	Target  *Move   `json:"target,omitempty"`
}

// AIPlayer reads its weights from config on every decision so runtime
// config updates apply to games already in progress.
type AIPlayer struct {
	config func() Config
}

func NewAIPlayer(config func() Config) *AIPlayer {
	if config == nil {
		config = DefaultConfig
	}
	return &AIPlayer{config: config}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) ChooseMove(view AIView) (Move, bool) {
	return heuristicFromConfig(a.config()).bestMove(view.Board, view.Self)
}

func (a *AIPlayer) DecideSkill(view AIView) (SkillDecision, bool) {
	return heuristicFromConfig(a.config()).decideSkillUsage(view)
}

func (a *AIPlayer) DecideCounter(opponentSkill SkillID, own SkillUsages) (SkillID, bool) {
	return DecideCounterSkill(opponentSkill, own)
}

func (a *AIPlayer) DecideRescue(view AIView) (SkillDecision, bool) {
	return DecideRescueSkill(view)
}

type moveHeuristic struct {
	weights       PatternWeights
	defenseWeight float64
}

func defaultHeuristic() moveHeuristic {
	return moveHeuristic{weights: DefaultPatternWeights(), defenseWeight: DefaultDefenseWeight}
}

func heuristicFromConfig(config Config) moveHeuristic {
	h := moveHeuristic{weights: resolvePatternWeights(config), defenseWeight: config.DefenseWeight}
	if h.defenseWeight <= 0 {
		h.defenseWeight = DefaultDefenseWeight
	}
	return h
}

func (h moveHeuristic) evaluate(board Board, x, y int, player PlayerColor) Evaluation {
	return EvaluatePositionWith(board, x, y, player, h.weights)
}

// FindBestMove picks player's next placement: the centre on an empty board,
// an immediate win, a forced block, otherwise the best-scored cell.
func FindBestMove(board Board, player PlayerColor) (Move, bool) {
	return defaultHeuristic().bestMove(board, player)
}

func (h moveHeuristic) bestMove(board Board, player PlayerColor) (Move, bool) {
	empty := board.Cells(CellEmpty)
	if len(empty) == 0 {
		return Move{}, false
	}
	if len(empty) == BoardSize*BoardSize {
		return Move{X: BoardSize / 2, Y: BoardSize / 2}, true
	}
	for _, cell := range empty {
		if makesFive(board, cell.X, cell.Y, player) {
			return cell, true
		}
	}

	opponent := player.Opponent()
	var critical Move
	criticalScore := -1
	for _, cell := range empty {
		if !makesFive(board, cell.X, cell.Y, opponent) {
			continue
		}
		// Several forced blocks: prefer the one that also builds our own line.
		own := h.evaluate(board, cell.X, cell.Y, player).Score
		if own > criticalScore {
			critical = cell
			criticalScore = own
		}
	}
	if criticalScore >= 0 {
		return critical, true
	}

	best := empty[0]
	bestScore := -1.0
	for _, cell := range empty {
		own := h.evaluate(board, cell.X, cell.Y, player).Score
		opp := h.evaluate(board, cell.X, cell.Y, opponent).Score
		score := float64(own) + h.defenseWeight*float64(opp)
		if score > bestScore {
			best = cell
			bestScore = score
		}
	}
	return best, true
}

// makesFive reports whether a player stone on the empty cell (x,y) would
// complete a line of WinLength.
func makesFive(board Board, x, y int, player PlayerColor) bool {
	cell := CellFromPlayer(player)
	if cell == CellEmpty || !board.IsEmpty(x, y) {
		return false
	}
	for _, dir := range lineDirections {
		run := 1 + countDirection(board, x, y, dir.DX, dir.DY, cell) + countDirection(board, x, y, -dir.DX, -dir.DY, cell)
		if run >= WinLength {
			return true
		}
	}
	return false
}

// FindWinningMoves lists every empty cell where player would complete five.
func FindWinningMoves(board Board, player PlayerColor) []Move {
	moves := []Move{}
	for _, cell := range board.Cells(CellEmpty) {
		if makesFive(board, cell.X, cell.Y, player) {
			moves = append(moves, cell)
		}
	}
	return moves
}

func HasImmediateWin(board Board, player PlayerColor) bool {
	for _, cell := range board.Cells(CellEmpty) {
		if makesFive(board, cell.X, cell.Y, player) {
			return true
		}
	}
	return false
}

// CountAliveThreeCells counts empty cells where player would form an alive
// three.
func CountAliveThreeCells(board Board, player PlayerColor) int {
	count := 0
	for _, cell := range board.Cells(CellEmpty) {
		if EvaluatePosition(board, cell.X, cell.Y, player).Has(PatternAliveThree) {
			count++
		}
	}
	return count
}

func HasMultipleAliveThree(board Board, player PlayerColor) bool {
	return CountAliveThreeCells(board, player) >= 2
}

// FindMostCriticalPiece picks the opponent stone worth removing: one whose
// removal leaves the opponent no immediate win, otherwise the one whose
// removal costs the most pattern score around it.
func FindMostCriticalPiece(board Board, opponent PlayerColor) (Move, bool) {
	return defaultHeuristic().mostCriticalPiece(board, opponent)
}

func (h moveHeuristic) mostCriticalPiece(board Board, opponent PlayerColor) (Move, bool) {
	pieces := board.Cells(CellFromPlayer(opponent))
	if len(pieces) == 0 {
		return Move{}, false
	}
	for _, piece := range pieces {
		trial := board.Clone()
		trial.Remove(piece.X, piece.Y)
		if !HasImmediateWin(trial, opponent) {
			return piece, true
		}
	}

	best := pieces[0]
	bestReduction := -1
	for _, piece := range pieces {
		trial := board.Clone()
		trial.Remove(piece.X, piece.Y)
		reduction := h.neighborScore(board, piece, opponent) - h.neighborScore(trial, piece, opponent)
		if reduction > bestReduction {
			best = piece
			bestReduction = reduction
		}
	}
	return best, true
}

func (h moveHeuristic) neighborScore(board Board, center Move, player PlayerColor) int {
	total := 0
	for _, off := range neighborOffsets {
		x, y := center.X+off.DX, center.Y+off.DY
		if board.IsEmpty(x, y) {
			total += h.evaluate(board, x, y, player).Score
		}
	}
	return total
}

// DecideSkillUsage runs once per AI turn before it moves.
func DecideSkillUsage(view AIView) (SkillDecision, bool) {
	return defaultHeuristic().decideSkillUsage(view)
}

func (h moveHeuristic) decideSkillUsage(view AIView) (SkillDecision, bool) {
	if !view.CurrentPlayerIsAI || !view.Self.Valid() {
		return SkillDecision{}, false
	}
	opponent := view.Self.Opponent()
	opponentFrozen := view.frozen(opponent)

	if HasImmediateWin(view.Board, opponent) {
		for _, id := range skillsInCategory(CategoryAttack) {
			if !view.usable(id) {
				continue
			}
			if target, ok := h.mostCriticalPiece(view.Board, opponent); ok {
				return SkillDecision{SkillID: id, Target: &target}, true
			}
		}
		if !opponentFrozen {
			if id, ok := firstUsable(view, CategoryControl); ok {
				return SkillDecision{SkillID: id}, true
			}
		}
		if id, ok := firstUsable(view, CategoryFinisher); ok {
			return SkillDecision{SkillID: id}, true
		}
	}

	if !opponentFrozen && HasMultipleAliveThree(view.Board, opponent) {
		if id, ok := firstUsable(view, CategoryControl); ok {
			return SkillDecision{SkillID: id}, true
		}
	}
	return SkillDecision{}, false
}

func firstUsable(view AIView, category SkillCategory) (SkillID, bool) {
	for _, id := range skillsInCategory(category) {
		if view.usable(id) {
			return id, true
		}
	}
	return "", false
}

// DecideCounterSkill always answers piece removal and board breaking while a
// counter skill is left.
func DecideCounterSkill(opponentSkill SkillID, own SkillUsages) (SkillID, bool) {
	def, ok := LookupSkill(opponentSkill)
	if !ok {
		return "", false
	}
	if def.Category != CategoryAttack && def.Category != CategoryFinisher {
		return "", false
	}
	for _, counter := range def.CounterSkillIDs {
		if usage, ok := own[counter]; ok && !usage.IsUsed {
			return counter, true
		}
	}
	return "", false
}

// DecideRescueSkill thaws a frozen AI or rebuilds a board the opponent broke.
// The broken board comes first: Decontrol cannot be cast once the game ended.
func DecideRescueSkill(view AIView) (SkillDecision, bool) {
	if view.Effects.BoardBroken && view.Effects.BrokenBy == view.Self.Opponent() {
		if id, ok := firstUsable(view, CategoryRevive); ok {
			return SkillDecision{SkillID: id}, true
		}
	}
	if view.frozen(view.Self) && !view.Effects.BoardBroken {
		if id, ok := firstUsable(view, CategoryDecontrol); ok {
			return SkillDecision{SkillID: id}, true
		}
	}
	return SkillDecision{}, false
}
