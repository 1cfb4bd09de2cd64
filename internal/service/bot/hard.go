package bot

import (
	"math"

	"github.com/iamasit07/puissance4/internal/domain"
)

// Minimax searches Depth plies with alpha-beta pruning. Columns are tried
// left to right and the first best column wins ties.
type Minimax struct {
	Depth int
}

func (m *Minimax) GetMove(board domain.Board, botPlayer domain.PlayerID) (int, bool) {
	col, _, ok := Search(board, botPlayer, m.Depth)
	return col, ok
}

// Search returns the chosen column and its minimax value for botPlayer.
// The board is passed by value; every ply works on its own copy.
func Search(board domain.Board, botPlayer domain.PlayerID, depth int) (int, int, bool) {
	validColumns := board.ValidMoves()
	if len(validColumns) == 0 {
		return -1, 0, false
	}
	if depth < 1 {
		depth = 1
	}

	bestCol := validColumns[0]
	bestScore := math.MinInt
	alpha := math.MinInt
	beta := math.MaxInt

	for _, col := range validColumns {
		child, _ := board.Simulate(col, botPlayer)
		score := minimax(&child, depth-1, alpha, beta, false, botPlayer)

		if score > bestScore {
			bestScore = score
			bestCol = col
		}
		alpha = max(alpha, score)
	}

	return bestCol, bestScore, true
}

// minimax implements the minimax algorithm with alpha-beta pruning. Leaves are
// always scored from botPlayer's point of view.
func minimax(board *domain.Board, depth int, alpha, beta int, isMaximizing bool, botPlayer domain.PlayerID) int {
	if depth == 0 || board.Winner() != domain.Empty || board.IsFull() {
		return ScoreBoard(board, botPlayer)
	}

	if isMaximizing {
		maxEval := math.MinInt
		for _, col := range board.ValidMoves() {
			child, _ := board.Simulate(col, botPlayer)
			eval := minimax(&child, depth-1, alpha, beta, false, botPlayer)
			maxEval = max(maxEval, eval)
			alpha = max(alpha, eval)
			if beta <= alpha {
				break // beta cutoff
			}
		}
		return maxEval
	}

	opponent := botPlayer.Opponent()
	minEval := math.MaxInt
	for _, col := range board.ValidMoves() {
		child, _ := board.Simulate(col, opponent)
		eval := minimax(&child, depth-1, alpha, beta, true, botPlayer)
		minEval = min(minEval, eval)
		beta = min(beta, eval)
		if beta <= alpha {
			break // alpha cutoff
		}
	}
	return minEval
}
