package bot

import (
	"github.com/iamasit07/puissance4/internal/domain"
)

// centerOrder is the column preference once there is nothing to win or block.
var centerOrder = [domain.Columns]int{3, 2, 4, 1, 5, 0, 6}

// Greedy looks one move ahead: win if possible, otherwise block, otherwise
// play as close to the center as the board allows.
type Greedy struct {
	fallback Random
}

func (g *Greedy) GetMove(board domain.Board, botPlayer domain.PlayerID) (int, bool) {
	validColumns := board.ValidMoves()
	if len(validColumns) == 0 {
		return -1, false
	}

	// PHASE 1: immediate win
	for _, col := range validColumns {
		if canWin(&board, col, botPlayer) {
			return col, true
		}
	}

	// PHASE 2: block the opponent's immediate win
	opponent := botPlayer.Opponent()
	for _, col := range validColumns {
		if canWin(&board, col, opponent) {
			return col, true
		}
	}

	// PHASE 3: center first, then outwards
	for _, col := range centerOrder {
		if board.IsValidMove(col) {
			return col, true
		}
	}

	return g.fallback.GetMove(board, botPlayer)
}

// canWin reports whether player wins by dropping into col.
func canWin(board *domain.Board, col int, player domain.PlayerID) bool {
	next, ok := board.Simulate(col, player)
	if !ok {
		return false
	}
	return next.Winner() == player
}
