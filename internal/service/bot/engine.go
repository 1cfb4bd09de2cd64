package bot

import (
	"github.com/iamasit07/puissance4/internal/domain"
)

// Strategy picks a column for player. It returns false only when the board
// has no legal column left; otherwise the column is always playable.
type Strategy interface {
	GetMove(board domain.Board, player domain.PlayerID) (int, bool)
}

// NewStrategy maps a difficulty to its strategy. Easy is random, medium is
// greedy and hard runs the full search.
func NewStrategy(difficulty domain.Difficulty) Strategy {
	switch difficulty {
	case domain.DifficultyEasy:
		return &Random{}
	case domain.DifficultyHard:
		return &Minimax{Depth: difficulty.Depth()}
	default:
		return &Greedy{}
	}
}
