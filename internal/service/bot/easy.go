package bot

import (
	"math/rand"

	"github.com/iamasit07/puissance4/internal/domain"
)

// Random picks uniformly among the legal columns.
type Random struct {
	// Rand is optional; the shared math/rand source is used when nil.
	Rand *rand.Rand
}

func (r *Random) GetMove(board domain.Board, _ domain.PlayerID) (int, bool) {
	validColumns := board.ValidMoves()
	if len(validColumns) == 0 {
		return -1, false
	}

	if r.Rand != nil {
		return validColumns[r.Rand.Intn(len(validColumns))], true
	}
	return validColumns[rand.Intn(len(validColumns))], true
}
