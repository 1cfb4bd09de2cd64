package bot

import (
	"github.com/iamasit07/puissance4/internal/domain"
)

const (
	// Window scores, from the perspective of the player being evaluated
	SCORE_FOUR           = 100
	SCORE_THREE_OPEN     = 10
	SCORE_TWO_OPEN       = 2
	SCORE_OPP_THREE_OPEN = -80 // an open opponent three loses next turn
	SCORE_OPP_TWO_OPEN   = -5
)

// ScoreWindow scores four cells for player. The player's and the opponent's
// terms are independent and add up.
func ScoreWindow(window [domain.ToWin]domain.PlayerID, player domain.PlayerID) int {
	opponent := player.Opponent()

	mine, theirs, empty := 0, 0, 0
	for _, cell := range window {
		switch cell {
		case player:
			mine++
		case opponent:
			theirs++
		default:
			empty++
		}
	}

	score := 0
	switch {
	case mine == 4:
		score += SCORE_FOUR
	case mine == 3 && empty == 1:
		score += SCORE_THREE_OPEN
	case mine == 2 && empty == 2:
		score += SCORE_TWO_OPEN
	}

	switch {
	case theirs == 3 && empty == 1:
		score += SCORE_OPP_THREE_OPEN
	case theirs == 2 && empty == 2:
		score += SCORE_OPP_TWO_OPEN
	}

	return score
}

// ScoreBoard is the static evaluation: the sum of ScoreWindow over every
// horizontal, vertical and diagonal run of four.
func ScoreBoard(board *domain.Board, player domain.PlayerID) int {
	score := 0
	for _, line := range domain.Lines() {
		score += ScoreWindow(board.Window(line), player)
	}
	return score
}
