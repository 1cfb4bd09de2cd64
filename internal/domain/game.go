package domain

// Game is the state of a single round: board, turn and result. A session
// plays many rounds on the same Game by resetting it.
type Game struct {
	Board         Board
	CurrentPlayer PlayerID
	Finished      bool
	Winner        Outcome
	MoveCount     int
}

func NewGame() *Game {
	return &Game{
		Board:         NewBoard(),
		CurrentPlayer: Player1,
		Winner:        OutcomeNone,
	}
}

// MakeMove validates and applies a move for the player whose turn it is.
// On success it either finishes the game or hands the turn over.
func (g *Game) MakeMove(player PlayerID, column int) (int, error) {
	if g.Finished {
		return -1, ErrGameOver
	}

	if g.CurrentPlayer != player {
		return -1, ErrNotYourTurn
	}

	if column < 0 || column >= Columns {
		return -1, ErrInvalidColumn
	}

	row, ok := g.Board.Drop(column, player)
	if !ok {
		return -1, ErrColumnFull
	}

	g.MoveCount++

	if w := g.Board.Winner(); w != Empty {
		g.Finished = true
		g.Winner = OutcomeFor(w)
		return row, nil
	}

	if g.Board.IsFull() {
		g.Finished = true
		g.Winner = OutcomeDraw
		return row, nil
	}

	g.CurrentPlayer = player.Opponent()
	return row, nil
}

// Abort ends the round without a result.
func (g *Game) Abort() {
	g.Finished = true
	g.Winner = OutcomeNone
}

func (g *Game) Reset() {
	*g = *NewGame()
}
