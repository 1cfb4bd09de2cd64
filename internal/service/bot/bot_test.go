package bot

import (
	"math"
	"math/rand"
	"testing"

	"github.com/iamasit07/puissance4/internal/domain"
)

// boardFrom plays the columns alternately, Player1 first.
func boardFrom(t *testing.T, columns ...int) domain.Board {
	t.Helper()
	b := domain.NewBoard()
	p := domain.Player1
	for _, col := range columns {
		if _, ok := b.Drop(col, p); !ok {
			t.Fatalf("column %d rejected while building board", col)
		}
		p = p.Opponent()
	}
	return b
}

func fullBoard() domain.Board {
	var b domain.Board
	for r := 0; r < domain.Rows; r++ {
		for c := 0; c < domain.Columns; c++ {
			b[r][c] = domain.Player1
		}
	}
	return b
}

// plainMinimax is the unpruned reference search, same conventions as Search.
func plainMinimax(board domain.Board, botPlayer domain.PlayerID, depth int) (int, int) {
	bestCol, bestScore := -1, math.MinInt
	for _, col := range board.ValidMoves() {
		child, _ := board.Simulate(col, botPlayer)
		score := plainValue(&child, depth-1, false, botPlayer)
		if score > bestScore {
			bestScore, bestCol = score, col
		}
	}
	return bestCol, bestScore
}

func plainValue(board *domain.Board, depth int, isMaximizing bool, botPlayer domain.PlayerID) int {
	if depth == 0 || board.Winner() != domain.Empty || board.IsFull() {
		return ScoreBoard(board, botPlayer)
	}
	mover := botPlayer
	best := math.MinInt
	if !isMaximizing {
		mover = botPlayer.Opponent()
		best = math.MaxInt
	}
	for _, col := range board.ValidMoves() {
		child, _ := board.Simulate(col, mover)
		v := plainValue(&child, depth-1, !isMaximizing, botPlayer)
		if isMaximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func TestRandomReturnsLegalColumns(t *testing.T) {
	r := &Random{Rand: rand.New(rand.NewSource(7))}
	b := boardFrom(t, 0, 0, 0, 0, 0, 0, 6, 6, 6, 6, 6, 6)

	for i := 0; i < 200; i++ {
		col, ok := r.GetMove(b, domain.Player2)
		if !ok {
			t.Fatalf("expected a move")
		}
		if !b.IsValidMove(col) {
			t.Fatalf("random picked illegal column %d", col)
		}
	}
}

func TestStrategiesOnFullBoard(t *testing.T) {
	b := fullBoard()
	for name, s := range map[string]Strategy{
		"random":  &Random{},
		"greedy":  &Greedy{},
		"minimax": &Minimax{Depth: 3},
	} {
		if col, ok := s.GetMove(b, domain.Player2); ok {
			t.Fatalf("%s returned column %d on a full board", name, col)
		}
	}
}

func TestGreedyTakesWin(t *testing.T) {
	// Player2 has three stacked in column 5, Player1 scattered
	b := boardFrom(t, 0, 5, 1, 5, 3, 5, 6)
	col, ok := (&Greedy{}).GetMove(b, domain.Player2)
	if !ok || col != 5 {
		t.Fatalf("expected winning column 5, got %d (ok=%v)", col, ok)
	}
}

func TestGreedyWinBeatsBlock(t *testing.T) {
	// Player1 threatens column 2 on the bottom row, Player2 can win in column 6
	b := boardFrom(t, 0, 6, 1, 6, 4, 6, 3)
	col, ok := (&Greedy{}).GetMove(b, domain.Player2)
	if !ok || col != 6 {
		t.Fatalf("expected winning column 6, got %d (ok=%v)", col, ok)
	}
}

func TestGreedyBlocks(t *testing.T) {
	// Player1 has 0,1,2 on the bottom row; Player2 has no immediate win
	b := boardFrom(t, 0, 6, 1, 6, 2)
	col, ok := (&Greedy{}).GetMove(b, domain.Player2)
	if !ok || col != 3 {
		t.Fatalf("expected blocking column 3, got %d (ok=%v)", col, ok)
	}
}

func TestGreedyPrefersCenter(t *testing.T) {
	b := domain.NewBoard()
	col, _ := (&Greedy{}).GetMove(b, domain.Player2)
	if col != 3 {
		t.Fatalf("expected center column on empty board, got %d", col)
	}

	b = boardFrom(t, 3, 3, 3, 3, 3, 3)
	col, _ = (&Greedy{}).GetMove(b, domain.Player1)
	if col != 2 {
		t.Fatalf("expected column 2 when center is full, got %d", col)
	}
}

func TestMinimaxReturnsLegalAndKeepsBoard(t *testing.T) {
	boards := []domain.Board{
		domain.NewBoard(),
		boardFrom(t, 3, 3, 4, 2),
		boardFrom(t, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1),
		boardFrom(t, 3, 3, 3, 3, 3, 3, 2, 2, 2, 2, 2, 2, 4, 4, 4, 4, 4, 4),
	}

	for i, b := range boards {
		for depth := 1; depth <= 4; depth++ {
			before := b
			col, ok := (&Minimax{Depth: depth}).GetMove(b, domain.Player2)
			if !ok || !b.IsValidMove(col) {
				t.Fatalf("board %d depth %d: illegal column %d (ok=%v)", i, depth, col, ok)
			}
			if b != before {
				t.Fatalf("board %d depth %d: search mutated its input", i, depth)
			}
		}
	}
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 12; game++ {
		b := domain.NewBoard()
		p := domain.Player1
		for ply := 0; ply < 16; ply++ {
			if b.Winner() != domain.Empty || b.IsFull() {
				break
			}
			for depth := 1; depth <= 3; depth++ {
				wantCol, wantScore := plainMinimax(b, p, depth)
				gotCol, gotScore, ok := Search(b, p, depth)
				if !ok {
					t.Fatalf("game %d ply %d: no move found", game, ply)
				}
				if gotCol != wantCol || gotScore != wantScore {
					t.Fatalf("game %d ply %d depth %d: alpha-beta (%d, %d) != minimax (%d, %d)",
						game, ply, depth, gotCol, gotScore, wantCol, wantScore)
				}
			}
			moves := b.ValidMoves()
			b.Drop(moves[rng.Intn(len(moves))], p)
			p = p.Opponent()
		}
	}
}

func TestAlphaBetaMatchesPlainMinimaxAtDepthFour(t *testing.T) {
	for _, b := range []domain.Board{
		domain.NewBoard(),
		boardFrom(t, 3, 3, 2, 4),
		boardFrom(t, 3, 2, 3, 2, 4, 5),
	} {
		wantCol, wantScore := plainMinimax(b, domain.Player2, 4)
		gotCol, gotScore, _ := Search(b, domain.Player2, 4)
		if gotCol != wantCol || gotScore != wantScore {
			t.Fatalf("alpha-beta (%d, %d) != minimax (%d, %d)", gotCol, gotScore, wantCol, wantScore)
		}
	}
}

func TestNewStrategy(t *testing.T) {
	if _, ok := NewStrategy(domain.DifficultyEasy).(*Random); !ok {
		t.Fatalf("easy should be random")
	}
	if _, ok := NewStrategy(domain.DifficultyMedium).(*Greedy); !ok {
		t.Fatalf("medium should be greedy")
	}
	m, ok := NewStrategy(domain.DifficultyHard).(*Minimax)
	if !ok || m.Depth != 6 {
		t.Fatalf("hard should be a depth 6 minimax, got %#v", NewStrategy(domain.DifficultyHard))
	}
	if _, ok := NewStrategy(domain.ParseDifficulty("impossible")).(*Greedy); !ok {
		t.Fatalf("unknown difficulty should fall back to medium")
	}
}
