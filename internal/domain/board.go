package domain

// Board is a fixed 6x7 grid. Row 0 is the top row, Rows-1 the bottom one.
// It is a plain array so assigning it copies it.
type Board [Rows][Columns]PlayerID

func NewBoard() Board {
	return Board{}
}

func (b *Board) IsValidMove(column int) bool {
	if column < 0 || column >= Columns {
		return false
	}

	// a column is playable as long as its top cell is free
	return b[0][column] == Empty
}

// Drop lets a disk fall into column and returns the row it landed on.
// Nothing changes when the column is out of range or full.
func (b *Board) Drop(column int, player PlayerID) (int, bool) {
	if column < 0 || column >= Columns {
		return -1, false
	}

	for row := Rows - 1; row >= 0; row-- {
		if b[row][column] == Empty {
			b[row][column] = player
			return row, true
		}
	}

	return -1, false
}

func (b *Board) IsFull() bool {
	for c := 0; c < Columns; c++ {
		if b[0][c] == Empty {
			return false
		}
	}

	return true
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() Board {
	return *b
}

// ValidMoves lists the playable columns in ascending order.
func (b *Board) ValidMoves() []int {
	validMoves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if b.IsValidMove(col) {
			validMoves = append(validMoves, col)
		}
	}
	return validMoves
}

// Simulate plays a move on a copy of the board, leaving b untouched.
func (b *Board) Simulate(column int, player PlayerID) (Board, bool) {
	next := b.Clone()
	if _, ok := next.Drop(column, player); !ok {
		return next, false
	}
	return next, true
}

func (b *Board) MoveCount() int {
	count := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if b[r][c] != Empty {
				count++
			}
		}
	}
	return count
}

// Cells converts the board to plain ints for JSON and storage.
func (b *Board) Cells() [][]int {
	cells := make([][]int, Rows)
	for r := range cells {
		cells[r] = make([]int, Columns)
		for c := range cells[r] {
			cells[r][c] = int(b[r][c])
		}
	}
	return cells
}
