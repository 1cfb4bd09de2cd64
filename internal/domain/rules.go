package domain

// Position is a (row, column) coordinate on the board.
type Position struct {
	Row, Col int
}

// Line is a run of ToWin consecutive positions.
type Line [ToWin]Position

// direction order matters: it is the order Winner reports simultaneous lines in
var directions = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal going down-right
	{1, -1}, // diagonal going down-left
}

// lines holds every in-bounds run of four, ordered row-major by start cell and
// then by direction.
var lines = buildLines()

func buildLines() []Line {
	var out []Line
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			for _, dir := range directions {
				endRow := row + dir[0]*(ToWin-1)
				endCol := col + dir[1]*(ToWin-1)
				if endRow < 0 || endRow >= Rows || endCol < 0 || endCol >= Columns {
					continue
				}
				var line Line
				for i := 0; i < ToWin; i++ {
					line[i] = Position{Row: row + dir[0]*i, Col: col + dir[1]*i}
				}
				out = append(out, line)
			}
		}
	}
	return out
}

// Lines exposes all runs of four. Callers must not modify the result.
func Lines() []Line {
	return lines
}

// Window reads the cells under a line.
func (b *Board) Window(line Line) [ToWin]PlayerID {
	var w [ToWin]PlayerID
	for i, p := range line {
		w[i] = b[p.Row][p.Col]
	}
	return w
}

// Winner scans every line and returns the owner of the first complete one,
// or Empty when nobody has four in a row. Lines are visited row-major by
// start cell, with orientation as the inner order (horizontal, vertical,
// down-right, down-left), so WinningLine reports the same line on boards
// holding several fours.
func (b *Board) Winner() PlayerID {
	for _, line := range lines {
		first := b[line[0].Row][line[0].Col]
		if first == Empty {
			continue
		}
		complete := true
		for _, p := range line[1:] {
			if b[p.Row][p.Col] != first {
				complete = false
				break
			}
		}
		if complete {
			return first
		}
	}
	return Empty
}

// WinningLine is Winner plus the line that decided it.
func (b *Board) WinningLine() (Line, bool) {
	for _, line := range lines {
		w := b.Window(line)
		if w[0] != Empty && w[0] == w[1] && w[1] == w[2] && w[2] == w[3] {
			return line, true
		}
	}
	return Line{}, false
}
