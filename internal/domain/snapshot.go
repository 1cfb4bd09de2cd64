package domain

import "time"

// Score is the running tally of a session; it survives resets.
type Score struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
	Draws   int `json:"draws"`
}

func (s *Score) Record(o Outcome) {
	switch o {
	case OutcomePlayer1:
		s.Player1++
	case OutcomePlayer2:
		s.Player2++
	case OutcomeDraw:
		s.Draws++
	}
}

type Participant struct {
	ConnID string `json:"sid"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Slot   int    `json:"number,omitempty"`
}

// Snapshot is everything participants of a session are allowed to see.
type Snapshot struct {
	GameID          string        `json:"game_id"`
	Board           [][]int       `json:"board"`
	CurrentPlayer   int           `json:"current_player"`
	Status          SessionStatus `json:"status"`
	GameOver        bool          `json:"game_over"`
	Winner          *int          `json:"winner"`
	WinningLine     [][2]int      `json:"winning_line,omitempty"`
	Players         []Participant `json:"players"`
	Spectators      []Participant `json:"spectators"`
	AIEnabled       bool          `json:"ai_enabled"`
	Difficulty      Difficulty    `json:"difficulty,omitempty"`
	Score           Score         `json:"global_score"`
	MoveCount       int           `json:"moves_count"`
	PlayersCount    int           `json:"players_count"`
	SpectatorsCount int           `json:"spectators_count"`
}

// SessionSummary is the light listing used by the live games and admin views.
type SessionSummary struct {
	GameID          string        `json:"game_id"`
	Players         []Participant `json:"players"`
	PlayersCount    int           `json:"players_count"`
	SpectatorsCount int           `json:"spectators_count"`
	CurrentPlayer   int           `json:"current_player"`
	GameOver        bool          `json:"game_over"`
	AIEnabled       bool          `json:"ai_enabled"`
	Difficulty      Difficulty    `json:"difficulty,omitempty"`
	MoveCount       int           `json:"moves_count"`
	CreatedAt       time.Time     `json:"created_at"`
}

// GameResult is handed to the result sink once per finished round.
type GameResult struct {
	GameID      string     `json:"game_id"`
	Player1ID   string     `json:"player1_id,omitempty"`
	Player1Name string     `json:"player1_name"`
	Player2ID   string     `json:"player2_id,omitempty"`
	Player2Name string     `json:"player2_name"`
	Winner      Outcome    `json:"winner"`
	WinnerName  string     `json:"winner_name,omitempty"`
	Reason      string     `json:"reason"`
	AIEnabled   bool       `json:"ai_enabled"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	TotalMoves  int        `json:"total_moves"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	Board       [][]int    `json:"board,omitempty"`
}

func (r GameResult) DurationSeconds() int {
	return int(r.FinishedAt.Sub(r.StartedAt).Seconds())
}
