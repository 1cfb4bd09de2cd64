package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamasit07/puissance4/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

func (r *GameRepo) SaveGame(ctx context.Context, result domain.GameResult) error {
	boardJSON, err := json.Marshal(result.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO game_results (game_id, player1_id, player1_name, player2_id, player2_name, winner, winner_name, reason, ai_enabled, difficulty, total_moves, duration_seconds, started_at, finished_at, board_state)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.DB.ExecContext(ctx, query,
		result.GameID,
		result.Player1ID,
		result.Player1Name,
		result.Player2ID,
		result.Player2Name,
		int(result.Winner),
		result.WinnerName,
		result.Reason,
		result.AIEnabled,
		string(result.Difficulty),
		result.TotalMoves,
		result.DurationSeconds(),
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
		string(boardJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}
	return nil
}

// GetRecentGames returns the latest finished rounds, newest first.
func (r *GameRepo) GetRecentGames(ctx context.Context, limit int) ([]domain.GameResult, error) {
	query := `
	SELECT game_id, player1_id, player1_name, player2_id, player2_name, winner, winner_name,
	       reason, ai_enabled, difficulty, total_moves, started_at, finished_at, board_state
	FROM game_results
	ORDER BY finished_at DESC, id DESC
	LIMIT ?
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var res domain.GameResult
		var winner int
		var difficulty string
		var board sql.NullString
		if err := rows.Scan(
			&res.GameID,
			&res.Player1ID,
			&res.Player1Name,
			&res.Player2ID,
			&res.Player2Name,
			&winner,
			&res.WinnerName,
			&res.Reason,
			&res.AIEnabled,
			&difficulty,
			&res.TotalMoves,
			&res.StartedAt,
			&res.FinishedAt,
			&board,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		res.Winner = domain.Outcome(winner)
		res.Difficulty = domain.Difficulty(difficulty)
		if board.Valid && board.String != "" {
			if err := json.Unmarshal([]byte(board.String), &res.Board); err != nil {
				return nil, fmt.Errorf("failed to decode board state: %w", err)
			}
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
