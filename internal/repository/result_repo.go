package repository

import (
	"context"

	"memoryarena/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ResultRepository struct {
	db *pgxpool.Pool
}

func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create stores a write-once result row.
func (r *ResultRepository) Create(ctx context.Context, rec *domain.MatchRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO match_records
			(uid, display_name, game_type, mode, difficulty, room_id, score, moves, time_seconds, is_win)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, completed_at`,
		rec.UID,
		rec.DisplayName,
		rec.GameType,
		rec.Mode,
		rec.Difficulty,
		rec.RoomID,
		rec.Score,
		rec.Moves,
		rec.TimeSeconds,
		rec.IsWin,
	).Scan(&rec.ID, &rec.CompletedAt)
}

// ListByUser returns the user's most recent results.
func (r *ResultRepository) ListByUser(ctx context.Context, uid string, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, uid, display_name, game_type, mode, difficulty, room_id, score, moves, time_seconds, is_win, completed_at
		 FROM match_records
		 WHERE uid = $1
		 ORDER BY completed_at DESC
		 LIMIT $2`,
		uid, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MatchRecord
	for rows.Next() {
		var rec domain.MatchRecord
		if err := rows.Scan(
			&rec.ID, &rec.UID, &rec.DisplayName, &rec.GameType, &rec.Mode, &rec.Difficulty,
			&rec.RoomID, &rec.Score, &rec.Moves, &rec.TimeSeconds, &rec.IsWin, &rec.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

// LeaderboardEntry is one row of the per-game top list.
type LeaderboardEntry struct {
	UID         string            `json:"uid"`
	DisplayName string            `json:"display_name"`
	Score       int               `json:"score"`
	Moves       int               `json:"moves"`
	TimeSeconds int               `json:"time_seconds"`
	Difficulty  domain.Difficulty `json:"difficulty"`
}

// Leaderboard returns the top scores for a game type, optionally
// narrowed to one difficulty.
func (r *ResultRepository) Leaderboard(ctx context.Context, gameType domain.GameType, difficulty domain.Difficulty, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT uid, display_name, score, moves, time_seconds, difficulty
		 FROM match_records
		 WHERE game_type = $1
		 ORDER BY score DESC, time_seconds ASC
		 LIMIT $2`
	args := []interface{}{gameType, limit}

	if difficulty != "" {
		query = `SELECT uid, display_name, score, moves, time_seconds, difficulty
			 FROM match_records
			 WHERE game_type = $1 AND difficulty = $2
			 ORDER BY score DESC, time_seconds ASC
			 LIMIT $3`
		args = []interface{}{gameType, difficulty, limit}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UID, &e.DisplayName, &e.Score, &e.Moves, &e.TimeSeconds, &e.Difficulty); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
