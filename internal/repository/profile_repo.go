package repository

import (
	"context"
	"encoding/json"

	"memoryarena/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO profiles (uid, display_name, photo_url)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		p.UID, p.DisplayName, p.PhotoURL,
	).Scan(&p.CreatedAt)
}

func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT uid, display_name, COALESCE(photo_url, ''), total_games_played, total_wins, high_scores, created_at
		 FROM profiles
		 WHERE uid = $1`,
		uid,
	)

	var (
		p      domain.Profile
		scores []byte
	)
	if err := row.Scan(
		&p.UID,
		&p.DisplayName,
		&p.PhotoURL,
		&p.TotalGamesPlayed,
		&p.TotalWins,
		&scores,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(scores) > 0 {
		_ = json.Unmarshal(scores, &p.HighScores)
	}
	return &p, nil
}

// ApplyResult folds one completed game into the profile counters and
// per-game high score.
func (r *ProfileRepository) ApplyResult(ctx context.Context, uid string, gameType domain.GameType, score int, isWin bool) error {
	wins := 0
	if isWin {
		wins = 1
	}

	_, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET total_games_played = total_games_played + 1,
		     total_wins = total_wins + $2,
		     high_scores = jsonb_set(
		         high_scores,
		         ARRAY[$3::text],
		         to_jsonb(GREATEST(COALESCE((high_scores->>$3)::int, 0), $4::int))
		     )
		 WHERE uid = $1`,
		uid, wins, string(gameType), score,
	)
	return err
}
