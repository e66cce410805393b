package domain

import "time"

// GameMode distinguishes solo play from multiplayer rooms in history
// records.
type GameMode string

const (
	ModeSingle      GameMode = "single"
	ModeMultiplayer GameMode = "multiplayer"
)

// MatchRecord is the write-once result of a completed game, one row
// per participant. The multiplayer core writes it on completion and
// never reads it back.
type MatchRecord struct {
	ID          int64      `db:"id" json:"id"`
	UID         string     `db:"uid" json:"uid"`
	DisplayName string     `db:"display_name" json:"display_name"`
	GameType    GameType   `db:"game_type" json:"game_type"`
	Mode        GameMode   `db:"mode" json:"mode"`
	Difficulty  Difficulty `db:"difficulty" json:"difficulty"`
	RoomID      *string    `db:"room_id" json:"room_id,omitempty"`
	Score       int        `db:"score" json:"score"`
	Moves       int        `db:"moves" json:"moves"`
	TimeSeconds int        `db:"time_seconds" json:"time_seconds"`
	IsWin       bool       `db:"is_win" json:"is_win"`
	CompletedAt time.Time  `db:"completed_at" json:"completed_at"`
}

// Profile is the stored identity behind a uid.
type Profile struct {
	UID              string         `db:"uid" json:"uid"`
	DisplayName      string         `db:"display_name" json:"display_name"`
	PhotoURL         string         `db:"photo_url" json:"photo_url,omitempty"`
	TotalGamesPlayed int            `db:"total_games_played" json:"total_games_played"`
	TotalWins        int            `db:"total_wins" json:"total_wins"`
	HighScores       map[string]int `db:"high_scores" json:"high_scores,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// RoomPlayer builds the room membership entry for this profile.
func (p *Profile) RoomPlayer(now time.Time) Player {
	return Player{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		JoinedAt:    now,
	}
}
