package domain

import (
	"sort"
	"time"
)

// RoomStatus is the lifecycle state of a multiplayer room. It is
// monotonic: waiting -> playing -> finished, never backwards.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// GameType identifies which of the platform games a room plays.
// Only card-flip has a multiplayer mode; the rest are solo and show up
// in history records only.
type GameType string

const (
	GameCardFlip       GameType = "card-flip"
	GameNumberSequence GameType = "number-sequence"
	GamePatternMemory  GameType = "pattern-memory"
	GameWordMatch      GameType = "word-match"
)

type Difficulty string

const (
	Difficulty4x4 Difficulty = "4x4"
	Difficulty6x6 Difficulty = "6x6"
	Difficulty8x8 Difficulty = "8x8"
)

type Theme string

const (
	ThemeColors  Theme = "colors"
	ThemeEmojis  Theme = "emojis"
	ThemeNumbers Theme = "numbers"
	ThemeAnimals Theme = "animals"
	ThemeSymbols Theme = "symbols"
)

// MaxRoomPlayers caps room membership; joins beyond it are rejected.
const MaxRoomPlayers = 4

// Player is one member of a room. Score only ever moves through the
// store's atomic increment, by exactly 1 per matched pair.
type Player struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Score       int       `json:"score"`
	IsReady     bool      `json:"is_ready"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Card is one tile on the board. Exactly two cards share a PairID.
// Once IsMatched is set it never clears.
type Card struct {
	ID        string `json:"id"`
	PairID    string `json:"pair_id"`
	Value     string `json:"value"`
	Color     string `json:"color,omitempty"`
	IsFlipped bool   `json:"is_flipped"`
	IsMatched bool   `json:"is_matched"`
	FlippedBy string `json:"flipped_by,omitempty"`
}

// MatchPhase is the explicit tag for the turn state machine. It is
// derived from the stored fields so that every observer agrees on it.
type MatchPhase string

const (
	PhaseAwaitingFirstFlip MatchPhase = "awaiting_first_flip"
	PhaseOneCardFlipped    MatchPhase = "one_card_flipped"
	PhaseResolving         MatchPhase = "resolving"
	PhaseComplete          MatchPhase = "complete"
)

// MatchState is the in-progress game data nested in a playing room.
type MatchState struct {
	Cards         []Card    `json:"cards"`
	CurrentTurn   string    `json:"current_turn"`
	FlippedCards  []string  `json:"flipped_cards"`
	MatchedPairs  int       `json:"matched_pairs"`
	TotalPairs    int       `json:"total_pairs"`
	TurnStartedAt time.Time `json:"turn_started_at"`
}

// Card returns the card with the given id, or nil.
func (m *MatchState) Card(id string) *Card {
	for i := range m.Cards {
		if m.Cards[i].ID == id {
			return &m.Cards[i]
		}
	}
	return nil
}

// Phase derives the explicit state-machine tag from the stored fields.
func (m *MatchState) Phase(status RoomStatus) MatchPhase {
	if status == RoomFinished || m.MatchedPairs == m.TotalPairs {
		return PhaseComplete
	}
	switch len(m.FlippedCards) {
	case 0:
		return PhaseAwaitingFirstFlip
	case 1:
		return PhaseOneCardFlipped
	default:
		return PhaseResolving
	}
}

func (m *MatchState) clone() *MatchState {
	if m == nil {
		return nil
	}
	c := *m
	c.Cards = append([]Card(nil), m.Cards...)
	c.FlippedCards = append([]string(nil), m.FlippedCards...)
	return &c
}

// Room is the shared document representing one multiplayer match
// instance. It is the only shared mutable resource in the protocol;
// every mutation goes through the document store's versioned writes.
type Room struct {
	ID         string            `json:"id"`
	HostID     string            `json:"host_id"`
	Status     RoomStatus        `json:"status"`
	GameType   GameType          `json:"game_type"`
	Difficulty Difficulty        `json:"difficulty"`
	Theme      Theme             `json:"theme"`
	Players    map[string]Player `json:"players"`
	GameState  *MatchState       `json:"game_state,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Clone deep-copies the room so callers can mutate without aliasing
// a snapshot held elsewhere.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Players = make(map[string]Player, len(r.Players))
	for uid, p := range r.Players {
		c.Players[uid] = p
	}
	c.GameState = r.GameState.clone()
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// TurnOrder is the fixed rotation over player uids: join order, uid as
// tiebreak. Map iteration order is not deterministic, so the order is
// always recomputed from JoinedAt.
func (r *Room) TurnOrder() []string {
	uids := make([]string, 0, len(r.Players))
	for uid := range r.Players {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool {
		a, b := r.Players[uids[i]], r.Players[uids[j]]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return uids[i] < uids[j]
	})
	return uids
}

// NextTurn returns the uid after current in rotation, wrapping around.
// If current is no longer a member the first player in order gets the
// turn.
func (r *Room) NextTurn(current string) string {
	order := r.TurnOrder()
	if len(order) == 0 {
		return ""
	}
	for i, uid := range order {
		if uid == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
