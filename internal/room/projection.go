package room

import (
	"context"
	"sort"

	"memoryarena/internal/domain"
	"memoryarena/internal/store"

	"github.com/samber/lo"
)

// PlayerView is one scoreboard row, sorted by score.
type PlayerView struct {
	UID           string `json:"uid"`
	DisplayName   string `json:"display_name"`
	PhotoURL      string `json:"photo_url,omitempty"`
	Score         int    `json:"score"`
	IsReady       bool   `json:"is_ready"`
	IsCurrentTurn bool   `json:"is_current_turn"`
	IsYou         bool   `json:"is_you"`
}

// CardView is a board tile as one client may see it. Face-down values
// are masked; the reveal arrives with the snapshot that flips them.
type CardView struct {
	ID        string `json:"id"`
	Value     string `json:"value,omitempty"`
	Color     string `json:"color,omitempty"`
	IsFlipped bool   `json:"is_flipped"`
	IsMatched bool   `json:"is_matched"`
	FlippedBy string `json:"flipped_by,omitempty"`
}

// View is everything a client needs to render the room, derived
// purely from one snapshot. It holds no authority: flags like
// IsYourTurn are recomputed from the single source of truth on every
// push, never stored.
type View struct {
	RoomID     string            `json:"room_id"`
	Status     domain.RoomStatus `json:"status"`
	Phase      domain.MatchPhase `json:"phase,omitempty"`
	GameType   domain.GameType   `json:"game_type"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Theme      domain.Theme      `json:"theme"`
	GridCols   int               `json:"grid_cols"`

	HostID string `json:"host_id"`
	IsHost bool   `json:"is_host"`
	You    string `json:"you"`

	Players  []PlayerView `json:"players"`
	CanStart bool         `json:"can_start"`

	Board        []CardView `json:"board,omitempty"`
	CurrentTurn  string     `json:"current_turn,omitempty"`
	IsYourTurn   bool       `json:"is_your_turn"`
	FlippedCards []string   `json:"flipped_cards,omitempty"`
	MatchedPairs int        `json:"matched_pairs"`
	TotalPairs   int        `json:"total_pairs"`

	Winners []string `json:"winners,omitempty"`
}

// Project derives uid's view of the room from a snapshot.
func Project(r *domain.Room, uid string) View {
	v := View{
		RoomID:     r.ID,
		Status:     r.Status,
		GameType:   r.GameType,
		Difficulty: r.Difficulty,
		Theme:      r.Theme,
		HostID:     r.HostID,
		IsHost:     r.HostID == uid,
		You:        uid,
	}

	allReady := true
	for _, p := range r.Players {
		row := PlayerView{
			UID:         p.UID,
			DisplayName: p.DisplayName,
			PhotoURL:    p.PhotoURL,
			Score:       p.Score,
			IsReady:     p.IsReady,
			IsYou:       p.UID == uid,
		}
		if r.GameState != nil {
			row.IsCurrentTurn = r.GameState.CurrentTurn == p.UID
		}
		v.Players = append(v.Players, row)
		if !p.IsReady {
			allReady = false
		}
	}
	sort.Slice(v.Players, func(i, j int) bool {
		if v.Players[i].Score != v.Players[j].Score {
			return v.Players[i].Score > v.Players[j].Score
		}
		return v.Players[i].UID < v.Players[j].UID
	})

	v.CanStart = v.IsHost && r.Status == domain.RoomWaiting && len(r.Players) >= 2 && allReady

	gs := r.GameState
	if gs == nil {
		return v
	}

	v.Phase = gs.Phase(r.Status)
	v.CurrentTurn = gs.CurrentTurn
	v.IsYourTurn = r.Status == domain.RoomPlaying && gs.CurrentTurn == uid
	v.FlippedCards = append([]string(nil), gs.FlippedCards...)
	v.MatchedPairs = gs.MatchedPairs
	v.TotalPairs = gs.TotalPairs
	v.GridCols = gridColsFor(gs.TotalPairs)

	v.Board = lo.Map(gs.Cards, func(c domain.Card, _ int) CardView {
		cv := CardView{
			ID:        c.ID,
			IsFlipped: c.IsFlipped,
			IsMatched: c.IsMatched,
			FlippedBy: c.FlippedBy,
		}
		if c.IsFlipped || c.IsMatched {
			cv.Value = c.Value
			cv.Color = c.Color
		}
		return cv
	})

	if r.Status == domain.RoomFinished {
		v.Winners = winners(r)
	}
	return v
}

func gridColsFor(totalPairs int) int {
	switch totalPairs {
	case 18:
		return 6
	case 32:
		return 8
	default:
		return 4
	}
}

func winners(r *domain.Room) []string {
	maxScore := 0
	for _, p := range r.Players {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}
	uids := lo.FilterMap(lo.Values(r.Players), func(p domain.Player, _ int) (string, bool) {
		return p.UID, p.Score == maxScore
	})
	sort.Strings(uids)
	return uids
}

// Projector streams one client's views of one room. It is read-only
// with respect to authority: intents go through Lifecycle and Engine,
// never through the projector.
type Projector struct {
	store  store.DocumentStore
	roomID string
	uid    string
}

func NewProjector(st store.DocumentStore, roomID, uid string) *Projector {
	return &Projector{store: st, roomID: roomID, uid: uid}
}

// Watch subscribes to the room and invokes fn with a recomputed view
// on every snapshot, starting with the current one. ok is false when
// the room does not exist or has been deleted. The returned function
// tears the subscription down.
func (p *Projector) Watch(ctx context.Context, fn func(view View, ok bool)) (store.UnsubscribeFunc, error) {
	return p.store.Subscribe(ctx, p.roomID, func(snap store.Snapshot, ok bool) {
		if !ok {
			fn(View{RoomID: p.roomID, You: p.uid}, false)
			return
		}
		fn(Project(snap.Room, p.uid), true)
	})
}
