package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memoryarena/internal/domain"
	"memoryarena/internal/logger"
	"memoryarena/internal/store"
)

var (
	ErrNotWaiting       = errors.New("room is no longer accepting players")
	ErrNotEnoughPlayers = errors.New("at least two players required")
	ErrPlayersNotReady  = errors.New("all players must be ready")
	ErrNotMember        = errors.New("player is not in the room")
)

// Canceller releases scheduled work tied to a room when the room goes
// away. Implemented by the Engine.
type Canceller interface {
	CancelRoom(roomID string)
}

// Lifecycle manages room creation, membership, readiness gating and
// the waiting -> playing transition. All authority lives in the shared
// document; Lifecycle itself is stateless.
type Lifecycle struct {
	store     store.DocumentStore
	canceller Canceller
}

func NewLifecycle(st store.DocumentStore) *Lifecycle {
	return &Lifecycle{store: st}
}

// SetCanceller wires the engine in so cleanup can drop pending
// resolutions. Optional; set once at startup.
func (l *Lifecycle) SetCanceller(c Canceller) {
	l.canceller = c
}

// CreateRoom writes a fresh waiting room with the host as its only
// member and returns the shareable room code.
func (l *Lifecycle) CreateRoom(ctx context.Context, host domain.Player, gameType domain.GameType, difficulty domain.Difficulty, theme domain.Theme) (string, error) {
	host.Score = 0
	host.IsReady = false
	if host.JoinedAt.IsZero() {
		host.JoinedAt = time.Now().UTC()
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		room := &domain.Room{
			ID:         NewCode(),
			HostID:     host.UID,
			Status:     domain.RoomWaiting,
			GameType:   gameType,
			Difficulty: difficulty,
			Theme:      theme,
			Players:    map[string]domain.Player{host.UID: host},
			CreatedAt:  time.Now().UTC(),
		}

		err := l.store.CreateRoom(ctx, room)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", err
		}

		roomsCreated.Inc()
		logger.Info("room created", "room", room.ID, "host", host.UID, "difficulty", difficulty, "theme", theme)
		return room.ID, nil
	}
	return "", fmt.Errorf("could not allocate a room code")
}

// JoinRoom adds the player to a waiting room. Soft rejections (room
// missing, already started, full) return false with a nil error; only
// transport failures surface as errors. Joining with a uid that is
// already a member is idempotent acceptance and keeps the existing
// entry, score included.
func (l *Lifecycle) JoinRoom(ctx context.Context, roomID string, player domain.Player) (bool, error) {
	player.Score = 0
	player.IsReady = false
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now().UTC()
	}

	rejected := errors.New("join rejected")
	err := updateRoom(ctx, l.store, roomID, func(r *domain.Room) error {
		if _, ok := r.Players[player.UID]; ok {
			return rejected // already a member, nothing to write
		}
		if r.Status != domain.RoomWaiting || len(r.Players) >= domain.MaxRoomPlayers {
			return rejected
		}
		r.Players[player.UID] = player
		return nil
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, rejected):
		// Rejoin with a known uid counts as success.
		snap, gerr := l.store.GetRoom(ctx, roomID)
		if gerr == nil {
			_, member := snap.Room.Players[player.UID]
			return member, nil
		}
		return false, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LeaveRoom removes the player unconditionally. Decisions documented
// in DESIGN.md: a departing host hands the room to the earliest
// remaining joiner, a departing current-turn player's turn advances,
// and a room left empty is deleted.
func (l *Lifecycle) LeaveRoom(ctx context.Context, roomID, uid string) error {
	empty := errors.New("room empty")
	err := updateRoom(ctx, l.store, roomID, func(r *domain.Room) error {
		if _, ok := r.Players[uid]; !ok {
			return ErrNotMember
		}

		nextTurn := ""
		if r.GameState != nil && r.GameState.CurrentTurn == uid {
			nextTurn = r.NextTurn(uid)
		}

		delete(r.Players, uid)
		if len(r.Players) == 0 {
			return empty
		}

		if r.HostID == uid {
			r.HostID = r.TurnOrder()[0]
		}
		if nextTurn != "" && nextTurn != uid {
			r.GameState.CurrentTurn = nextTurn
			r.GameState.TurnStartedAt = time.Now().UTC()
		}
		return nil
	})

	switch {
	case errors.Is(err, empty):
		return l.Cleanup(ctx, roomID)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrNotMember):
		// Leaving a room that is gone, or twice, is a no-op.
		return nil
	default:
		return err
	}
}

// SetPlayerReady toggles the readiness flag. Permitted regardless of
// anyone else's readiness.
func (l *Lifecycle) SetPlayerReady(ctx context.Context, roomID, uid string, isReady bool) error {
	return updateRoom(ctx, l.store, roomID, func(r *domain.Room) error {
		p, ok := r.Players[uid]
		if !ok {
			return ErrNotMember
		}
		p.IsReady = isReady
		r.Players[uid] = p
		return nil
	})
}

// StartGame transitions waiting -> playing with the supplied freshly
// shuffled deck. Host-only is a caller convention; the preconditions
// checked here are the protocol ones.
func (l *Lifecycle) StartGame(ctx context.Context, roomID string, cards []domain.Card, firstPlayerUID string) error {
	if len(cards) == 0 || len(cards)%2 != 0 {
		return fmt.Errorf("deck must hold an even number of cards, got %d", len(cards))
	}

	return updateRoom(ctx, l.store, roomID, func(r *domain.Room) error {
		if r.Status != domain.RoomWaiting {
			return ErrNotWaiting
		}
		if len(r.Players) < 2 {
			return ErrNotEnoughPlayers
		}
		for _, p := range r.Players {
			if !p.IsReady {
				return ErrPlayersNotReady
			}
		}
		if _, ok := r.Players[firstPlayerUID]; !ok {
			return ErrNotMember
		}

		now := time.Now().UTC()
		r.Status = domain.RoomPlaying
		r.StartedAt = &now
		r.GameState = &domain.MatchState{
			Cards:         append([]domain.Card(nil), cards...),
			CurrentTurn:   firstPlayerUID,
			FlippedCards:  []string{},
			MatchedPairs:  0,
			TotalPairs:    len(cards) / 2,
			TurnStartedAt: now,
		}
		return nil
	})
}

// Cleanup deletes the room entirely and drops any scheduled work for
// it. Intended as the host's post-finished action, but safe at any
// point; deleting a missing room is a no-op.
func (l *Lifecycle) Cleanup(ctx context.Context, roomID string) error {
	if l.canceller != nil {
		l.canceller.CancelRoom(roomID)
	}
	if err := l.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	logger.Info("room removed", "room", roomID)
	return nil
}
