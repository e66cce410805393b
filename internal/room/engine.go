package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"memoryarena/internal/domain"
	"memoryarena/internal/logger"
	"memoryarena/internal/store"
)

var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrResolutionPending = errors.New("a resolution is pending")
	ErrCardUnavailable   = errors.New("card is already flipped or matched")
	ErrUnknownCard       = errors.New("no such card")
	ErrNoActiveMatch     = errors.New("no match in progress")
	ErrMatchFinished     = errors.New("match is finished")
)

// defaultRevealDelay keeps both cards face-up long enough for every
// client to render the reveal before the outcome lands.
const defaultRevealDelay = 900 * time.Millisecond

// ResultSink consumes write-once records of completed matches. The
// engine never reads them back.
type ResultSink interface {
	RecordMatchResult(ctx context.Context, rec *domain.MatchRecord) error
}

// Engine is the turn resolution state machine. A flip intent is
// validated against a fresh snapshot and committed with a versioned
// write; the second flip of a turn schedules a delayed resolution task
// that revalidates before writing, so a room that was deleted or
// finished in the meantime is left alone.
type Engine struct {
	store       store.DocumentStore
	revealDelay time.Duration
	sink        ResultSink

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

type EngineOption func(*Engine)

// WithRevealDelay overrides the pre-resolution reveal interval.
func WithRevealDelay(d time.Duration) EngineOption {
	return func(e *Engine) { e.revealDelay = d }
}

// WithResultSink wires in match-result persistence.
func WithResultSink(sink ResultSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

func NewEngine(st store.DocumentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       st,
		revealDelay: defaultRevealDelay,
		pending:     make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSink wires in match-result persistence after construction, for
// callers that build the engine before the repositories. Set once at
// startup.
func (e *Engine) SetSink(sink ResultSink) {
	e.sink = sink
}

// Flip handles a flip intent by player uid on card cardID. Rejections
// are sentinel errors surfaced to the initiating client only; an
// accepted flip is one atomic write visible to all subscribers.
func (e *Engine) Flip(ctx context.Context, roomID, uid, cardID string) error {
	var pendingPair [2]string
	var flipper string
	schedule := false

	err := updateRoom(ctx, e.store, roomID, func(r *domain.Room) error {
		schedule = false

		if r.Status == domain.RoomFinished {
			return ErrMatchFinished
		}
		gs := r.GameState
		if r.Status != domain.RoomPlaying || gs == nil {
			return ErrNoActiveMatch
		}
		if gs.CurrentTurn != uid {
			return ErrNotYourTurn
		}
		if len(gs.FlippedCards) >= 2 {
			return ErrResolutionPending
		}
		card := gs.Card(cardID)
		if card == nil {
			return ErrUnknownCard
		}
		if card.IsFlipped || card.IsMatched {
			return ErrCardUnavailable
		}

		card.IsFlipped = true
		gs.FlippedCards = append(gs.FlippedCards, cardID)

		if len(gs.FlippedCards) == 2 {
			pendingPair = [2]string{gs.FlippedCards[0], gs.FlippedCards[1]}
			flipper = uid
			schedule = true
		}
		return nil
	})

	if err != nil {
		flipsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return err
	}

	flipsAccepted.Inc()
	if schedule {
		e.scheduleResolution(roomID, pendingPair, flipper)
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrResolutionPending):
		return "resolution_pending"
	case errors.Is(err, ErrCardUnavailable):
		return "card_unavailable"
	case errors.Is(err, ErrUnknownCard):
		return "unknown_card"
	case errors.Is(err, ErrMatchFinished):
		return "finished"
	case errors.Is(err, ErrNoActiveMatch):
		return "no_match"
	case errors.Is(err, store.ErrNotFound):
		return "room_gone"
	default:
		return "error"
	}
}

func (e *Engine) scheduleResolution(roomID string, pair [2]string, flipper string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if t, ok := e.pending[roomID]; ok {
		// A second pending resolution for the same room means the
		// previous one is about to fire or was orphaned; replace it.
		t.Stop()
	}
	e.pending[roomID] = time.AfterFunc(e.revealDelay, func() {
		e.mu.Lock()
		delete(e.pending, roomID)
		e.mu.Unlock()
		e.resolve(roomID, pair, flipper)
	})
}

// resolve applies the outcome of a revealed pair. It revalidates the
// room first: a room that is gone, finished, or already resolved by a
// racing client is left untouched. The score increment lands before
// the resolution write, so if that write aborts the point stays
// credited with no pair marked; losing a point the player earned would
// be worse.
func (e *Engine) resolve(roomID string, pair [2]string, flipper string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := e.store.GetRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Error("resolution read failed", "room", roomID, "error", err)
		return
	}
	if !resolvable(snap.Room, pair) {
		return
	}

	first := snap.Room.GameState.Card(pair[0])
	second := snap.Room.GameState.Card(pair[1])
	matched := first != nil && second != nil && first.PairID == second.PairID

	if matched {
		// The sole field-level atomic op: the point is never lost
		// even if the resolution write below loses a race.
		if err := e.store.IncrementScore(ctx, roomID, flipper); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Error("score increment failed", "room", roomID, "uid", flipper, "error", err)
		}
	}

	var finishedRoom *domain.Room
	err = updateRoom(ctx, e.store, roomID, func(r *domain.Room) error {
		finishedRoom = nil
		if !resolvable(r, pair) {
			return ErrNoActiveMatch
		}

		gs := r.GameState
		now := time.Now().UTC()
		a, b := gs.Card(pair[0]), gs.Card(pair[1])

		if matched {
			for _, c := range []*domain.Card{a, b} {
				c.IsFlipped = true
				c.IsMatched = true
				c.FlippedBy = flipper
			}
			gs.MatchedPairs++
			// A match grants an extra turn: CurrentTurn stays.
			if gs.MatchedPairs == gs.TotalPairs {
				r.Status = domain.RoomFinished
				r.FinishedAt = &now
				finishedRoom = r
			}
		} else {
			a.IsFlipped = false
			b.IsFlipped = false
			gs.CurrentTurn = r.NextTurn(flipper)
		}
		gs.FlippedCards = []string{}
		gs.TurnStartedAt = now
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrNoActiveMatch), errors.Is(err, store.ErrNotFound):
		// Lost race or vanished room; last write wins elsewhere.
		return
	default:
		logger.Error("resolution write failed", "room", roomID, "error", err)
		return
	}

	if matched {
		resolutions.WithLabelValues("match").Inc()
	} else {
		resolutions.WithLabelValues("miss").Inc()
	}

	if finishedRoom != nil {
		matchesFinished.Inc()
		logger.Info("match finished", "room", roomID, "pairs", finishedRoom.GameState.TotalPairs)
		e.recordResults(finishedRoom)
	}
}

// resolvable reports whether the pending pair is still the one to
// resolve: playing status, both ids present, and the flipped list
// unchanged since the reveal.
func resolvable(r *domain.Room, pair [2]string) bool {
	if r.Status != domain.RoomPlaying || r.GameState == nil {
		return false
	}
	fc := r.GameState.FlippedCards
	if len(fc) != 2 {
		return false
	}
	return fc[0] == pair[0] && fc[1] == pair[1]
}

func (e *Engine) recordResults(r *domain.Room) {
	if e.sink == nil {
		return
	}

	maxScore := 0
	for _, p := range r.Players {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}
	seconds := 0
	if r.StartedAt != nil && r.FinishedAt != nil {
		seconds = int(r.FinishedAt.Sub(*r.StartedAt) / time.Second)
	}

	roomID := r.ID
	for _, p := range r.Players {
		rec := &domain.MatchRecord{
			UID:         p.UID,
			DisplayName: p.DisplayName,
			GameType:    r.GameType,
			Mode:        domain.ModeMultiplayer,
			Difficulty:  r.Difficulty,
			RoomID:      &roomID,
			Score:       p.Score,
			TimeSeconds: seconds,
			IsWin:       p.Score == maxScore,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.sink.RecordMatchResult(ctx, rec); err != nil {
				logger.Error("match record failed", "room", roomID, "uid", rec.UID, "error", err)
			}
		}()
	}
}

// CancelRoom drops any scheduled resolution for the room. Called when
// the room is deleted.
func (e *Engine) CancelRoom(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.pending[roomID]; ok {
		t.Stop()
		delete(e.pending, roomID)
	}
}

// Shutdown stops all scheduled resolutions. Pending outcomes are lost,
// which clients recover from the same way they handle any lost race.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for id, t := range e.pending {
		t.Stop()
		delete(e.pending, id)
	}
}
