package room

import (
	"context"
	"testing"
	"time"

	"memoryarena/internal/domain"
	"memoryarena/internal/store"
)

func playingRoom() *domain.Room {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	started := base.Add(time.Minute)
	return &domain.Room{
		ID:         "ROOM01",
		HostID:     "alice",
		Status:     domain.RoomPlaying,
		GameType:   domain.GameCardFlip,
		Difficulty: domain.Difficulty4x4,
		Theme:      domain.ThemeEmojis,
		Players: map[string]domain.Player{
			"alice": {UID: "alice", DisplayName: "Alice", Score: 2, IsReady: true, JoinedAt: base},
			"bob":   {UID: "bob", DisplayName: "Bob", Score: 3, IsReady: true, JoinedAt: base.Add(time.Second)},
		},
		GameState: &domain.MatchState{
			Cards: []domain.Card{
				{ID: "pair-0-a", PairID: "pair-0", Value: "🐶", IsFlipped: true, FlippedBy: "bob"},
				{ID: "pair-0-b", PairID: "pair-0", Value: "🐶"},
				{ID: "pair-1-a", PairID: "pair-1", Value: "🐱", IsFlipped: true, IsMatched: true, FlippedBy: "alice"},
				{ID: "pair-1-b", PairID: "pair-1", Value: "🐱", IsFlipped: true, IsMatched: true, FlippedBy: "alice"},
			},
			CurrentTurn:   "bob",
			FlippedCards:  []string{"pair-0-a"},
			MatchedPairs:  1,
			TotalPairs:    8,
			TurnStartedAt: started,
		},
		CreatedAt: base,
		StartedAt: &started,
	}
}

func TestProjectMasksFaceDownCards(t *testing.T) {
	v := Project(playingRoom(), "alice")

	byID := make(map[string]CardView)
	for _, c := range v.Board {
		byID[c.ID] = c
	}

	if got := byID["pair-0-b"]; got.Value != "" {
		t.Fatalf("face-down card leaked value %q", got.Value)
	}
	if got := byID["pair-0-a"]; got.Value != "🐶" {
		t.Fatalf("face-up card masked: %+v", got)
	}
	if got := byID["pair-1-a"]; got.Value != "🐱" || !got.IsMatched {
		t.Fatalf("matched card = %+v", got)
	}
}

func TestProjectDerivesTurnFlags(t *testing.T) {
	r := playingRoom()

	for _, tc := range []struct {
		viewer   string
		yourTurn bool
	}{
		{"alice", false},
		{"bob", true},
		{"spectator", false},
	} {
		v := Project(r, tc.viewer)
		if v.IsYourTurn != tc.yourTurn {
			t.Errorf("viewer %s: IsYourTurn = %v, want %v", tc.viewer, v.IsYourTurn, tc.yourTurn)
		}
		if v.CurrentTurn != "bob" {
			t.Errorf("viewer %s: CurrentTurn = %q", tc.viewer, v.CurrentTurn)
		}
	}

	// The flag is derived, never stored: flipping the document flips
	// every projection.
	r.GameState.CurrentTurn = "alice"
	if v := Project(r, "alice"); !v.IsYourTurn {
		t.Fatal("turn change not reflected in projection")
	}
}

func TestProjectScoreboardOrderAndPhase(t *testing.T) {
	v := Project(playingRoom(), "bob")

	if len(v.Players) != 2 || v.Players[0].UID != "bob" || v.Players[1].UID != "alice" {
		t.Fatalf("scoreboard order = %+v", v.Players)
	}
	if !v.Players[0].IsYou || !v.Players[0].IsCurrentTurn {
		t.Fatalf("bob's row = %+v", v.Players[0])
	}
	if v.Phase != domain.PhaseOneCardFlipped {
		t.Fatalf("phase = %s, want one_card_flipped", v.Phase)
	}
	if v.GridCols != 4 {
		t.Fatalf("grid cols = %d, want 4", v.GridCols)
	}
	if v.IsHost {
		t.Fatal("bob marked as host")
	}
}

func TestProjectWaitingRoomCanStart(t *testing.T) {
	base := time.Now().UTC()
	r := &domain.Room{
		ID:     "ROOM02",
		HostID: "alice",
		Status: domain.RoomWaiting,
		Players: map[string]domain.Player{
			"alice": {UID: "alice", IsReady: true, JoinedAt: base},
			"bob":   {UID: "bob", IsReady: false, JoinedAt: base.Add(time.Second)},
		},
	}

	if v := Project(r, "alice"); v.CanStart {
		t.Fatal("CanStart with an unready player")
	}

	p := r.Players["bob"]
	p.IsReady = true
	r.Players["bob"] = p

	if v := Project(r, "alice"); !v.CanStart {
		t.Fatal("CanStart false with everyone ready")
	}
	// Only the host can start.
	if v := Project(r, "bob"); v.CanStart {
		t.Fatal("CanStart true for a non-host")
	}
}

func TestProjectFinishedWinners(t *testing.T) {
	r := playingRoom()
	now := time.Now().UTC()
	r.Status = domain.RoomFinished
	r.FinishedAt = &now

	v := Project(r, "alice")
	if v.Phase != domain.PhaseComplete {
		t.Fatalf("phase = %s, want complete", v.Phase)
	}
	if len(v.Winners) != 1 || v.Winners[0] != "bob" {
		t.Fatalf("winners = %v, want [bob]", v.Winners)
	}

	// A draw names every top scorer.
	p := r.Players["alice"]
	p.Score = 3
	r.Players["alice"] = p
	v = Project(r, "alice")
	if len(v.Winners) != 2 {
		t.Fatalf("draw winners = %v", v.Winners)
	}
}

func TestProjectorWatch(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	r := playingRoom()
	if err := st.CreateRoom(ctx, r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	views := make(chan View, 16)
	closed := make(chan struct{}, 1)
	unsub, err := NewProjector(st, r.ID, "alice").Watch(ctx, func(v View, ok bool) {
		if !ok {
			closed <- struct{}{}
			return
		}
		views <- v
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer unsub()

	select {
	case v := <-views:
		if v.RoomID != r.ID || v.You != "alice" {
			t.Fatalf("initial view = %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial view")
	}

	if err := st.DeleteRoom(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("deletion not observed")
	}
}
