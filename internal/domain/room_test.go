package domain

import (
	"testing"
	"time"
)

func threePlayerRoom() *Room {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	return &Room{
		ID: "ROOM01",
		Players: map[string]Player{
			"carol": {UID: "carol", JoinedAt: base.Add(2 * time.Second)},
			"alice": {UID: "alice", JoinedAt: base},
			"bob":   {UID: "bob", JoinedAt: base.Add(time.Second)},
		},
	}
}

func TestTurnOrderFollowsJoinOrder(t *testing.T) {
	r := threePlayerRoom()
	order := r.TurnOrder()
	want := []string{"alice", "bob", "carol"}
	for i, uid := range want {
		if order[i] != uid {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTurnOrderTiebreakByUID(t *testing.T) {
	same := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	r := &Room{Players: map[string]Player{
		"zed": {UID: "zed", JoinedAt: same},
		"amy": {UID: "amy", JoinedAt: same},
	}}
	order := r.TurnOrder()
	if order[0] != "amy" || order[1] != "zed" {
		t.Fatalf("order = %v, want [amy zed]", order)
	}
}

func TestNextTurnWrapsAround(t *testing.T) {
	r := threePlayerRoom()
	for _, tc := range []struct{ current, want string }{
		{"alice", "bob"},
		{"bob", "carol"},
		{"carol", "alice"},
		{"gone", "alice"}, // departed player: rotation restarts
	} {
		if got := r.NextTurn(tc.current); got != tc.want {
			t.Errorf("NextTurn(%s) = %s, want %s", tc.current, got, tc.want)
		}
	}
}

func TestMatchStatePhase(t *testing.T) {
	m := &MatchState{TotalPairs: 8}
	if got := m.Phase(RoomPlaying); got != PhaseAwaitingFirstFlip {
		t.Fatalf("phase = %s", got)
	}
	m.FlippedCards = []string{"c1"}
	if got := m.Phase(RoomPlaying); got != PhaseOneCardFlipped {
		t.Fatalf("phase = %s", got)
	}
	m.FlippedCards = []string{"c1", "c2"}
	if got := m.Phase(RoomPlaying); got != PhaseResolving {
		t.Fatalf("phase = %s", got)
	}
	m.FlippedCards = nil
	m.MatchedPairs = 8
	if got := m.Phase(RoomPlaying); got != PhaseComplete {
		t.Fatalf("phase = %s", got)
	}
	if got := (&MatchState{}).Phase(RoomFinished); got != PhaseComplete {
		t.Fatalf("finished phase = %s", got)
	}
}

func TestRoomCloneIsDeep(t *testing.T) {
	r := threePlayerRoom()
	started := time.Now().UTC()
	r.StartedAt = &started
	r.GameState = &MatchState{
		Cards:        []Card{{ID: "c1", PairID: "p1"}},
		FlippedCards: []string{"c1"},
	}

	c := r.Clone()
	c.Players["alice"] = Player{UID: "alice", Score: 99}
	c.GameState.Cards[0].IsFlipped = true
	c.GameState.FlippedCards[0] = "other"
	*c.StartedAt = started.Add(time.Hour)

	if r.Players["alice"].Score != 0 {
		t.Fatal("clone shares the players map")
	}
	if r.GameState.Cards[0].IsFlipped {
		t.Fatal("clone shares the cards slice")
	}
	if r.GameState.FlippedCards[0] != "c1" {
		t.Fatal("clone shares the flipped list")
	}
	if !r.StartedAt.Equal(started) {
		t.Fatal("clone shares the StartedAt pointer")
	}
}
