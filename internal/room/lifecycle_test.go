package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"memoryarena/internal/deck"
	"memoryarena/internal/domain"
	"memoryarena/internal/store"
)

func player(uid string, joinedAt time.Time) domain.Player {
	return domain.Player{UID: uid, DisplayName: uid, JoinedAt: joinedAt}
}

func newTestRoom(t *testing.T, st store.DocumentStore, uids ...string) (string, *Lifecycle) {
	t.Helper()
	ctx := context.Background()
	lc := NewLifecycle(st)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	roomID, err := lc.CreateRoom(ctx, player(uids[0], base), domain.GameCardFlip, domain.Difficulty4x4, domain.ThemeEmojis)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for i, uid := range uids[1:] {
		joined, err := lc.JoinRoom(ctx, roomID, player(uid, base.Add(time.Duration(i+1)*time.Second)))
		if err != nil || !joined {
			t.Fatalf("JoinRoom(%s): joined=%v err=%v", uid, joined, err)
		}
	}
	return roomID, lc
}

func mustDeck(t *testing.T) []domain.Card {
	t.Helper()
	cards, err := deck.Generate(domain.Difficulty4x4, domain.ThemeEmojis)
	if err != nil {
		t.Fatalf("deck.Generate: %v", err)
	}
	return cards
}

func TestCreateRoom(t *testing.T) {
	st := store.NewMemoryStore()
	roomID, _ := newTestRoom(t, st, "alice")

	if len(roomID) != 6 {
		t.Fatalf("room code %q, want 6 characters", roomID)
	}

	snap, err := st.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	r := snap.Room
	if r.Status != domain.RoomWaiting {
		t.Fatalf("status = %s, want waiting", r.Status)
	}
	if r.HostID != "alice" {
		t.Fatalf("host = %q, want alice", r.HostID)
	}
	if len(r.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(r.Players))
	}
	if r.GameState != nil {
		t.Fatal("fresh room has game state")
	}
}

func TestJoinRoomRejections(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob", "carol", "dave")

	// Full room.
	joined, err := lc.JoinRoom(ctx, roomID, player("eve", time.Now().UTC()))
	if err != nil {
		t.Fatalf("JoinRoom full: %v", err)
	}
	if joined {
		t.Fatal("join accepted into a full room")
	}

	// Missing room.
	joined, err = lc.JoinRoom(ctx, "NOROOM", player("eve", time.Now().UTC()))
	if err != nil || joined {
		t.Fatalf("join missing room: joined=%v err=%v", joined, err)
	}
}

func TestJoinRoomAfterStart(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob")

	for _, uid := range []string{"alice", "bob"} {
		if err := lc.SetPlayerReady(ctx, roomID, uid, true); err != nil {
			t.Fatalf("SetPlayerReady(%s): %v", uid, err)
		}
	}
	if err := lc.StartGame(ctx, roomID, mustDeck(t), "alice"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	joined, err := lc.JoinRoom(ctx, roomID, player("carol", time.Now().UTC()))
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if joined {
		t.Fatal("join accepted into a playing room")
	}
}

func TestJoinRoomIdempotentRejoin(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob")

	if err := st.IncrementScore(ctx, roomID, "bob"); err != nil {
		t.Fatalf("IncrementScore: %v", err)
	}

	joined, err := lc.JoinRoom(ctx, roomID, player("bob", time.Now().UTC()))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !joined {
		t.Fatal("rejoin with a member uid rejected")
	}

	snap, _ := st.GetRoom(ctx, roomID)
	if got := snap.Room.Players["bob"].Score; got != 1 {
		t.Fatalf("rejoin reset score to %d", got)
	}
	if len(snap.Room.Players) != 2 {
		t.Fatalf("players = %d after rejoin", len(snap.Room.Players))
	}
}

func TestLeaveRoomHostMigration(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob", "carol")

	if err := lc.LeaveRoom(ctx, roomID, "alice"); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}

	snap, _ := st.GetRoom(ctx, roomID)
	// bob joined before carol, so bob inherits the room.
	if snap.Room.HostID != "bob" {
		t.Fatalf("host = %q, want bob", snap.Room.HostID)
	}
	if _, ok := snap.Room.Players["alice"]; ok {
		t.Fatal("alice still a member after leaving")
	}
}

func TestLeaveRoomAdvancesTurn(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob", "carol")

	for _, uid := range []string{"alice", "bob", "carol"} {
		if err := lc.SetPlayerReady(ctx, roomID, uid, true); err != nil {
			t.Fatalf("SetPlayerReady(%s): %v", uid, err)
		}
	}
	if err := lc.StartGame(ctx, roomID, mustDeck(t), "bob"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	if err := lc.LeaveRoom(ctx, roomID, "bob"); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}

	snap, _ := st.GetRoom(ctx, roomID)
	if got := snap.Room.GameState.CurrentTurn; got != "carol" {
		t.Fatalf("turn = %q after current player left, want carol", got)
	}
}

func TestLeaveRoomLastPlayerDeletes(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice")

	if err := lc.LeaveRoom(ctx, roomID, "alice"); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if _, err := st.GetRoom(ctx, roomID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty room still exists: %v", err)
	}

	// Leaving again, or leaving a deleted room, is a no-op.
	if err := lc.LeaveRoom(ctx, roomID, "alice"); err != nil {
		t.Fatalf("second leave: %v", err)
	}
}

func TestStartGamePreconditions(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice", "bob")
	cards := mustDeck(t)

	if err := lc.StartGame(ctx, roomID, cards, "alice"); !errors.Is(err, ErrPlayersNotReady) {
		t.Fatalf("start before ready: got %v, want ErrPlayersNotReady", err)
	}

	for _, uid := range []string{"alice", "bob"} {
		if err := lc.SetPlayerReady(ctx, roomID, uid, true); err != nil {
			t.Fatalf("SetPlayerReady(%s): %v", uid, err)
		}
	}

	if err := lc.StartGame(ctx, roomID, cards, "nobody"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("start with unknown first player: got %v, want ErrNotMember", err)
	}
	if err := lc.StartGame(ctx, roomID, cards[:3], "alice"); err == nil {
		t.Fatal("odd deck accepted")
	}

	if err := lc.StartGame(ctx, roomID, cards, "bob"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	snap, _ := st.GetRoom(ctx, roomID)
	r := snap.Room
	if r.Status != domain.RoomPlaying {
		t.Fatalf("status = %s, want playing", r.Status)
	}
	gs := r.GameState
	if gs == nil {
		t.Fatal("no game state after start")
	}
	if gs.CurrentTurn != "bob" {
		t.Fatalf("first turn = %q, want bob", gs.CurrentTurn)
	}
	if gs.TotalPairs != 8 || len(gs.Cards) != 16 {
		t.Fatalf("board = %d cards / %d pairs", len(gs.Cards), gs.TotalPairs)
	}
	if len(gs.FlippedCards) != 0 || gs.MatchedPairs != 0 {
		t.Fatal("fresh game state not empty")
	}

	// Double start.
	if err := lc.StartGame(ctx, roomID, cards, "alice"); !errors.Is(err, ErrNotWaiting) {
		t.Fatalf("second start: got %v, want ErrNotWaiting", err)
	}
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	roomID, lc := newTestRoom(t, st, "alice")

	if err := lc.SetPlayerReady(ctx, roomID, "alice", true); err != nil {
		t.Fatalf("SetPlayerReady: %v", err)
	}
	if err := lc.StartGame(ctx, roomID, mustDeck(t), "alice"); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("solo start: got %v, want ErrNotEnoughPlayers", err)
	}
}

func TestSetPlayerReadyNotMember(t *testing.T) {
	st := store.NewMemoryStore()
	roomID, lc := newTestRoom(t, st, "alice")

	if err := lc.SetPlayerReady(context.Background(), roomID, "ghost", true); !errors.Is(err, ErrNotMember) {
		t.Fatalf("ready for non-member: got %v, want ErrNotMember", err)
	}
}
