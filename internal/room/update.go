package room

import (
	"context"
	"errors"

	"memoryarena/internal/domain"
	"memoryarena/internal/store"
)

// casAttempts bounds the read-mutate-write retry loop. Contention on a
// 4-player room is light; hitting the bound means something is wrong.
const casAttempts = 5

// ErrContention is returned when a versioned write keeps losing races.
var ErrContention = errors.New("room update contention")

// updateRoom runs the optimistic-concurrency loop: read a snapshot,
// let mutate rewrite the copy, write it back keyed on the snapshot
// version, and retry from a fresh read if someone else got there
// first. Errors returned by mutate abort the loop unchanged.
func updateRoom(ctx context.Context, st store.DocumentStore, roomID string, mutate func(*domain.Room) error) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		snap, err := st.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}

		room := snap.Room
		if err := mutate(room); err != nil {
			return err
		}

		err = st.PutRoom(ctx, room, snap.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			writeConflicts.Inc()
			continue
		}
		return err
	}
	return ErrContention
}
