// Package store provides the shared room document store: the single
// source of truth that every client reads, writes and subscribes to.
// Writes are versioned; a write carrying a stale version is rejected
// so callers re-read and recompute instead of clobbering concurrent
// updates.
package store

import (
	"context"
	"errors"

	"memoryarena/internal/domain"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrAlreadyExists   = errors.New("room already exists")
	ErrVersionConflict = errors.New("room version conflict")
)

// Snapshot is the full room value as observed at one point in time,
// together with the version to pass back on the next write.
type Snapshot struct {
	Room    *domain.Room
	Version int64
}

// SubscribeFunc receives every snapshot of a room, starting with the
// current value at subscription time. ok is false when the room does
// not exist (including when it is deleted mid-subscription).
type SubscribeFunc func(snap Snapshot, ok bool)

// UnsubscribeFunc tears the subscription down and releases its
// resources. Safe to call more than once.
type UnsubscribeFunc func()

// DocumentStore is the external collaborator the room protocol is
// built on. Implementations must serialize writes per room and fan
// every committed write out to all subscribers of that room.
type DocumentStore interface {
	// CreateRoom writes the initial document at version 1.
	// Returns ErrAlreadyExists if the room code is taken.
	CreateRoom(ctx context.Context, room *domain.Room) error

	// GetRoom returns the current snapshot or ErrNotFound.
	GetRoom(ctx context.Context, id string) (Snapshot, error)

	// PutRoom replaces the document if its version still equals
	// expected; otherwise it fails with ErrVersionConflict and the
	// caller re-reads. ErrNotFound if the room is gone.
	PutRoom(ctx context.Context, room *domain.Room, expected int64) error

	// DeleteRoom removes the document and notifies subscribers with
	// an absent snapshot. Deleting a missing room is a no-op.
	DeleteRoom(ctx context.Context, id string) error

	// IncrementScore bumps one player's score by one, atomically at
	// the field level. It is the only write that bypasses the
	// version check; it still advances the version and fans out.
	IncrementScore(ctx context.Context, roomID, uid string) error

	// Subscribe registers fn for the room. fn is called once with
	// the current value (or absent) before Subscribe returns updates,
	// then on every committed write in order.
	Subscribe(ctx context.Context, roomID string, fn SubscribeFunc) (UnsubscribeFunc, error)
}
