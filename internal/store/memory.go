package store

import (
	"context"
	"sync"

	"memoryarena/internal/domain"
	"memoryarena/internal/logger"
)

// subscriber channels are buffered; a subscriber that falls this far
// behind starts losing intermediate snapshots (it always eventually
// sees the latest one that fits).
const memSubBuffer = 64

type memEvent struct {
	snap Snapshot
	ok   bool
}

type memSub struct {
	ch   chan memEvent
	once sync.Once
}

func (s *memSub) close() {
	s.once.Do(func() { close(s.ch) })
}

type memEntry struct {
	room    *domain.Room
	version int64
}

// MemoryStore is the in-process DocumentStore used by tests and
// single-node development. Fan-out runs on one goroutine per
// subscriber so a slow consumer never blocks a write.
type MemoryStore struct {
	mu      sync.Mutex
	rooms   map[string]*memEntry
	subs    map[string]map[int64]*memSub
	nextSub int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*memEntry),
		subs:  make(map[string]map[int64]*memSub),
	}
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return ErrAlreadyExists
	}
	s.rooms[room.ID] = &memEntry{room: room.Clone(), version: 1}
	s.publishLocked(room.ID)
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return Snapshot{Room: e.room.Clone(), Version: e.version}, nil
}

func (s *MemoryStore) PutRoom(ctx context.Context, room *domain.Room, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[room.ID]
	if !ok {
		return ErrNotFound
	}
	if e.version != expected {
		return ErrVersionConflict
	}
	e.room = room.Clone()
	e.version++
	s.publishLocked(room.ID)
	return nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return nil
	}
	delete(s.rooms, id)
	s.publishLocked(id)
	return nil
}

func (s *MemoryStore) IncrementScore(ctx context.Context, roomID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	p, ok := e.room.Players[uid]
	if !ok {
		return ErrNotFound
	}
	p.Score++
	e.room.Players[uid] = p
	e.version++
	s.publishLocked(roomID)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, roomID string, fn SubscribeFunc) (UnsubscribeFunc, error) {
	sub := &memSub{ch: make(chan memEvent, memSubBuffer)}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[int64]*memSub)
	}
	s.subs[roomID][id] = sub
	// Immediate push of the current value, absent included.
	sub.ch <- s.currentLocked(roomID)
	s.mu.Unlock()

	go func() {
		for ev := range sub.ch {
			fn(ev.snap, ev.ok)
		}
	}()

	unsub := func() {
		s.mu.Lock()
		if subs, ok := s.subs[roomID]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(s.subs, roomID)
				}
				sub.close()
			}
		}
		s.mu.Unlock()
	}
	return unsub, nil
}

func (s *MemoryStore) currentLocked(roomID string) memEvent {
	if e, ok := s.rooms[roomID]; ok {
		return memEvent{snap: Snapshot{Room: e.room.Clone(), Version: e.version}, ok: true}
	}
	return memEvent{}
}

func (s *MemoryStore) publishLocked(roomID string) {
	ev := s.currentLocked(roomID)
	for _, sub := range s.subs[roomID] {
		select {
		case sub.ch <- ev:
		default:
			// Slow subscriber: drop the oldest queued snapshot so
			// the latest always lands.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
				logger.Warn("memory store: subscriber buffer full", "room", roomID)
			}
		}
	}
}
