package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"memoryarena/internal/domain"
	"memoryarena/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Rooms expire eventually even if nobody cleans them up; the original
// store behaved the same way for abandoned rooms.
const defaultRoomTTL = 24 * time.Hour

const (
	msgUpdate = "update"
	msgDelete = "delete"
)

// putScript performs the compare-and-swap: replace the document only
// if the version key still matches the caller's snapshot.
// KEYS[1]=doc KEYS[2]=ver ARGV[1]=expected ARGV[2]=json ARGV[3]=ttl ARGV[4]=channel
var putScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
local v = tonumber(redis.call("GET", KEYS[2]) or "0")
if v ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "EX", ARGV[3])
redis.call("SET", KEYS[2], v + 1, "EX", ARGV[3])
redis.call("PUBLISH", ARGV[4], "update")
return v + 1
`)

// createScript writes the initial document unless the code is taken.
// KEYS[1]=doc KEYS[2]=ver ARGV[1]=json ARGV[2]=ttl ARGV[3]=channel
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
redis.call("SET", KEYS[2], 1, "EX", ARGV[2])
redis.call("PUBLISH", ARGV[3], "update")
return 1
`)

// KEYS[1]=doc KEYS[2]=ver ARGV[1]=channel
var deleteScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("DEL", KEYS[1], KEYS[2])
redis.call("PUBLISH", ARGV[1], "delete")
return 1
`)

// RedisStore backs the room document with a Redis instance: one JSON
// document plus a version counter per room, pub/sub for fan-out.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: defaultRoomTTL}
}

func docKey(id string) string  { return "room:" + id }
func verKey(id string) string  { return "room:" + id + ":ver" }
func chanKey(id string) string { return "room:" + id + ":events" }

func (s *RedisStore) ttlSeconds() string {
	return strconv.FormatInt(int64(s.ttl/time.Second), 10)
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	n, err := createScript.Run(ctx, s.rdb,
		[]string{docKey(room.ID), verKey(room.ID)},
		raw, s.ttlSeconds(), chanKey(room.ID)).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) GetRoom(ctx context.Context, id string) (Snapshot, error) {
	pipe := s.rdb.Pipeline()
	docCmd := pipe.Get(ctx, docKey(id))
	verCmd := pipe.Get(ctx, verKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}

	var room domain.Room
	if err := json.Unmarshal([]byte(docCmd.Val()), &room); err != nil {
		return Snapshot{}, err
	}
	version, err := verCmd.Int64()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Room: &room, Version: version}, nil
}

func (s *RedisStore) PutRoom(ctx context.Context, room *domain.Room, expected int64) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	n, err := putScript.Run(ctx, s.rdb,
		[]string{docKey(room.ID), verKey(room.ID)},
		expected, raw, s.ttlSeconds(), chanKey(room.ID)).Int64()
	if err != nil {
		return err
	}
	switch n {
	case -1:
		return ErrNotFound
	case 0:
		return ErrVersionConflict
	default:
		return nil
	}
}

func (s *RedisStore) DeleteRoom(ctx context.Context, id string) error {
	return deleteScript.Run(ctx, s.rdb,
		[]string{docKey(id), verKey(id)}, chanKey(id)).Err()
}

// IncrementScore is a watch-protected read-modify-write on the score
// field alone; it retries internally on contention so callers see it
// as a single atomic op.
func (s *RedisStore) IncrementScore(ctx context.Context, roomID, uid string) error {
	for attempt := 0; attempt < 10; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, docKey(roomID)).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}

			var room domain.Room
			if err := json.Unmarshal([]byte(raw), &room); err != nil {
				return err
			}
			p, ok := room.Players[uid]
			if !ok {
				return ErrNotFound
			}
			p.Score++
			room.Players[uid] = p

			updated, err := json.Marshal(&room)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, docKey(roomID), updated, s.ttl)
				pipe.Incr(ctx, verKey(roomID))
				pipe.Expire(ctx, verKey(roomID), s.ttl)
				pipe.Publish(ctx, chanKey(roomID), msgUpdate)
				return nil
			})
			return err
		}, docKey(roomID))

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}

func (s *RedisStore) Subscribe(ctx context.Context, roomID string, fn SubscribeFunc) (UnsubscribeFunc, error) {
	pubsub := s.rdb.Subscribe(ctx, chanKey(roomID))
	// Force the subscription to be established before the initial
	// read so no write between them is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	push := func() {
		snap, err := s.GetRoom(context.Background(), roomID)
		switch {
		case err == nil:
			fn(snap, true)
		case errors.Is(err, ErrNotFound):
			fn(Snapshot{}, false)
		default:
			logger.Warn("redis store: snapshot read failed", "room", roomID, "error", err)
		}
	}

	// Immediate push of the current value, absent included.
	push()

	go func() {
		for msg := range pubsub.Channel() {
			if msg.Payload == msgDelete {
				fn(Snapshot{}, false)
				continue
			}
			push()
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}
