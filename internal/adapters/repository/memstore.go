package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/okian/grindstone/internal/domain/model"
)

// defaultShardCount spreads users across shards to keep lock contention
// low when many users read and append concurrently.
const defaultShardCount = 8

// MemStoreOption applies a configuration option to the MemStore.
type MemStoreOption func(*MemStore)

// WithShardCount sets the number of shards in the in-memory event store.
func WithShardCount(count int) MemStoreOption {
	return func(s *MemStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// MemStore is a sharded in-memory EventSource. Events are kept per user
// in timestamp order; window reads binary-search the boundaries.
type MemStore struct {
	shardCount int
	shards     []*memShard
}

type memShard struct {
	mu     sync.RWMutex
	events map[string][]model.WorkoutEvent // userID -> sorted by timestamp
}

// NewMemStore creates an in-memory event store.
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*memShard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &memShard{events: make(map[string][]model.WorkoutEvent)}
	}
	return s
}

func (s *MemStore) shardFor(userID string) *memShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Append stores events, keeping each user's slice sorted by timestamp.
func (s *MemStore) Append(ctx context.Context, events ...model.WorkoutEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range events {
		if e.UserID == "" || e.Timestamp.IsZero() {
			return ErrInvalidEvent
		}
	}
	for _, e := range events {
		shard := s.shardFor(e.UserID)
		shard.mu.Lock()
		list := shard.events[e.UserID]
		// Common case: append in order. Otherwise insert at the right spot.
		if n := len(list); n == 0 || !e.Timestamp.Before(list[n-1].Timestamp) {
			list = append(list, e)
		} else {
			i := sort.Search(n, func(i int) bool { return list[i].Timestamp.After(e.Timestamp) })
			list = append(list, model.WorkoutEvent{})
			copy(list[i+1:], list[i:])
			list[i] = e
		}
		shard.events[e.UserID] = list
		shard.mu.Unlock()
	}
	return nil
}

// Events returns the user's events inside the window, oldest first.
func (s *MemStore) Events(ctx context.Context, userID string, w model.Window) ([]model.WorkoutEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shard := s.shardFor(userID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	list := shard.events[userID]
	lo, hi := 0, len(list)
	if !w.Start.IsZero() {
		lo = sort.Search(len(list), func(i int) bool { return !list[i].Timestamp.Before(w.Start) })
	}
	if !w.End.IsZero() {
		hi = sort.Search(len(list), func(i int) bool { return !list[i].Timestamp.Before(w.End) })
	}
	if lo >= hi {
		return nil, nil
	}
	out := make([]model.WorkoutEvent, hi-lo)
	copy(out, list[lo:hi])
	return out, nil
}

// Count returns the number of stored events across all users.
func (s *MemStore) Count(ctx context.Context) int {
	_ = ctx
	total := 0
	for _, shard := range s.shards {
		shard.mu.RLock()
		for _, list := range shard.events {
			total += len(list)
		}
		shard.mu.RUnlock()
	}
	return total
}
