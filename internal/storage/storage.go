package storage

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	// Keys for the two persisted documents. Each document is written with a
	// single SET so a save either fully replaces the record or leaves it
	// untouched.
	RosterKey   = "chores:roster:data"
	ScheduleKey = "chores:schedule:data"
)

// Record persists one JSON document per key.
type Record interface {
	// Load returns the raw document, or (nil, nil) when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save atomically replaces the document.
	Save(ctx context.Context, key string, data []byte) error
	// SaveAll atomically replaces several documents in one write, so an
	// operation spanning records cannot leave one updated and one stale.
	SaveAll(ctx context.Context, docs map[string][]byte) error
}

// RedisRecord stores documents in Redis.
type RedisRecord struct {
	client *redis.Client
}

func NewRedisRecord(client *redis.Client) *RedisRecord {
	return &RedisRecord{client: client}
}

func (r *RedisRecord) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisRecord) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *RedisRecord) SaveAll(ctx context.Context, docs map[string][]byte) error {
	pipe := r.client.TxPipeline()
	for key, data := range docs {
		pipe.Set(ctx, key, data, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// MemoryRecord is an in-process Record used by tests.
type MemoryRecord struct {
	mu   sync.Mutex
	docs map[string][]byte

	// FailNextSave makes the next Save return this error, then clears it.
	FailNextSave error
}

func NewMemoryRecord() *MemoryRecord {
	return &MemoryRecord{docs: make(map[string][]byte)}
}

func (m *MemoryRecord) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryRecord) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextSave != nil {
		err := m.FailNextSave
		m.FailNextSave = nil
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.docs[key] = cp
	return nil
}

func (m *MemoryRecord) SaveAll(_ context.Context, docs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextSave != nil {
		err := m.FailNextSave
		m.FailNextSave = nil
		return err
	}
	for key, data := range docs {
		cp := make([]byte, len(data))
		copy(cp, data)
		m.docs[key] = cp
	}
	return nil
}
