package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

var ErrSnapshotNotFound = errors.New("session snapshot not found")

// SnapshotStore keeps the cart of a session for the lifetime of the session,
// so any API replica can pick it up.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, snap cart.Snapshot, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	snap      cart.Snapshot
	expiresAt time.Time
}

// MemorySnapshotStore is the single-process SnapshotStore.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{entries: make(map[string]memoryEntry)}
}

func (m *MemorySnapshotStore) Save(_ context.Context, sessionID string, snap cart.Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
	m.entries[sessionID] = memoryEntry{snap: snap, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemorySnapshotStore) Load(_ context.Context, sessionID string) (cart.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return cart.Snapshot{}, ErrSnapshotNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, sessionID)
		return cart.Snapshot{}, ErrSnapshotNotFound
	}
	return e.snap, nil
}

func (m *MemorySnapshotStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// RedisSnapshotStore keeps snapshots as JSON under session:{id}:cart.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (r *RedisSnapshotStore) Save(ctx context.Context, sessionID string, snap cart.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSnapshotStore) Load(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return cart.Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cart.Snapshot{}, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return snap, nil
}

func (r *RedisSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("session:%s:cart", sessionID)
}
