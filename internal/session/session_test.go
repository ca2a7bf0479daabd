package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string) product.Product {
	return product.Product{
		ID:         id,
		Name:       "Producto " + id,
		PricePerKg: decimal.RequireFromString("2.50"),
		Seller:     product.Seller{ID: "seller-" + id, Name: "Finca " + id},
	}
}

// setupRedis creates a miniredis server and a snapshot store pointing at it
func setupRedis(t *testing.T) (*RedisSnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSnapshotStore(client), mr
}

// ============================================
// Session Tests
// ============================================

func TestSession_DoSerializes(t *testing.T) {
	m := NewManager(nil, time.Hour, zerolog.Nop())
	s, err := m.Create(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(st *State) error {
				st.Cart.AddItem(testProduct("1"), decimal.RequireFromString("0.5"))
				return nil
			})
		}()
	}
	wg.Wait()

	_ = s.Do(func(st *State) error {
		item, ok := st.Cart.Item("1")
		require.True(t, ok)
		assert.Equal(t, "25", item.Kg.String())
		return nil
	})
}

func TestSession_DoReturnsError(t *testing.T) {
	s := newSession("s", cart.NewStore())
	boom := errors.New("boom")

	assert.ErrorIs(t, s.Do(func(*State) error { return boom }), boom)
}

func TestSession_DoTouches(t *testing.T) {
	s := newSession("s", cart.NewStore())
	s.lastSeen.Store(time.Now().Add(-time.Hour).UnixNano())

	_ = s.Do(func(*State) error { return nil })

	assert.WithinDuration(t, time.Now(), s.LastSeen(), time.Second)
}

// ============================================
// Manager Tests
// ============================================

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(nil, time.Hour, zerolog.Nop())
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(nil, time.Hour, zerolog.Nop())

	_, err := m.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(nil, time.Hour, zerolog.Nop())
	ctx := context.Background()
	s, _ := m.Create(ctx)

	require.NoError(t, m.Delete(ctx, s.ID))

	assert.Equal(t, 0, m.Len())
	_, err := m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(nil, time.Minute, zerolog.Nop())
	ctx := context.Background()
	idle, _ := m.Create(ctx)
	active, _ := m.Create(ctx)
	idle.lastSeen.Store(time.Now().Add(-2 * time.Minute).UnixNano())

	removed := m.Sweep(time.Now())

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, m.Len())
	got, err := m.Get(ctx, active.ID)
	require.NoError(t, err)
	assert.Same(t, active, got)
}

func TestManager_RestoresFromSharedSnapshots(t *testing.T) {
	snapshots, _ := setupRedis(t)
	ctx := context.Background()
	replicaA := NewManager(snapshots, time.Hour, zerolog.Nop())
	replicaB := NewManager(snapshots, time.Hour, zerolog.Nop())

	s, err := replicaA.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(st *State) error {
		st.Cart.AddItem(testProduct("3"), decimal.RequireFromString("2"))
		return nil
	}))
	require.NoError(t, replicaA.Save(ctx, s))

	restored, err := replicaB.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.NotSame(t, s, restored)
	_ = restored.Do(func(st *State) error {
		assert.Equal(t, 1, st.Cart.LineCount())
		assert.True(t, st.Cart.CartOpen())
		assert.Nil(t, st.Payment)
		return nil
	})

	again, err := replicaB.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, restored, again)
}

func TestManager_RestoreClosesPaymentDialog(t *testing.T) {
	snapshots, _ := setupRedis(t)
	ctx := context.Background()
	replicaA := NewManager(snapshots, time.Hour, zerolog.Nop())
	replicaB := NewManager(snapshots, time.Hour, zerolog.Nop())

	s, err := replicaA.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(st *State) error {
		st.Cart.AddItem(testProduct("1"), decimal.RequireFromString("1"))
		st.Cart.Checkout()
		return nil
	}))
	require.NoError(t, replicaA.Save(ctx, s))

	snap, err := snapshots.Load(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, snap.PaymentOpen)

	restored, err := replicaB.Get(ctx, s.ID)
	require.NoError(t, err)
	_ = restored.Do(func(st *State) error {
		assert.Nil(t, st.Payment)
		assert.False(t, st.Cart.PaymentOpen())
		assert.Equal(t, 1, st.Cart.LineCount())
		return nil
	})
}

// ============================================
// Snapshot Store Tests
// ============================================

func TestRedisSnapshotStore_SaveLoad(t *testing.T) {
	snapshots, mr := setupRedis(t)
	ctx := context.Background()

	store := cart.NewStore()
	store.AddItem(testProduct("1"), decimal.RequireFromString("1.5"))
	require.NoError(t, snapshots.Save(ctx, "abc", store.Snapshot(), 10*time.Minute))

	assert.True(t, mr.Exists("session:abc:cart"))
	assert.Equal(t, 10*time.Minute, mr.TTL("session:abc:cart"))

	snap, err := snapshots.Load(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "1.5", snap.Items[0].Kg.String())
}

func TestRedisSnapshotStore_Expires(t *testing.T) {
	snapshots, mr := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, snapshots.Save(ctx, "abc", cart.NewStore().Snapshot(), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := snapshots.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisSnapshotStore_InvalidJSON(t *testing.T) {
	snapshots, mr := setupRedis(t)
	require.NoError(t, mr.Set("session:abc:cart", "{not json"))

	_, err := snapshots.Load(context.Background(), "abc")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisSnapshotStore_Delete(t *testing.T) {
	snapshots, mr := setupRedis(t)
	ctx := context.Background()
	data, _ := json.Marshal(cart.Snapshot{})
	require.NoError(t, mr.Set("session:abc:cart", string(data)))

	require.NoError(t, snapshots.Delete(ctx, "abc"))

	assert.False(t, mr.Exists("session:abc:cart"))
}

func TestRedisSnapshotStore_ServerDown(t *testing.T) {
	snapshots, mr := setupRedis(t)
	mr.Close()

	_, err := snapshots.Load(context.Background(), "abc")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemorySnapshotStore(t *testing.T) {
	snapshots := NewMemorySnapshotStore()
	ctx := context.Background()

	require.NoError(t, snapshots.Save(ctx, "live", cart.Snapshot{CartOpen: true}, time.Hour))
	require.NoError(t, snapshots.Save(ctx, "dead", cart.Snapshot{}, -time.Second))

	snap, err := snapshots.Load(ctx, "live")
	require.NoError(t, err)
	assert.True(t, snap.CartOpen)

	_, err = snapshots.Load(ctx, "dead")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, snapshots.Delete(ctx, "live"))
	_, err = snapshots.Load(ctx, "live")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
