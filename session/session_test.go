package session

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"science-ecosystem/database/dbtest"
	"science-ecosystem/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type failingStore struct{ *MemoryStore }

func (failingStore) Get(context.Context, string) (Record, bool, error) {
	return Record{}, false, errors.New("connection refused")
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("create then read", func(t *testing.T) {
		m := NewManager(NewMemoryStore(), zap.NewNop())
		token, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), token)

		p, ok := m.Read(ctx, token)
		require.True(t, ok)
		assert.Equal(t, "0000-0002-1825-0097", p.ORCID)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		m := NewManager(NewMemoryStore(), zap.NewNop())
		a, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)
		b, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("expired session is absent and removed", func(t *testing.T) {
		c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := NewMemoryStore()
		m := NewManager(store, zap.NewNop(), WithClock(c.now), WithTTL(time.Hour))

		token, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)
		c.advance(2 * time.Hour)

		_, ok := m.Read(ctx, token)
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("destroy then read", func(t *testing.T) {
		m := NewManager(NewMemoryStore(), zap.NewNop())
		token, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)

		require.NoError(t, m.Destroy(ctx, token))
		_, ok := m.Read(ctx, token)
		assert.False(t, ok)
		assert.NoError(t, m.Destroy(ctx, token))
	})

	t.Run("unknown and empty tokens are absent", func(t *testing.T) {
		m := NewManager(NewMemoryStore(), zap.NewNop())
		_, ok := m.Read(ctx, "deadbeef")
		assert.False(t, ok)
		_, ok = m.Read(ctx, "")
		assert.False(t, ok)
	})

	t.Run("store failure reads as signed out", func(t *testing.T) {
		store := &failingStore{MemoryStore: NewMemoryStore()}
		m := NewManager(store, zap.NewNop())
		token, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)

		_, ok := m.Read(ctx, token)
		assert.False(t, ok)
	})

	t.Run("sweep removes only expired", func(t *testing.T) {
		c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := NewMemoryStore()
		m := NewManager(store, zap.NewNop(), WithClock(c.now))

		_, err := m.CreateWithTTL(ctx, Payload{State: "s"}, 10*time.Minute)
		require.NoError(t, err)
		keep, err := m.Create(ctx, Payload{ORCID: "0000-0002-1825-0097"})
		require.NoError(t, err)
		c.advance(time.Hour)

		n, err := m.Sweep(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		_, ok := m.Read(ctx, keep)
		assert.True(t, ok)
	})
}

func TestGormStore(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	store := NewGormStore(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, Record{
		Token:     "live",
		Payload:   Payload{State: "abc", Verifier: "xyz"},
		ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, store.Save(ctx, Record{
		Token:     "old",
		Payload:   Payload{ORCID: "0000-0002-1825-0097"},
		ExpiresAt: now.Add(-time.Hour),
	}))

	rec, ok, err := store.Get(ctx, "live")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Payload{State: "abc", Verifier: "xyz"}, rec.Payload)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), rec.ExpiresAt.UnixMilli())

	// saving the same token again overwrites it
	require.NoError(t, store.Save(ctx, Record{Token: "live", Payload: Payload{ORCID: "0000-0002-1825-0097"}, ExpiresAt: now.Add(2 * time.Hour)}))
	rec, _, err = store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "0000-0002-1825-0097", rec.Payload.ORCID)
	assert.Empty(t, rec.Payload.State)

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok, err = store.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, "live"))
	require.NoError(t, store.Delete(ctx, "live"))

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormStore_GetMissing(t *testing.T) {
	store := NewGormStore(dbtest.Open(t))
	_, ok, err := store.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}
