package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T, max int) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(config.SessionConfig{TTL: time.Hour, MaxSessions: max}, WithClock(clock.Now))
	return store, clock
}

func TestStoreGetOrCreate(t *testing.T) {
	store, _ := newTestStore(t, 10)

	sess, created := store.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, sess.ID)

	again, created := store.GetOrCreate(sess.ID)
	assert.False(t, created)
	assert.Same(t, sess, again)

	other, created := store.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, sess.ID, other.ID)
	assert.Equal(t, 2, store.Len())
}

func TestStoreExpiry(t *testing.T) {
	store, clock := newTestStore(t, 10)

	idle := store.Create()
	active := store.Create()

	clock.Advance(40 * time.Minute)
	_, ok := store.Get(active.ID)
	require.True(t, ok)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, ok = store.Get(idle.ID)
	assert.False(t, ok)
	_, ok = store.Get(active.ID)
	assert.True(t, ok)

	clock.Advance(2 * time.Hour)
	_, ok = store.Get(active.ID)
	assert.False(t, ok, "expired sessions are not returned before the janitor runs")
	assert.Equal(t, 0, store.Len())
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store, clock := newTestStore(t, 2)

	first := store.Create()
	clock.Advance(time.Minute)
	second := store.Create()
	clock.Advance(time.Minute)
	_, _ = store.Get(first.ID)
	clock.Advance(time.Minute)

	third := store.Create()
	assert.Equal(t, 2, store.Len())

	_, ok := store.Get(second.ID)
	assert.False(t, ok)
	_, ok = store.Get(first.ID)
	assert.True(t, ok)
	_, ok = store.Get(third.ID)
	assert.True(t, ok)
}

func TestStoreStartStop(t *testing.T) {
	store := NewStore(config.SessionConfig{TTL: time.Millisecond, CleanupInterval: 5 * time.Millisecond})
	store.Start()
	defer store.Stop()

	store.Create()
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	store.Stop() // idempotent
}

func TestSessionLifecycle(t *testing.T) {
	sess := newSession("id", time.Now())

	_, err := sess.Data()
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.ErrorIs(t, sess.Reset(), ErrNoDataset)

	ds := dataset.MustNew(dataset.NewNumeric("x", []float64{1, 2, 3, 100}))
	sess.Load(ds, "sample:test")

	data, err := sess.Data()
	require.NoError(t, err)
	assert.NotSame(t, ds, data, "processed data is a copy")

	cfg := preprocess.Config{Outliers: map[string]preprocess.OutlierMethod{"x": preprocess.OutlierRemove}}
	processed, err := preprocess.Apply(data, cfg)
	require.NoError(t, err)
	sess.Apply(preprocess.Step{Name: cfg.Name(), Config: cfg}, processed)
	sess.Results.Distribution = &analysis.DistributionResult{Column: "x"}

	assert.Equal(t, 3, sess.Processed.Rows())
	assert.Equal(t, 4, sess.Original.Rows())
	assert.Len(t, sess.Steps, 1)

	require.NoError(t, sess.Reset())
	assert.Equal(t, 4, sess.Processed.Rows())
	assert.Empty(t, sess.Steps)
	assert.NotNil(t, sess.Results.Distribution, "reset keeps analysis results")

	sess.Load(ds, "other.csv")
	assert.True(t, sess.Results.Empty())
	assert.Equal(t, "other.csv", sess.Source)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	sess := newSession("abc", time.Now())
	got, ok := FromContext(WithContext(context.Background(), sess))
	require.True(t, ok)
	assert.Same(t, sess, got)
}
