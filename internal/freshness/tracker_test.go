package freshness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media_catalog/internal/domain"
)

type mapStore struct {
	records map[string]domain.CategoryFreshness
	err     error
}

func (m *mapStore) Get(_ context.Context, category string) (*domain.CategoryFreshness, error) {
	if m.err != nil {
		return nil, m.err
	}
	f := m.records[category]
	f.Category = category
	return &f, nil
}

func (m *mapStore) Update(_ context.Context, f *domain.CategoryFreshness) error {
	m.records[f.Category] = *f
	return nil
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		f    domain.CategoryFreshness
		ttl  time.Duration
		want State
	}{
		{
			name: "never refreshed",
			ttl:  day,
			want: Stale,
		},
		{
			name: "one second inside ttl",
			f:    domain.CategoryFreshness{LastRefreshedAt: now.Add(-day + time.Second)},
			ttl:  day,
			want: Fresh,
		},
		{
			name: "exactly at ttl",
			f:    domain.CategoryFreshness{LastRefreshedAt: now.Add(-day)},
			ttl:  day,
			want: Fresh,
		},
		{
			name: "one second past ttl",
			f:    domain.CategoryFreshness{LastRefreshedAt: now.Add(-day - time.Second)},
			ttl:  day,
			want: Stale,
		},
		{
			name: "refresh in flight",
			f: domain.CategoryFreshness{
				LastRefreshedAt:  now.Add(-time.Hour),
				RefreshStartedAt: &now,
			},
			ttl:  day,
			want: Refreshing,
		},
		{
			name: "static class never expires",
			f:    domain.CategoryFreshness{LastRefreshedAt: now.Add(-365 * day)},
			ttl:  0,
			want: Fresh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(&tt.f, tt.ttl, now))
		})
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))
	store := &mapStore{records: map[string]domain.CategoryFreshness{}}
	tracker := NewTracker(store, Policy{domain.ClassDaily: 24 * time.Hour}, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cat := domain.Category{Label: "Popular Movies", Class: domain.ClassDaily}

	state, err := tracker.State(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, Stale, state)

	require.NoError(t, tracker.Begin(ctx, cat.Label))
	state, err = tracker.State(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, Refreshing, state)

	clock.Advance(time.Minute)
	require.NoError(t, tracker.Complete(ctx, cat.Label, 42))
	state, err = tracker.State(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, Fresh, state)
	assert.Equal(t, int64(42), store.records[cat.Label].ItemsAdded)

	clock.Advance(24*time.Hour - time.Second)
	state, _ = tracker.State(ctx, cat)
	assert.Equal(t, Fresh, state)

	clock.Advance(2 * time.Second)
	state, _ = tracker.State(ctx, cat)
	assert.Equal(t, Stale, state)
}

func TestTracker_StoreError(t *testing.T) {
	store := &mapStore{err: errors.New("db down")}
	tracker := NewTracker(store, Policy{}, clockwork.NewFakeClock(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	state, err := tracker.State(context.Background(), domain.Category{Label: "X"})
	assert.Error(t, err)
	assert.Equal(t, Stale, state)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "refreshing", Refreshing.String())
}
