// Package freshness decides when a category needs a full refresh. Each
// category has its own record; item timestamps are not consulted.
package freshness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"media_catalog/internal/domain"
)

type State int

const (
	Fresh State = iota
	Stale
	Refreshing
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Refreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store persists one freshness record per category. Get returns an empty
// record for categories never refreshed.
type Store interface {
	Get(ctx context.Context, category string) (*domain.CategoryFreshness, error)
	Update(ctx context.Context, f *domain.CategoryFreshness) error
}

// Policy maps a TTL class to its maximum age. A class without a positive
// TTL never goes stale once refreshed.
type Policy map[domain.TTLClass]time.Duration

type Tracker struct {
	store  Store
	policy Policy
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewTracker(store Store, policy Policy, clock clockwork.Clock, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		policy: policy,
		clock:  clock,
		logger: logger.With("component", "freshness"),
	}
}

func (t *Tracker) State(ctx context.Context, cat domain.Category) (State, error) {
	f, err := t.store.Get(ctx, cat.Label)
	if err != nil {
		return Stale, fmt.Errorf("get freshness for %q: %w", cat.Label, err)
	}
	return Evaluate(f, t.policy[cat.Class], t.clock.Now()), nil
}

// Evaluate is Stale only once the age strictly exceeds ttl.
func Evaluate(f *domain.CategoryFreshness, ttl time.Duration, now time.Time) State {
	if f.RefreshStartedAt != nil {
		return Refreshing
	}
	if f.LastRefreshedAt.IsZero() {
		return Stale
	}
	if ttl <= 0 {
		return Fresh
	}
	if now.Sub(f.LastRefreshedAt) > ttl {
		return Stale
	}
	return Fresh
}

// Begin records that a refresh of the category has started. The marker
// stays until Complete, so an interrupted refresh reads as Refreshing.
func (t *Tracker) Begin(ctx context.Context, category string) error {
	f, err := t.store.Get(ctx, category)
	if err != nil {
		return fmt.Errorf("get freshness for %q: %w", category, err)
	}
	now := t.clock.Now()
	f.Category = category
	f.RefreshStartedAt = &now
	return t.store.Update(ctx, f)
}

func (t *Tracker) Complete(ctx context.Context, category string, added int) error {
	f, err := t.store.Get(ctx, category)
	if err != nil {
		return fmt.Errorf("get freshness for %q: %w", category, err)
	}
	f.Category = category
	f.LastRefreshedAt = t.clock.Now()
	f.RefreshStartedAt = nil
	f.ItemsAdded = int64(added)
	if err := t.store.Update(ctx, f); err != nil {
		return err
	}
	t.logger.Debug("category marked fresh", "category", category, "items", added)
	return nil
}
