package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"media_catalog/internal/catalog"
	"media_catalog/internal/domain"
	"media_catalog/internal/freshness"
	"media_catalog/internal/metrics"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoPagesFetched  = errors.New("no pages fetched")
)

// RefreshService replaces category contents and keeps freshness records.
type RefreshService struct {
	ingest    *IngestService
	items     ItemStore
	genres    GenreStore
	provider  Provider
	txManager TransactionManager
	tracker   *freshness.Tracker
	registry  *catalog.Registry
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewRefreshService(
	ingest *IngestService,
	items ItemStore,
	genres GenreStore,
	provider Provider,
	txManager TransactionManager,
	tracker *freshness.Tracker,
	registry *catalog.Registry,
	publisher Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) *RefreshService {
	return &RefreshService{
		ingest:    ingest,
		items:     items,
		genres:    genres,
		provider:  provider,
		txManager: txManager,
		tracker:   tracker,
		registry:  registry,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "refresh"),
	}
}

// Bootstrap performs the initial load when the store is empty. It reports
// whether a load ran.
func (s *RefreshService) Bootstrap(ctx context.Context) (bool, error) {
	count, err := s.items.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count items: %w", err)
	}
	if count > 0 {
		s.logger.Info("catalog already populated, skipping bootstrap", "items", count)
		return false, nil
	}

	s.logger.Info("bootstrapping catalog", "categories", len(s.registry.All()))

	if err := s.LoadGenres(ctx); err != nil {
		if domain.IsConfigurationError(err) {
			return true, err
		}
		s.logger.Warn("genre load failed", "error", err)
	}

	return true, s.refreshAll(ctx, s.registry.All())
}

// LoadGenres stores the provider genre lists for both media types.
func (s *RefreshService) LoadGenres(ctx context.Context) error {
	var errs []error
	for _, mt := range []domain.MediaType{domain.MediaTypeMovie, domain.MediaTypeTV} {
		genres, err := s.provider.Genres(ctx, mt)
		if err != nil {
			if domain.IsConfigurationError(err) {
				return err
			}
			errs = append(errs, err)
			continue
		}
		if err := s.genres.UpsertBatch(ctx, genres); err != nil {
			errs = append(errs, fmt.Errorf("store %s genres: %w", mt, err))
			continue
		}

		stored, err := s.genres.ListByMediaType(ctx, mt)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s genres: %w", mt, err))
			continue
		}
		names := make([]string, 0, len(stored))
		for _, g := range stored {
			names = append(names, g.Name)
		}
		s.logger.Info("genres loaded", "media_type", mt, "count", len(stored), "names", names)
	}
	return errors.Join(errs...)
}

// RefreshClass force-refreshes every category of a TTL class.
func (s *RefreshService) RefreshClass(ctx context.Context, class domain.TTLClass) error {
	return s.refreshAll(ctx, s.registry.ByClass(class))
}

// RefreshStale refreshes categories that are stale or were left
// mid-refresh.
func (s *RefreshService) RefreshStale(ctx context.Context) error {
	var due []domain.Category
	for _, cat := range s.registry.All() {
		state, err := s.tracker.State(ctx, cat)
		if err != nil {
			return err
		}
		if state != freshness.Fresh {
			s.logger.Debug("category due", "category", cat.Label, "state", state)
			due = append(due, cat)
		}
	}
	if len(due) == 0 {
		s.logger.Info("all categories fresh")
		return nil
	}
	return s.refreshAll(ctx, due)
}

// RefreshLabel refreshes a single registered category by label.
func (s *RefreshService) RefreshLabel(ctx context.Context, label string) (*domain.IngestStats, error) {
	cat, ok := s.registry.Lookup(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return s.RefreshCategory(ctx, cat)
}

// RefreshCategory clears the category and ingests it again. Readers may
// see the category partially populated while this runs. If no page could
// be fetched the category stays marked as refreshing.
func (s *RefreshService) RefreshCategory(ctx context.Context, cat domain.Category) (*domain.IngestStats, error) {
	start := s.clock.Now()
	logger := s.logger.With("category", cat.Label)

	if err := s.tracker.Begin(ctx, cat.Label); err != nil {
		return nil, fmt.Errorf("begin refresh: %w", err)
	}

	var removed int64
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		removed, err = s.items.DeleteByCategory(txCtx, cat.Label)
		return err
	})
	if err != nil {
		metrics.RecordRefresh(cat.Label, false, s.clock.Since(start), start)
		return nil, fmt.Errorf("clear category %q: %w", cat.Label, err)
	}
	logger.Info("category cleared", "removed", removed)

	stats, err := s.ingest.IngestCategory(ctx, cat)
	if err != nil {
		metrics.RecordRefresh(cat.Label, false, s.clock.Since(start), start)
		return stats, err
	}
	if stats.FailedPages == stats.Pages {
		metrics.RecordRefresh(cat.Label, false, s.clock.Since(start), start)
		return stats, fmt.Errorf("refresh %q: %w", cat.Label, ErrNoPagesFetched)
	}

	if err := s.tracker.Complete(ctx, cat.Label, stats.Written()); err != nil {
		return stats, fmt.Errorf("complete refresh: %w", err)
	}

	now := s.clock.Now()
	metrics.RecordRefresh(cat.Label, true, now.Sub(start), now)

	if s.publisher != nil {
		event := domain.CatalogEvent{
			Action:   domain.ActionCategoryRefreshed,
			Category: cat.Label,
			Removed:  removed,
			Added:    stats.Written(),
			At:       now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Warn("publish failed", "action", event.Action, "error", err)
		}
	}

	logger.Info("category refreshed",
		"removed", removed,
		"added", stats.Added,
		"merged", stats.Merged,
		"failed_pages", stats.FailedPages,
	)
	return stats, nil
}

// refreshAll runs categories one after another. A configuration error
// stops the run; other failures are collected.
func (s *RefreshService) refreshAll(ctx context.Context, cats []domain.Category) error {
	var errs []error
	total := 0
	for _, cat := range cats {
		stats, err := s.RefreshCategory(ctx, cat)
		if stats != nil {
			total += stats.Added
		}
		if err != nil {
			if domain.IsConfigurationError(err) {
				return err
			}
			s.logger.Error("category refresh failed", "category", cat.Label, "error", err)
			errs = append(errs, err)
		}
	}
	s.logger.Info("refresh run completed", "categories", len(cats), "added", total, "failed", len(errs))
	return errors.Join(errs...)
}
