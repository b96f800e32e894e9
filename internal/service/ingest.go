package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"media_catalog/internal/domain"
	"media_catalog/internal/metrics"
)

// IngestService pages through one provider endpoint and writes new items
// into the store. Pages are fetched strictly in order; the provider
// client paces the calls.
type IngestService struct {
	provider     Provider
	items        ItemStore
	txManager    TransactionManager
	materializer *Materializer
	publisher    Publisher
	clock        clockwork.Clock
	logger       *slog.Logger
}

func NewIngestService(
	provider Provider,
	items ItemStore,
	txManager TransactionManager,
	materializer *Materializer,
	publisher Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		provider:     provider,
		items:        items,
		txManager:    txManager,
		materializer: materializer,
		publisher:    publisher,
		clock:        clock,
		logger:       logger.With("component", "ingest"),
	}
}

// IngestCategory runs the fetch loop for one category. Page and record
// failures are counted in the returned stats; only configuration errors
// are returned.
func (s *IngestService) IngestCategory(ctx context.Context, cat domain.Category) (*domain.IngestStats, error) {
	startTime := s.clock.Now()
	logger := s.logger.With("category", cat.Label, "endpoint", cat.Endpoint.String())
	logger.Info("starting ingestion", "pages", cat.Pages)

	stats := &domain.IngestStats{Category: cat.Label}

	for page := 1; page <= cat.Pages; page++ {
		stats.Pages++

		result, err := s.provider.FetchPage(ctx, cat.Endpoint, page)
		if err != nil {
			if domain.IsConfigurationError(err) {
				stats.Duration = s.clock.Since(startTime)
				return stats, fmt.Errorf("ingest %q: %w", cat.Label, err)
			}
			stats.FailedPages++
			metrics.RecordPageFailure(cat.Label)
			logger.Warn("page fetch failed, skipping",
				"page", page,
				"error", err,
			)
			continue
		}

		stats.Fetched += len(result.Records)
		for i := range result.Records {
			s.ingestRecord(ctx, cat, &result.Records[i], stats)
		}

		logger.Debug("page processed",
			"page", page,
			"records", len(result.Records),
			"added", stats.Added,
		)

		if result.TotalPages > 0 && page >= result.TotalPages {
			logger.Debug("provider reported last page", "total_pages", result.TotalPages)
			break
		}
	}

	stats.Duration = s.clock.Since(startTime)

	logger.Info("ingestion completed",
		"added", stats.Added,
		"merged", stats.Merged,
		"duplicates", stats.Duplicates,
		"malformed", stats.Malformed,
		"errors", stats.Errors,
		"failed_pages", stats.FailedPages,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *IngestService) ingestRecord(ctx context.Context, cat domain.Category, rec *domain.RawRecord, stats *domain.IngestStats) {
	if rec.PosterPath == "" {
		stats.Malformed++
		metrics.RecordIngest(cat.Label, metrics.OutcomeMalformed)
		return
	}

	existing, err := s.items.FindByExternalID(ctx, cat.MediaType, rec.ExternalID)
	switch {
	case err == nil:
		s.mergeCategory(ctx, cat, existing, stats)
		return
	case !errors.Is(err, domain.ErrItemNotFound):
		stats.Errors++
		metrics.RecordIngest(cat.Label, metrics.OutcomeError)
		s.logger.Error("lookup failed", "external_id", rec.ExternalID, "error", err)
		return
	}

	item := s.materializer.Materialize(ctx, *rec, cat.Label, cat.MediaType)

	var stored domain.CatalogItem
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		stored, err = s.items.Insert(txCtx, item)
		return err
	})
	if errors.Is(err, domain.ErrDuplicateItem) {
		stats.Duplicates++
		metrics.RecordIngest(cat.Label, metrics.OutcomeDuplicate)
		return
	}
	if err != nil {
		stats.Errors++
		metrics.RecordIngest(cat.Label, metrics.OutcomeError)
		s.logger.Error("insert failed", "external_id", rec.ExternalID, "error", err)
		return
	}

	stats.Added++
	metrics.RecordIngest(cat.Label, metrics.OutcomeAdded)
	s.publish(ctx, domain.CatalogEvent{
		Action:   domain.ActionItemCreated,
		Category: cat.Label,
		Item:     &stored,
		At:       stored.CachedAt,
	})
}

// mergeCategory appends the category to an item first seen under another
// label instead of dropping the membership.
func (s *IngestService) mergeCategory(ctx context.Context, cat domain.Category, item *domain.CatalogItem, stats *domain.IngestStats) {
	if item.HasCategory(cat.Label) {
		stats.Duplicates++
		metrics.RecordIngest(cat.Label, metrics.OutcomeDuplicate)
		return
	}

	now := s.clock.Now()
	if err := s.items.AddCategory(ctx, item.ID, cat.Label, now); err != nil {
		stats.Errors++
		metrics.RecordIngest(cat.Label, metrics.OutcomeError)
		s.logger.Error("add category failed", "external_id", item.ExternalID, "error", err)
		return
	}

	item.Categories = append(item.Categories, cat.Label)
	item.CachedAt = now
	stats.Merged++
	metrics.RecordIngest(cat.Label, metrics.OutcomeMerged)
	s.publish(ctx, domain.CatalogEvent{
		Action:   domain.ActionItemCategorized,
		Category: cat.Label,
		Item:     item,
		At:       now,
	})
}

func (s *IngestService) publish(ctx context.Context, event domain.CatalogEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish failed", "action", event.Action, "error", err)
	}
}
