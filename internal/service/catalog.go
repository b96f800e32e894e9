package service

import (
	"context"
	"log/slog"

	"media_catalog/internal/domain"
)

const maxCastMembers = 10

// Catalog is the read side consumed by the query layer. Reads may land in
// a refresh window and return partial categories.
type Catalog struct {
	items    ItemStore
	provider Provider
	ranker   *Ranker
	images   ImageConfig
	logger   *slog.Logger
}

func NewCatalog(items ItemStore, provider Provider, ranker *Ranker, images ImageConfig, logger *slog.Logger) *Catalog {
	return &Catalog{
		items:    items,
		provider: provider,
		ranker:   ranker,
		images:   images,
		logger:   logger.With("component", "catalog"),
	}
}

// Browse lists a category. Membership is not guaranteed to be exhaustive.
func (c *Catalog) Browse(ctx context.Context, label string) ([]domain.CatalogItem, error) {
	return c.items.FindByCategory(ctx, label)
}

func (c *Catalog) Lookup(ctx context.Context, mt domain.MediaType, externalID int64) (*domain.CatalogItem, error) {
	return c.items.FindByExternalID(ctx, mt, externalID)
}

func (c *Catalog) Similar(ctx context.Context, mt domain.MediaType, externalID int64, limit int) ([]domain.CatalogItem, error) {
	return c.ranker.SimilarTo(ctx, mt, externalID, limit)
}

// Cast returns up to ten billed cast members. Provider failures yield an
// empty list.
func (c *Catalog) Cast(ctx context.Context, mt domain.MediaType, externalID int64) []domain.CastMember {
	cast, err := c.provider.Credits(ctx, mt, externalID)
	if err != nil {
		c.logger.Error("credits lookup failed", "media_type", mt, "external_id", externalID, "error", err)
		return []domain.CastMember{}
	}
	if len(cast) > maxCastMembers {
		cast = cast[:maxCastMembers]
	}
	for i := range cast {
		cast[i].ProfileURL = c.images.url(c.images.ProfileSize, cast[i].ProfilePath)
	}
	return cast
}

// Search asks the provider directly. Results are not cached and carry no
// trailer or category.
func (c *Catalog) Search(ctx context.Context, mt domain.MediaType, query string) ([]domain.CatalogItem, error) {
	page, err := c.provider.Search(ctx, mt, query, 1)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CatalogItem, 0, len(page.Records))
	for _, rec := range page.Records {
		items = append(items, itemFromRecord(rec, mt, c.images))
	}
	return items, nil
}
