package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"media_catalog/internal/domain"
)

// Ranker orders cached items by genre overlap with a source item. It
// scans every item of the source's media type on each call.
type Ranker struct {
	items        ItemStore
	fallback     map[domain.MediaType]string
	defaultLimit int
}

// NewRanker takes the category served when a source item is unknown or
// has no genres, per media type.
func NewRanker(items ItemStore, fallback map[domain.MediaType]string, defaultLimit int) *Ranker {
	if defaultLimit < 1 {
		defaultLimit = 6
	}
	return &Ranker{
		items:        items,
		fallback:     fallback,
		defaultLimit: defaultLimit,
	}
}

func (r *Ranker) SimilarTo(ctx context.Context, mt domain.MediaType, externalID int64, limit int) ([]domain.CatalogItem, error) {
	if limit < 1 {
		limit = r.defaultLimit
	}

	source, err := r.items.FindByExternalID(ctx, mt, externalID)
	if errors.Is(err, domain.ErrItemNotFound) || (err == nil && len(source.GenreIDs) == 0) {
		return r.popular(ctx, mt, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("find source item: %w", err)
	}

	all, err := r.items.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	type candidate struct {
		item    domain.CatalogItem
		overlap int
	}
	var candidates []candidate
	for _, item := range all {
		if item.MediaType != mt || item.ExternalID == source.ExternalID {
			continue
		}
		if n := item.SharedGenres(source.GenreIDs); n > 0 {
			candidates = append(candidates, candidate{item: item, overlap: n})
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.overlap, a.overlap); c != 0 {
			return c
		}
		return cmp.Compare(b.item.Popularity, a.item.Popularity)
	})

	out := make([]domain.CatalogItem, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.item)
	}
	return out, nil
}

func (r *Ranker) popular(ctx context.Context, mt domain.MediaType, limit int) ([]domain.CatalogItem, error) {
	label, ok := r.fallback[mt]
	if !ok {
		return []domain.CatalogItem{}, nil
	}
	items, err := r.items.FindByCategory(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("find fallback category: %w", err)
	}
	slices.SortStableFunc(items, func(a, b domain.CatalogItem) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	return items[:min(limit, len(items))], nil
}
