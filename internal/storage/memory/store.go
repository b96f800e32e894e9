// Package memory implements the catalog stores on in-process maps.
// Contents are lost on restart, so every start bootstraps.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"media_catalog/internal/domain"
)

type itemKey struct {
	mediaType  domain.MediaType
	externalID int64
}

// Store satisfies service.ItemStore, service.GenreStore,
// service.TransactionManager and freshness.Store.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	items     map[int64]*domain.CatalogItem
	byKey     map[itemKey]int64
	genres    map[itemKey]domain.Genre
	freshness map[string]domain.CategoryFreshness
}

func New() *Store {
	return &Store{
		items:     make(map[int64]*domain.CatalogItem),
		byKey:     make(map[itemKey]int64),
		genres:    make(map[itemKey]domain.Genre),
		freshness: make(map[string]domain.CategoryFreshness),
	}
}

func (s *Store) FindByExternalID(_ context.Context, mt domain.MediaType, externalID int64) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[itemKey{mt, externalID}]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	item := clone(s.items[id])
	return &item, nil
}

func (s *Store) FindByCategory(_ context.Context, label string) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CatalogItem
	for _, id := range s.sortedIDs() {
		if item := s.items[id]; item.HasCategory(label) {
			out = append(out, clone(item))
		}
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := itemKey{item.MediaType, item.ExternalID}
	if _, exists := s.byKey[key]; exists {
		return domain.CatalogItem{}, domain.ErrDuplicateItem
	}

	s.nextID++
	item.ID = s.nextID
	stored := clone(&item)
	s.items[item.ID] = &stored
	s.byKey[key] = item.ID
	return clone(&stored), nil
}

func (s *Store) AddCategory(_ context.Context, id int64, label string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if !item.HasCategory(label) {
		item.Categories = append(item.Categories, label)
	}
	item.CachedAt = at
	return nil
}

// DeleteByCategory removes every item carrying the label, including items
// that also belong to other categories. It returns the number removed.
func (s *Store) DeleteByCategory(_ context.Context, label string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, item := range s.items {
		if !item.HasCategory(label) {
			continue
		}
		n++
		delete(s.items, id)
		delete(s.byKey, itemKey{item.MediaType, item.ExternalID})
	}
	return n, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Store) All(_ context.Context) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CatalogItem, 0, len(s.items))
	for _, id := range s.sortedIDs() {
		out = append(out, clone(s.items[id]))
	}
	return out, nil
}

func (s *Store) UpsertBatch(_ context.Context, genres []domain.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range genres {
		s.genres[itemKey{g.MediaType, g.ExternalID}] = g
	}
	return nil
}

func (s *Store) ListByMediaType(_ context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Genre
	for key, g := range s.genres {
		if key.mediaType == mt {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (s *Store) Get(_ context.Context, category string) (*domain.CategoryFreshness, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.freshness[category]
	if !ok {
		return &domain.CategoryFreshness{Category: category}, nil
	}
	if f.RefreshStartedAt != nil {
		started := *f.RefreshStartedAt
		f.RefreshStartedAt = &started
	}
	return &f, nil
}

func (s *Store) Update(_ context.Context, f *domain.CategoryFreshness) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *f
	if f.RefreshStartedAt != nil {
		started := *f.RefreshStartedAt
		stored.RefreshStartedAt = &started
	}
	s.freshness[f.Category] = stored
	return nil
}

// WithTransaction runs fn directly. Each store call is atomic on its own
// and nothing is rolled back.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func clone(item *domain.CatalogItem) domain.CatalogItem {
	c := *item
	c.GenreIDs = slices.Clone(item.GenreIDs)
	c.Categories = slices.Clone(item.Categories)
	return c
}
