package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"media_catalog/internal/domain"
)

// Provider is the external metadata client.
type Provider interface {
	FetchPage(ctx context.Context, ep domain.Endpoint, page int) (*domain.Page, error)
	Search(ctx context.Context, mt domain.MediaType, query string, page int) (*domain.Page, error)
	Videos(ctx context.Context, mt domain.MediaType, id int64) ([]domain.Video, error)
	Genres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error)
	Credits(ctx context.Context, mt domain.MediaType, id int64) ([]domain.CastMember, error)
}

// ItemStore is the catalog cache. FindByExternalID returns
// domain.ErrItemNotFound for unknown ids and Insert returns
// domain.ErrDuplicateItem when (media type, external id) is taken.
type ItemStore interface {
	FindByExternalID(ctx context.Context, mt domain.MediaType, externalID int64) (*domain.CatalogItem, error)
	FindByCategory(ctx context.Context, label string) ([]domain.CatalogItem, error)
	Insert(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error)
	AddCategory(ctx context.Context, id int64, label string, at time.Time) error
	DeleteByCategory(ctx context.Context, label string) (int64, error)
	Count(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]domain.CatalogItem, error)
}

type GenreStore interface {
	UpsertBatch(ctx context.Context, genres []domain.Genre) error
	ListByMediaType(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.CatalogEvent) error
	Close() error
}
