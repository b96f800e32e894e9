package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"media_catalog/internal/domain"
)

type FreshnessStore struct {
	db *sqlx.DB
}

func NewFreshnessStore(db *sqlx.DB) *FreshnessStore {
	return &FreshnessStore{db: db}
}

type freshnessRow struct {
	Category         string       `db:"category"`
	LastRefreshedAt  sql.NullTime `db:"last_refreshed_at"`
	RefreshStartedAt *time.Time   `db:"refresh_started_at"`
	ItemsAdded       int64        `db:"items_added"`
}

func (s *FreshnessStore) Get(ctx context.Context, category string) (*domain.CategoryFreshness, error) {
	var row freshnessRow
	query := `
		SELECT category, last_refreshed_at, refresh_started_at, items_added
		FROM category_freshness
		WHERE category = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, category)
	if errors.Is(err, sql.ErrNoRows) {
		// Never refreshed
		return &domain.CategoryFreshness{Category: category}, nil
	}
	if err != nil {
		return nil, err
	}

	f := &domain.CategoryFreshness{
		Category:         row.Category,
		RefreshStartedAt: row.RefreshStartedAt,
		ItemsAdded:       row.ItemsAdded,
	}
	if row.LastRefreshedAt.Valid {
		f.LastRefreshedAt = row.LastRefreshedAt.Time
	}
	return f, nil
}

func (s *FreshnessStore) Update(ctx context.Context, f *domain.CategoryFreshness) error {
	query := `
		INSERT INTO category_freshness (category, last_refreshed_at, refresh_started_at, items_added)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category) DO UPDATE SET
			last_refreshed_at = EXCLUDED.last_refreshed_at,
			refresh_started_at = EXCLUDED.refresh_started_at,
			items_added = EXCLUDED.items_added`

	lastRefreshed := sql.NullTime{Time: f.LastRefreshedAt, Valid: !f.LastRefreshedAt.IsZero()}

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		f.Category,
		lastRefreshed,
		f.RefreshStartedAt,
		f.ItemsAdded,
	)
	return err
}
