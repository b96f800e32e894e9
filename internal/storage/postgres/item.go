package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"media_catalog/internal/domain"
)

const selectItems = `
	SELECT
		i.id, i.media_type, i.external_id, i.title, i.overview, i.poster_url,
		i.backdrop_url, i.video_url, i.popularity, i.vote_average, i.release_year,
		i.release_date, i.genre_ids, i.cached_at, i.number_of_seasons,
		i.number_of_episodes, i.first_air_date,
		COALESCE(array_agg(c.category ORDER BY c.seq) FILTER (WHERE c.category IS NOT NULL), '{}') AS categories
	FROM catalog_items i
	LEFT JOIN catalog_item_categories c ON c.item_id = i.id`

type itemRow struct {
	ID               int64            `db:"id"`
	MediaType        domain.MediaType `db:"media_type"`
	ExternalID       int64            `db:"external_id"`
	Title            string           `db:"title"`
	Overview         string           `db:"overview"`
	PosterURL        string           `db:"poster_url"`
	BackdropURL      *string          `db:"backdrop_url"`
	VideoURL         *string          `db:"video_url"`
	Popularity       float64          `db:"popularity"`
	VoteAverage      float64          `db:"vote_average"`
	ReleaseYear      *int             `db:"release_year"`
	ReleaseDate      *string          `db:"release_date"`
	GenreIDs         pq.Int64Array    `db:"genre_ids"`
	CachedAt         time.Time        `db:"cached_at"`
	NumberOfSeasons  *int             `db:"number_of_seasons"`
	NumberOfEpisodes *int             `db:"number_of_episodes"`
	FirstAirDate     *string          `db:"first_air_date"`
	Categories       pq.StringArray   `db:"categories"`
}

func (r itemRow) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:               r.ID,
		MediaType:        r.MediaType,
		ExternalID:       r.ExternalID,
		Title:            r.Title,
		Overview:         r.Overview,
		PosterURL:        r.PosterURL,
		BackdropURL:      r.BackdropURL,
		VideoURL:         r.VideoURL,
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		ReleaseYear:      r.ReleaseYear,
		ReleaseDate:      r.ReleaseDate,
		GenreIDs:         []int64(r.GenreIDs),
		Categories:       []string(r.Categories),
		CachedAt:         r.CachedAt,
		NumberOfSeasons:  r.NumberOfSeasons,
		NumberOfEpisodes: r.NumberOfEpisodes,
		FirstAirDate:     r.FirstAirDate,
	}
}

type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) FindByExternalID(ctx context.Context, mt domain.MediaType, externalID int64) (*domain.CatalogItem, error) {
	query := selectItems + `
		WHERE i.media_type = $1 AND i.external_id = $2
		GROUP BY i.id`

	var row itemRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, mt, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	item := row.toDomain()
	return &item, nil
}

func (s *ItemStore) FindByCategory(ctx context.Context, label string) ([]domain.CatalogItem, error) {
	query := selectItems + `
		WHERE i.id IN (SELECT item_id FROM catalog_item_categories WHERE category = $1)
		GROUP BY i.id
		ORDER BY i.id`

	return s.selectItems(ctx, query, label)
}

func (s *ItemStore) All(ctx context.Context) ([]domain.CatalogItem, error) {
	query := selectItems + `
		GROUP BY i.id
		ORDER BY i.id`

	return s.selectItems(ctx, query)
}

func (s *ItemStore) selectItems(ctx context.Context, query string, args ...any) ([]domain.CatalogItem, error) {
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, args...); err != nil {
		return nil, err
	}
	items := make([]domain.CatalogItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDomain())
	}
	return items, nil
}

// Insert stores a new item with its categories. It returns
// domain.ErrDuplicateItem when the (media type, external id) key is taken,
// which also covers concurrent writers racing on the same key.
func (s *ItemStore) Insert(ctx context.Context, item domain.CatalogItem) (domain.CatalogItem, error) {
	query := `
		INSERT INTO catalog_items (
			media_type, external_id, title, overview, poster_url, backdrop_url,
			video_url, popularity, vote_average, release_year, release_date,
			genre_ids, cached_at, number_of_seasons, number_of_episodes, first_air_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (media_type, external_id) DO NOTHING
		RETURNING id`

	exec := GetExecutor(ctx, s.db)

	genreIDs := item.GenreIDs
	if genreIDs == nil {
		genreIDs = []int64{}
	}

	var id int64
	err := exec.QueryRowxContext(ctx, query,
		item.MediaType,
		item.ExternalID,
		item.Title,
		item.Overview,
		item.PosterURL,
		item.BackdropURL,
		item.VideoURL,
		item.Popularity,
		item.VoteAverage,
		item.ReleaseYear,
		item.ReleaseDate,
		pq.Array(genreIDs),
		item.CachedAt,
		item.NumberOfSeasons,
		item.NumberOfEpisodes,
		item.FirstAirDate,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, domain.ErrDuplicateItem
	}
	if err != nil {
		return domain.CatalogItem{}, err
	}

	if len(item.Categories) > 0 {
		_, err = exec.ExecContext(ctx, `
			INSERT INTO catalog_item_categories (item_id, category)
			SELECT $1, unnest($2::text[])
			ON CONFLICT DO NOTHING`,
			id, pq.Array(item.Categories),
		)
		if err != nil {
			return domain.CatalogItem{}, err
		}
	}

	item.ID = id
	return item, nil
}

func (s *ItemStore) AddCategory(ctx context.Context, id int64, label string, at time.Time) error {
	exec := GetExecutor(ctx, s.db)

	res, err := exec.ExecContext(ctx, "UPDATE catalog_items SET cached_at = $2 WHERE id = $1", id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO catalog_item_categories (item_id, category)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		id, label,
	)
	return err
}

// DeleteByCategory removes every item carrying the label. Category rows go
// with them through ON DELETE CASCADE.
func (s *ItemStore) DeleteByCategory(ctx context.Context, label string) (int64, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `
		DELETE FROM catalog_items i
		USING catalog_item_categories c
		WHERE c.item_id = i.id AND c.category = $1`,
		label,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ItemStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &count, "SELECT COUNT(*) FROM catalog_items")
	return count, err
}
