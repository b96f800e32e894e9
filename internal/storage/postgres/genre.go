package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"media_catalog/internal/domain"
)

type GenreStore struct {
	db *sqlx.DB
}

func NewGenreStore(db *sqlx.DB) *GenreStore {
	return &GenreStore{db: db}
}

func (s *GenreStore) UpsertBatch(ctx context.Context, genres []domain.Genre) error {
	if len(genres) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO genres (external_id, media_type, name) VALUES ")
	valueArgs := make([]any, 0, len(genres)*3)

	for i, g := range genres {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($")
		sb.WriteString(strconv.Itoa(i*3 + 1))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*3 + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*3 + 3))
		sb.WriteString(")")
		valueArgs = append(valueArgs, g.ExternalID, g.MediaType, g.Name)
	}
	sb.WriteString(" ON CONFLICT (media_type, external_id) DO UPDATE SET name = EXCLUDED.name")

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

func (s *GenreStore) ListByMediaType(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	query := `
		SELECT external_id, media_type, name
		FROM genres
		WHERE media_type = $1
		ORDER BY external_id`

	var genres []domain.Genre
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &genres, query, mt)
	return genres, err
}
