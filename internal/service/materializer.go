package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"media_catalog/internal/domain"
)

// ImageConfig builds absolute image URLs from provider paths.
type ImageConfig struct {
	BaseURL      string
	PosterSize   string
	BackdropSize string
	ProfileSize  string
}

func (c ImageConfig) url(size, path string) *string {
	if path == "" {
		return nil
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/" + size + path
	return &u
}

// Materializer turns raw provider records into catalog items.
type Materializer struct {
	trailers *TrailerResolver
	images   ImageConfig
	clock    clockwork.Clock
}

func NewMaterializer(trailers *TrailerResolver, images ImageConfig, clock clockwork.Clock) *Materializer {
	return &Materializer{
		trailers: trailers,
		images:   images,
		clock:    clock,
	}
}

func (m *Materializer) Materialize(ctx context.Context, rec domain.RawRecord, category string, mt domain.MediaType) domain.CatalogItem {
	item := itemFromRecord(rec, mt, m.images)
	item.Categories = []string{category}
	item.CachedAt = m.clock.Now()
	item.VideoURL = m.trailers.ResolveTrailer(ctx, mt, rec.ExternalID)
	return item
}

// itemFromRecord maps the provider fields of a record. Categories, cache
// time and trailer are left to the caller.
func itemFromRecord(rec domain.RawRecord, mt domain.MediaType, images ImageConfig) domain.CatalogItem {
	item := domain.CatalogItem{
		MediaType:   mt,
		ExternalID:  rec.ExternalID,
		Title:       rec.Title,
		Overview:    rec.Overview,
		BackdropURL: images.url(images.BackdropSize, rec.BackdropPath),
		Popularity:  rec.Popularity,
		VoteAverage: rec.VoteAverage,
		ReleaseYear: ReleaseYear(rec.ReleaseDate),
		GenreIDs:    append([]int64(nil), rec.GenreIDs...),
	}
	if poster := images.url(images.PosterSize, rec.PosterPath); poster != nil {
		item.PosterURL = *poster
	}
	if rec.ReleaseDate != "" {
		date := rec.ReleaseDate
		item.ReleaseDate = &date
	}
	if mt == domain.MediaTypeTV {
		item.FirstAirDate = item.ReleaseDate
		item.NumberOfSeasons = rec.NumberOfSeasons
		item.NumberOfEpisodes = rec.NumberOfEpisodes
	}
	return item
}

// ReleaseYear parses the leading four digits of a provider date.
func ReleaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}
