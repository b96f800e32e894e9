package domain

import (
	"slices"
	"time"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// CatalogItem is one cached movie or TV show.
type CatalogItem struct {
	ID          int64     `json:"id"`
	MediaType   MediaType `json:"media_type"`
	ExternalID  int64     `json:"external_id"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	PosterURL   string    `json:"poster_url"`
	BackdropURL *string   `json:"backdrop_url,omitempty"`
	VideoURL    *string   `json:"video_url,omitempty"`
	Popularity  float64   `json:"popularity"`
	VoteAverage float64   `json:"vote_average"`
	ReleaseYear *int      `json:"release_year,omitempty"`
	ReleaseDate *string   `json:"release_date,omitempty"`
	GenreIDs    []int64   `json:"genre_ids"`
	Categories  []string  `json:"categories"`
	CachedAt    time.Time `json:"cached_at"`

	// TV only.
	NumberOfSeasons  *int    `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes *int    `json:"number_of_episodes,omitempty"`
	FirstAirDate     *string `json:"first_air_date,omitempty"`
}

func (i *CatalogItem) HasCategory(label string) bool {
	return slices.Contains(i.Categories, label)
}

// SharedGenres counts genre ids present in both sets.
func (i *CatalogItem) SharedGenres(genreIDs []int64) int {
	n := 0
	for _, g := range i.GenreIDs {
		if slices.Contains(genreIDs, g) {
			n++
		}
	}
	return n
}

type Genre struct {
	ExternalID int64     `db:"external_id"`
	MediaType  MediaType `db:"media_type"`
	Name       string    `db:"name"`
}

type CastMember struct {
	ID          int64
	Name        string
	Character   string
	ProfilePath string
	ProfileURL  *string
	Order       int
}
