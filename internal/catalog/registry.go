// Package catalog holds the registry of categories the syncer maintains.
package catalog

import (
	"fmt"

	"media_catalog/internal/domain"
)

const (
	PopularMovies  = "Popular Movies"
	PopularTV      = "Popular TV"
	TopRatedMovies = "Top Rated Movies"
	TopRatedTV     = "Top Rated TV"
	TrendingMovies = "Trending Movies"
	TrendingTV     = "Trending TV"
)

type Registry struct {
	categories []domain.Category
	byLabel    map[string]int
}

// New builds a registry, rejecting duplicate labels and malformed entries.
func New(categories []domain.Category) (*Registry, error) {
	r := &Registry{byLabel: make(map[string]int, len(categories))}
	for _, c := range categories {
		if c.Label == "" {
			return nil, fmt.Errorf("category with endpoint %s has no label", c.Endpoint)
		}
		if _, dup := r.byLabel[c.Label]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.Label)
		}
		if c.Pages < 1 {
			return nil, fmt.Errorf("category %q: pages must be positive", c.Label)
		}
		if !c.MediaType.Valid() {
			return nil, fmt.Errorf("category %q: unknown media type %q", c.Label, c.MediaType)
		}
		if c.Endpoint.MediaType == "" {
			c.Endpoint.MediaType = c.MediaType
		}
		if c.Class == "" {
			c.Class = domain.ClassStatic
		}
		r.byLabel[c.Label] = len(r.categories)
		r.categories = append(r.categories, c)
	}
	return r, nil
}

// Default returns the built-in registry used when the config lists no categories.
func Default() *Registry {
	r, err := New(DefaultCategories())
	if err != nil {
		panic(err)
	}
	return r
}

func DefaultCategories() []domain.Category {
	list := func(label string, kind domain.EndpointKind, mt domain.MediaType, pages int, class domain.TTLClass) domain.Category {
		return domain.Category{
			Label:     label,
			Endpoint:  domain.Endpoint{Kind: kind, MediaType: mt},
			Pages:     pages,
			MediaType: mt,
			Class:     class,
		}
	}
	genre := func(label string, mt domain.MediaType, genreID int64) domain.Category {
		return domain.Category{
			Label:     label,
			Endpoint:  domain.Endpoint{Kind: domain.EndpointDiscover, MediaType: mt, GenreID: genreID},
			Pages:     3,
			MediaType: mt,
			Class:     domain.ClassStatic,
		}
	}

	return []domain.Category{
		list(PopularMovies, domain.EndpointPopular, domain.MediaTypeMovie, 5, domain.ClassDaily),
		list(TopRatedMovies, domain.EndpointTopRated, domain.MediaTypeMovie, 5, domain.ClassWeekly),
		list(TrendingMovies, domain.EndpointTrending, domain.MediaTypeMovie, 3, domain.ClassDaily),
		genre("Action Movies", domain.MediaTypeMovie, 28),
		genre("Comedy Movies", domain.MediaTypeMovie, 35),
		genre("Drama Movies", domain.MediaTypeMovie, 18),
		genre("Horror Movies", domain.MediaTypeMovie, 27),
		genre("Sci-Fi Movies", domain.MediaTypeMovie, 878),
		genre("Animation Movies", domain.MediaTypeMovie, 16),

		list(PopularTV, domain.EndpointPopular, domain.MediaTypeTV, 5, domain.ClassDaily),
		list(TopRatedTV, domain.EndpointTopRated, domain.MediaTypeTV, 5, domain.ClassWeekly),
		list(TrendingTV, domain.EndpointTrending, domain.MediaTypeTV, 3, domain.ClassDaily),
		genre("Action TV", domain.MediaTypeTV, 10759),
		genre("Comedy TV", domain.MediaTypeTV, 35),
		genre("Drama TV", domain.MediaTypeTV, 18),
		genre("Sci-Fi TV", domain.MediaTypeTV, 10765),
		genre("Crime TV", domain.MediaTypeTV, 80),
	}
}

// All returns categories in registration order.
func (r *Registry) All() []domain.Category {
	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out
}

func (r *Registry) Lookup(label string) (domain.Category, bool) {
	i, ok := r.byLabel[label]
	if !ok {
		return domain.Category{}, false
	}
	return r.categories[i], true
}

func (r *Registry) ByClass(class domain.TTLClass) []domain.Category {
	var out []domain.Category
	for _, c := range r.categories {
		if c.Class == class {
			out = append(out, c)
		}
	}
	return out
}

// PopularFor returns the label of the first popular-list category for the
// media type, used as the similarity fallback.
func (r *Registry) PopularFor(mt domain.MediaType) (string, bool) {
	for _, c := range r.categories {
		if c.MediaType == mt && c.Endpoint.Kind == domain.EndpointPopular {
			return c.Label, true
		}
	}
	return "", false
}

// PopularFallback maps each media type that has a popular-list category to
// that category's label.
func (r *Registry) PopularFallback() map[domain.MediaType]string {
	out := make(map[domain.MediaType]string)
	for _, mt := range []domain.MediaType{domain.MediaTypeMovie, domain.MediaTypeTV} {
		if label, ok := r.PopularFor(mt); ok {
			out[mt] = label
		}
	}
	return out
}
