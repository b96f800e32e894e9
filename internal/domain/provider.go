package domain

import "fmt"

type EndpointKind string

const (
	EndpointPopular  EndpointKind = "popular"
	EndpointTopRated EndpointKind = "top_rated"
	EndpointTrending EndpointKind = "trending"
	EndpointDiscover EndpointKind = "discover"
	EndpointSearch   EndpointKind = "search"
	EndpointGenres   EndpointKind = "genres"
	EndpointVideos   EndpointKind = "videos"
	EndpointCredits  EndpointKind = "credits"
)

// Endpoint is a logical provider endpoint. The client maps it onto a
// fixed URL template.
type Endpoint struct {
	Kind      EndpointKind `yaml:"kind"`
	MediaType MediaType    `yaml:"media_type"`
	GenreID   int64        `yaml:"genre_id"`
}

func (e Endpoint) String() string {
	if e.Kind == EndpointDiscover {
		return fmt.Sprintf("%s/%s?genre=%d", e.Kind, e.MediaType, e.GenreID)
	}
	return fmt.Sprintf("%s/%s", e.Kind, e.MediaType)
}

// RawRecord is a provider list entry with movie and TV field names unified.
type RawRecord struct {
	ExternalID       int64
	Title            string
	Overview         string
	PosterPath       string
	BackdropPath     string
	Popularity       float64
	VoteAverage      float64
	ReleaseDate      string
	GenreIDs         []int64
	NumberOfSeasons  *int
	NumberOfEpisodes *int
}

// Page is one page of provider results. TotalPages is zero when the
// provider did not report it.
type Page struct {
	Page       int
	TotalPages int
	Records    []RawRecord
}

type Video struct {
	Key         string
	Site        string
	Type        string
	Official    bool
	Name        string
	PublishedAt string
}
