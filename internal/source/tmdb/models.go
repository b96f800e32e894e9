package tmdb

// ListResponse is the paginated list shape shared by popular, top rated,
// trending, discover and search endpoints.
type ListResponse struct {
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
	Results      []Result `json:"results"`
}

// Result carries both movie (title, release_date) and TV (name,
// first_air_date) field names.
type Result struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	GenreIDs         []int64 `json:"genre_ids"`
	NumberOfSeasons  *int    `json:"number_of_seasons"`
	NumberOfEpisodes *int    `json:"number_of_episodes"`
}

type VideosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

type Video struct {
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	Name        string `json:"name"`
	PublishedAt string `json:"published_at"`
}

type GenresResponse struct {
	Genres []GenreEntry `json:"genres"`
}

type GenreEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreditsResponse struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
}

type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// ErrorResponse is the body TMDB returns with non-2xx statuses.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
