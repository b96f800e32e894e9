package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"media_catalog/internal/domain"
	"media_catalog/internal/metrics"
)

const SourceName = "TMDB"

var ErrAPIKeyMissing = errors.New("TMDB API key is not configured")

// Limiter paces outbound requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Config holds TMDB client configuration.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	TrendingWindow    string
}

// Client is the external metadata client. It never retries; every failure
// is reported as a *domain.FetchError.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	trendingWindow string
	limiter        Limiter
	logger         *slog.Logger
}

type Option func(*Client)

// WithLimiter replaces the token bucket built from Config.
func WithLimiter(l Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new TMDB client.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	window := cfg.TrendingWindow
	if window == "" {
		window = "day"
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		trendingWindow: window,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger.With("source", "tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns human-readable name.
func (c *Client) Name() string {
	return SourceName
}

// FetchPage fetches one page of a list endpoint.
func (c *Client) FetchPage(ctx context.Context, ep domain.Endpoint, page int) (*domain.Page, error) {
	path, params, err := c.listPath(ep)
	if err != nil {
		return nil, err
	}

	var resp ListResponse
	if err := c.doRequest(ctx, ep.String(), page, path, params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched page",
		"endpoint", ep.String(),
		"page", page,
		"results", len(resp.Results),
		"total_pages", resp.TotalPages,
	)

	return toPage(resp), nil
}

// Search queries the provider's search endpoint.
func (c *Client) Search(ctx context.Context, mt domain.MediaType, query string, page int) (*domain.Page, error) {
	if err := checkMediaType(mt); err != nil {
		return nil, err
	}
	ep := domain.Endpoint{Kind: domain.EndpointSearch, MediaType: mt}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	var resp ListResponse
	if err := c.doRequest(ctx, ep.String(), page, "/search/"+string(mt), params, &resp); err != nil {
		return nil, err
	}
	return toPage(resp), nil
}

// Videos lists the provider's videos for one item.
func (c *Client) Videos(ctx context.Context, mt domain.MediaType, id int64) ([]domain.Video, error) {
	if err := checkMediaType(mt); err != nil {
		return nil, err
	}
	ep := domain.Endpoint{Kind: domain.EndpointVideos, MediaType: mt}
	path := fmt.Sprintf("/%s/%d/videos", mt, id)

	var resp VideosResponse
	if err := c.doRequest(ctx, ep.String(), 0, path, nil, &resp); err != nil {
		return nil, err
	}

	videos := make([]domain.Video, 0, len(resp.Results))
	for _, v := range resp.Results {
		videos = append(videos, domain.Video{
			Key:         v.Key,
			Site:        v.Site,
			Type:        v.Type,
			Official:    v.Official,
			Name:        v.Name,
			PublishedAt: v.PublishedAt,
		})
	}
	return videos, nil
}

// Genres loads the genre list for a media type.
func (c *Client) Genres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	if err := checkMediaType(mt); err != nil {
		return nil, err
	}
	ep := domain.Endpoint{Kind: domain.EndpointGenres, MediaType: mt}

	var resp GenresResponse
	if err := c.doRequest(ctx, ep.String(), 0, "/genre/"+string(mt)+"/list", nil, &resp); err != nil {
		return nil, err
	}

	genres := make([]domain.Genre, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, domain.Genre{ExternalID: g.ID, MediaType: mt, Name: g.Name})
	}
	return genres, nil
}

// Credits returns the cast in provider billing order.
func (c *Client) Credits(ctx context.Context, mt domain.MediaType, id int64) ([]domain.CastMember, error) {
	if err := checkMediaType(mt); err != nil {
		return nil, err
	}
	ep := domain.Endpoint{Kind: domain.EndpointCredits, MediaType: mt}
	path := fmt.Sprintf("/%s/%d/credits", mt, id)

	var resp CreditsResponse
	if err := c.doRequest(ctx, ep.String(), 0, path, nil, &resp); err != nil {
		return nil, err
	}

	cast := make([]domain.CastMember, 0, len(resp.Cast))
	for _, m := range resp.Cast {
		member := domain.CastMember{
			ID:        m.ID,
			Name:      m.Name,
			Character: m.Character,
			Order:     m.Order,
		}
		if m.ProfilePath != nil {
			member.ProfilePath = *m.ProfilePath
		}
		cast = append(cast, member)
	}
	return cast, nil
}

func (c *Client) listPath(ep domain.Endpoint) (string, url.Values, error) {
	if err := checkMediaType(ep.MediaType); err != nil {
		return "", nil, err
	}
	mt := string(ep.MediaType)

	switch ep.Kind {
	case domain.EndpointPopular:
		return "/" + mt + "/popular", nil, nil
	case domain.EndpointTopRated:
		return "/" + mt + "/top_rated", nil, nil
	case domain.EndpointTrending:
		return "/trending/" + mt + "/" + c.trendingWindow, nil, nil
	case domain.EndpointDiscover:
		params := url.Values{}
		if ep.GenreID > 0 {
			params.Set("with_genres", strconv.FormatInt(ep.GenreID, 10))
		}
		params.Set("sort_by", "popularity.desc")
		return "/discover/" + mt, params, nil
	default:
		return "", nil, &domain.ConfigurationError{
			Field: "endpoint",
			Err:   fmt.Errorf("%q is not a list endpoint", ep.Kind),
		}
	}
}

func (c *Client) doRequest(ctx context.Context, endpoint string, page int, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return &domain.ConfigurationError{Field: "provider.api_key", Err: ErrAPIKeyMissing}
	}

	fail := func(status int, err error) error {
		return &domain.FetchError{Endpoint: endpoint, Page: page, Status: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, fmt.Errorf("rate limiter: %w", err))
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MediaCatalog/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest(endpoint, 0, time.Since(start))
		// url.Error embeds the full URL, api_key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fail(0, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	metrics.RecordProviderRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.StatusMessage != "" {
			return fail(resp.StatusCode, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, apiErr.StatusMessage))
		}
		return fail(resp.StatusCode, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	return nil
}

func checkMediaType(mt domain.MediaType) error {
	if !mt.Valid() {
		return &domain.ConfigurationError{Field: "media_type", Err: fmt.Errorf("unknown media type %q", mt)}
	}
	return nil
}

func toPage(resp ListResponse) *domain.Page {
	page := &domain.Page{
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		Records:    make([]domain.RawRecord, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		page.Records = append(page.Records, toRecord(r))
	}
	return page
}

func toRecord(r Result) domain.RawRecord {
	rec := domain.RawRecord{
		ExternalID:       r.ID,
		Title:            r.Title,
		Overview:         r.Overview,
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		ReleaseDate:      r.ReleaseDate,
		GenreIDs:         r.GenreIDs,
		NumberOfSeasons:  r.NumberOfSeasons,
		NumberOfEpisodes: r.NumberOfEpisodes,
	}
	if rec.Title == "" {
		rec.Title = r.Name
	}
	if rec.ReleaseDate == "" {
		rec.ReleaseDate = r.FirstAirDate
	}
	if r.PosterPath != nil {
		rec.PosterPath = *r.PosterPath
	}
	if r.BackdropPath != nil {
		rec.BackdropPath = *r.BackdropPath
	}
	return rec
}
