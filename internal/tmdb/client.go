package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Gateway is the read-through accessor the handlers depend on; tests swap in
// a stub.
type Gateway interface {
	GetMedia(ctx context.Context, kind string, id int64) (*Media, error)
	Search(ctx context.Context, kind, query string, page int) (*SearchResult, error)
	Genres(ctx context.Context) (*GenreCatalog, error)
}

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

var _ Gateway = (*Client)(nil)

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Media is the normalized projection of a catalog item. Upstream payloads
// miss fields routinely; absent values stay at their zero value instead of
// failing the decode.
type Media struct {
	ID          int64   `json:"id"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	Genres      []Genre `json:"genres"`
}

type SearchResult struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Media `json:"results"`
}

type GenreCatalog struct {
	Movies []Genre `json:"movies"`
	TV     []Genre `json:"tv"`
}

// rawMedia covers both movie and TV payload shapes; TV uses name and
// first_air_date where movies use title and release_date.
type rawMedia struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	Genres       []Genre `json:"genres"`
}

func (r rawMedia) normalize(kind string) Media {
	m := Media{
		ID:          r.ID,
		Kind:        kind,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
		Overview:    r.Overview,
		Genres:      r.Genres,
	}
	if m.Title == "" {
		m.Title = r.Name
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = r.FirstAirDate
	}
	if m.Genres == nil {
		m.Genres = []Genre{}
	}
	return m
}

func New(apiKey, base string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// GetMedia fetches one movie or TV series by catalog ID.
func (c *Client) GetMedia(ctx context.Context, kind string, id int64) (*Media, error) {
	var raw rawMedia
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), nil, &raw); err != nil {
		return nil, err
	}
	m := raw.normalize(kind)
	return &m, nil
}

// Search queries the catalog for the given kind (movie|tv).
func (c *Client) Search(ctx context.Context, kind, query string, page int) (*SearchResult, error) {
	params := url.Values{"query": {query}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	var raw struct {
		Page         int        `json:"page"`
		TotalPages   int        `json:"total_pages"`
		TotalResults int        `json:"total_results"`
		Results      []rawMedia `json:"results"`
	}
	if err := c.get(ctx, "/search/"+kind, params, &raw); err != nil {
		return nil, err
	}
	out := &SearchResult{
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
		Results:      make([]Media, 0, len(raw.Results)),
	}
	for _, r := range raw.Results {
		out.Results = append(out.Results, r.normalize(kind))
	}
	return out, nil
}

// Genres fetches the movie and TV genre lists in one call.
func (c *Client) Genres(ctx context.Context) (*GenreCatalog, error) {
	var movie, tv struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &movie); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/genre/tv/list", nil, &tv); err != nil {
		return nil, err
	}
	cat := &GenreCatalog{Movies: movie.Genres, TV: tv.Genres}
	if cat.Movies == nil {
		cat.Movies = []Genre{}
	}
	if cat.TV == nil {
		cat.TV = []Genre{}
	}
	return cat, nil
}
