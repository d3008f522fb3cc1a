package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", srv.URL)
}

func TestGetMediaMovie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/42", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"id":42,"title":"Dune","poster_path":"/d.png","release_date":"2021-09-15","vote_average":7.8,"overview":"sand","genres":[{"id":878,"name":"Science Fiction"}]}`))
	})

	m, err := c.GetMedia(context.Background(), "movie", 42)
	require.NoError(t, err)
	assert.Equal(t, "Dune", m.Title)
	assert.Equal(t, "movie", m.Kind)
	assert.Equal(t, 7.8, m.VoteAverage)
	require.Len(t, m.Genres, 1)
	assert.Equal(t, "Science Fiction", m.Genres[0].Name)
}

func TestGetMediaTVNormalization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/100", r.URL.Path)
		// TV payloads use name/first_air_date instead of title/release_date.
		_, _ = w.Write([]byte(`{"id":100,"name":"Severance","first_air_date":"2022-02-18"}`))
	})

	m, err := c.GetMedia(context.Background(), "tv", 100)
	require.NoError(t, err)
	assert.Equal(t, "Severance", m.Title)
	assert.Equal(t, "2022-02-18", m.ReleaseDate)
}

func TestGetMediaPartialPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7}`))
	})

	m, err := c.GetMedia(context.Background(), "movie", 7)
	require.NoError(t, err)
	assert.Empty(t, m.Title)
	assert.Empty(t, m.PosterPath)
	assert.Zero(t, m.VoteAverage)
	assert.NotNil(t, m.Genres)
	assert.Empty(t, m.Genres)
}

func TestGetMediaUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.GetMedia(context.Background(), "movie", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb status 503")
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "office", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[{"id":1,"name":"The Office"}]}`))
	})

	res, err := c.Search(context.Background(), "tv", "office", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "The Office", res.Results[0].Title)
	assert.Equal(t, "tv", res.Results[0].Kind)
}

func TestGenres(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
		case "/genre/tv/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":16,"name":"Animation"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	cat, err := c.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Movies, 1)
	require.Len(t, cat.TV, 1)
	assert.Equal(t, "Action", cat.Movies[0].Name)
	assert.Equal(t, "Animation", cat.TV[0].Name)
}
