package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
)

func TestListUpsert(t *testing.T) {
	t.Run("unauthenticated is 401", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, http.MethodPut, "/v1/lists", "", map[string]any{
			"mediaId": 1, "kind": "movie", "status": "watchlist",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("adding twice leaves exactly one entry", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		tok := e.token(t, u)
		payload := map[string]any{"mediaId": 10, "kind": "movie", "status": "watchlist"}

		rec := e.do(t, http.MethodPut, "/v1/lists", tok, payload)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = e.do(t, http.MethodPut, "/v1/lists", tok, payload)
		require.Equal(t, http.StatusOK, rec.Code)

		entries, err := e.store.EntriesByStatus(context.Background(), u.ID, models.StatusWatchlist)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("status change mutates the existing entry", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		tok := e.token(t, u)

		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 10, "kind": "movie", "status": "watchlist"})
		first := decodeJSON[map[string]any](t, e.do(t, http.MethodGet, "/v1/lists?status=watchlist", tok, nil))
		require.Len(t, first["entries"], 1)

		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 10, "kind": "movie", "status": "completed"})

		watchlist, err := e.store.EntriesByStatus(context.Background(), u.ID, models.StatusWatchlist)
		require.NoError(t, err)
		assert.Empty(t, watchlist)

		completed, err := e.store.EntriesByStatus(context.Background(), u.ID, models.StatusCompleted)
		require.NoError(t, err)
		assert.Len(t, completed, 1)
	})

	t.Run("bad kind is 400", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		rec := e.do(t, http.MethodPut, "/v1/lists", e.token(t, u), map[string]any{
			"mediaId": 10, "kind": "book", "status": "watchlist",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeErr(t, rec).Error.FieldErrors, "kind")
	})
}

func TestListRemove(t *testing.T) {
	t.Run("removing an absent entry still succeeds", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		rec := e.do(t, http.MethodDelete, "/v1/lists/movie/999", e.token(t, u), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("removing an existing entry deletes it", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		tok := e.token(t, u)
		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 10, "kind": "movie", "status": "watching"})

		rec := e.do(t, http.MethodDelete, "/v1/lists/movie/10", tok, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		entries, err := e.store.EntriesByStatus(context.Background(), u.ID, models.StatusWatching)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("bad media id is 400", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		rec := e.do(t, http.MethodDelete, "/v1/lists/movie/-1", e.token(t, u), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

type listResp struct {
	Entries []map[string]any `json:"entries"`
	Status  string           `json:"status"`
}

func TestListByStatus(t *testing.T) {
	t.Run("entries are enriched with catalog metadata", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		tok := e.token(t, u)
		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 10, "kind": "movie", "status": "watchlist"})

		rec := e.do(t, http.MethodGet, "/v1/lists?status=watchlist", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[listResp](t, rec)
		require.Len(t, body.Entries, 1)
		media := body.Entries[0]["media"].(map[string]any)
		assert.Equal(t, "Title 10", media["title"])
	})

	t.Run("one failing lookup degrades that item only", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		tok := e.token(t, u)
		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 10, "kind": "movie", "status": "watchlist"})
		e.do(t, http.MethodPut, "/v1/lists", tok, map[string]any{"mediaId": 11, "kind": "movie", "status": "watchlist"})
		e.gateway.failMedia[11] = true

		rec := e.do(t, http.MethodGet, "/v1/lists?status=watchlist", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[listResp](t, rec)
		require.Len(t, body.Entries, 2)

		titles := map[float64]string{}
		for _, entry := range body.Entries {
			media := entry["media"].(map[string]any)
			titles[media["id"].(float64)] = media["title"].(string)
		}
		assert.Equal(t, "Title 10", titles[10])
		assert.Equal(t, "", titles[11])
	})

	t.Run("unknown status filter is 400", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "viewer", "viewer@example.com")
		rec := e.do(t, http.MethodGet, "/v1/lists?status=paused", e.token(t, u), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
