package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	t.Run("unauthenticated is 401", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, http.MethodPost, "/v1/reviews", "", map[string]any{
			"movieId": 1, "rating": 8, "comment": "great",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid review snapshots author fields", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodPost, "/v1/reviews", e.token(t, u), map[string]any{
			"movieId": 42, "rating": 8, "comment": "great",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "critic", body["pseudo"])
		assert.Equal(t, "/avatars/critic.png", body["avatar"])
	})

	t.Run("duplicate submission is 409", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		tok := e.token(t, u)
		payload := map[string]any{"movieId": 42, "rating": 8, "comment": "great"}

		rec := e.do(t, http.MethodPost, "/v1/reviews", tok, payload)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = e.do(t, http.MethodPost, "/v1/reviews", tok, payload)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "REVIEW_EXISTS", decodeErr(t, rec).Error.Code)
	})

	t.Run("rating out of range is 400", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodPost, "/v1/reviews", e.token(t, u), map[string]any{
			"movieId": 1, "rating": 11, "comment": "ok",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeErr(t, rec).Error.FieldErrors, "rating")
	})

	t.Run("script tags are stripped from the comment", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodPost, "/v1/reviews", e.token(t, u), map[string]any{
			"movieId": 7, "rating": 5,
			"comment": "  watch   this <script>alert('x')</script> twice ",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "watch this alert('x') twice", body["comment"])
	})

	t.Run("comment that is only markup fails validation", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodPost, "/v1/reviews", e.token(t, u), map[string]any{
			"movieId": 7, "rating": 5, "comment": "<b></b>",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeErr(t, rec).Error.FieldErrors, "comment")
	})
}

func TestMyReview(t *testing.T) {
	t.Run("no review yet returns literal null", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodGet, "/v1/reviews/42/mine", e.token(t, u), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", string(rec.Body.Bytes()[:4]))
	})

	t.Run("existing review is returned", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		tok := e.token(t, u)
		e.do(t, http.MethodPost, "/v1/reviews", tok, map[string]any{"movieId": 42, "rating": 9, "comment": "yes"})

		rec := e.do(t, http.MethodGet, "/v1/reviews/42/mine", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON[map[string]any](t, rec)
		assert.EqualValues(t, 9, body["rating"])
	})

	t.Run("invalid id is 400", func(t *testing.T) {
		e := newEnv(t)
		u := e.addUser(t, "critic", "critic@example.com")
		rec := e.do(t, http.MethodGet, "/v1/reviews/zero/mine", e.token(t, u), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReviewsForItem(t *testing.T) {
	e := newEnv(t)
	a := e.addUser(t, "alice", "alice@example.com")
	b := e.addUser(t, "bob", "bob@example.com")
	e.do(t, http.MethodPost, "/v1/reviews", e.token(t, a), map[string]any{"movieId": 42, "rating": 9, "comment": "yes"})
	e.do(t, http.MethodPost, "/v1/reviews", e.token(t, b), map[string]any{"movieId": 42, "rating": 4, "comment": "no"})

	rec := e.do(t, http.MethodGet, "/v1/media/42/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[map[string][]map[string]any](t, rec)
	assert.Len(t, body["reviews"], 2)
}
