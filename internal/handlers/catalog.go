package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
	"github.com/Mart1n-S/WatchListy-sub001/internal/cache"
	"github.com/Mart1n-S/WatchListy-sub001/internal/httpx"
	"github.com/Mart1n-S/WatchListy-sub001/internal/tmdb"
	"github.com/Mart1n-S/WatchListy-sub001/internal/validate"
)

const (
	genreCacheTTL = time.Hour
	// A stale copy is kept around much longer and served when the upstream
	// is down, instead of failing the page.
	genreStaleTTL = 24 * time.Hour

	genreKey      = "genres"
	genreStaleKey = "genres:stale"
)

type genrePayload struct {
	Movies    []tmdb.Genre `json:"movies"`
	TV        []tmdb.Genre `json:"tv"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

type CatalogHandler struct {
	Meta   tmdb.Gateway
	Log    *zap.Logger
	genres *cache.TTLCache[string, genrePayload]
}

func NewCatalogHandler(meta tmdb.Gateway, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Meta: meta, Log: log, genres: cache.NewTTL[string, genrePayload](genreCacheTTL)}
}

// InvalidateGenres drops the fresh catalog copy so the next request
// refetches. The stale fallback copy is kept.
func (h *CatalogHandler) InvalidateGenres() {
	h.genres.Delete(genreKey)
}

// Genres: GET /v1/genres — the movie and TV genre catalogs, cached hourly.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.genres.Get(genreKey); ok {
		httpx.Respond(w, http.StatusOK, p)
		return
	}
	cat, err := h.Meta.Genres(r.Context())
	if err != nil {
		if stale, ok := h.genres.Get(genreStaleKey); ok {
			h.Log.Warn("serving stale genre catalog", zap.Error(err))
			httpx.Respond(w, http.StatusOK, stale)
			return
		}
		httpx.Error(w, h.Log, apperr.Upstream(apperr.CodeUpstreamFailure, err))
		return
	}
	p := genrePayload{Movies: cat.Movies, TV: cat.TV, FetchedAt: time.Now().UTC()}
	h.genres.Set(genreKey, p)
	h.genres.SetFor(genreStaleKey, p, genreStaleTTL)
	httpx.Respond(w, http.StatusOK, p)
}

// Search: GET /v1/search?q=&kind=&page= — thin proxy to the catalog search.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	type qT struct {
		Q    string `validate:"required,min=1,max=100"`
		Kind string `validate:"required,oneof=movie tv"`
		Page int    `validate:"omitempty,gte=1,lte=1000"`
	}
	q := qT{Q: r.URL.Query().Get("q"), Kind: r.URL.Query().Get("kind"), Page: 1}
	if q.Kind == "" {
		q.Kind = "movie"
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			q.Page = n
		}
	}
	if errs := validate.Map(q); errs != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, errs))
		return
	}
	res, err := h.Meta.Search(r.Context(), q.Kind, q.Q, q.Page)
	if err != nil {
		httpx.Error(w, h.Log, apperr.Upstream(apperr.CodeUpstreamFailure, err))
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}
