package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/httpx"
	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/tmdb"
	"github.com/Mart1n-S/WatchListy-sub001/internal/validate"
)

type ListsHandler struct {
	Store store.ListStore
	Meta  tmdb.Gateway
	Log   *zap.Logger
}

func NewListsHandler(s store.ListStore, meta tmdb.Gateway, log *zap.Logger) *ListsHandler {
	return &ListsHandler{Store: s, Meta: meta, Log: log}
}

// Routes is mounted under /lists behind the session middleware.
func (h *ListsHandler) Routes(r chi.Router) {
	r.Put("/", h.upsert)
	r.Delete("/{kind}/{mediaId}", h.remove)
	r.Get("/", h.listByStatus)
}

// enrichedEntry pairs a stored entry with its catalog metadata. Media stays
// at placeholder values when the upstream lookup fails for that one item.
type enrichedEntry struct {
	models.ListEntry
	Media tmdb.Media `json:"media"`
}

func (h *ListsHandler) upsert(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	type bodyT struct {
		MediaID int64  `json:"mediaId" validate:"required,gt=0"`
		Kind    string `json:"kind" validate:"required,oneof=movie tv"`
		Status  string `json:"status" validate:"required,oneof=watchlist watching completed"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, nil))
		return
	}
	if errs := validate.Map(b); errs != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, errs))
		return
	}

	entry := &models.ListEntry{UserID: id.UserID, TMDBID: b.MediaID, Kind: b.Kind, Status: b.Status}
	if err := h.Store.UpsertEntry(r.Context(), entry); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusOK, entry)
}

// remove deletes by key and reports success even when nothing existed:
// the end state the caller asked for ("not on my list") holds either way.
func (h *ListsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	kind := chi.URLParam(r, "kind")
	if kind != models.KindMovie && kind != models.KindTV {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, map[string]string{"kind": "must be one of movie tv"}))
		return
	}
	mediaID, err := strconv.ParseInt(chi.URLParam(r, "mediaId"), 10, 64)
	if err != nil || mediaID <= 0 {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, map[string]string{"mediaId": "must be a positive integer"}))
		return
	}
	if err := h.Store.DeleteEntry(r.Context(), id.UserID, mediaID, kind); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}

func (h *ListsHandler) listByStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.StatusWatchlist
	}
	if status != models.StatusWatchlist && status != models.StatusWatching && status != models.StatusCompleted {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, map[string]string{"status": "must be one of watchlist watching completed"}))
		return
	}

	entries, err := h.Store.EntriesByStatus(r.Context(), id.UserID, status)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}

	out := make([]enrichedEntry, 0, len(entries))
	for _, e := range entries {
		item := enrichedEntry{ListEntry: e, Media: tmdb.Media{ID: e.TMDBID, Kind: e.Kind, Genres: []tmdb.Genre{}}}
		if m, err := h.Meta.GetMedia(r.Context(), e.Kind, e.TMDBID); err == nil {
			item.Media = *m
		} else {
			// One missing poster must not sink the whole list.
			h.Log.Warn("metadata lookup failed", zap.Int64("tmdb_id", e.TMDBID), zap.String("kind", e.Kind), zap.Error(err))
		}
		out = append(out, item)
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"entries": out, "status": status})
}
