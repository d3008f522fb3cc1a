package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/httpx"
	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/validate"
)

type reviewStore interface {
	store.ReviewStore
	store.UserStore
}

type ReviewsHandler struct {
	Store reviewStore
	Log   *zap.Logger
}

func NewReviewsHandler(s reviewStore, log *zap.Logger) *ReviewsHandler {
	return &ReviewsHandler{Store: s, Log: log}
}

// Routes is mounted under /reviews behind the session middleware. The
// public per-item listing lives under /media and is mounted separately.
func (h *ReviewsHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{mediaId}/mine", h.mine)
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	type bodyT struct {
		MediaID int64  `json:"movieId" validate:"required,gt=0"`
		Rating  int    `json:"rating" validate:"required,gte=1,lte=10"`
		Comment string `json:"comment" validate:"required,min=1,max=1000"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, nil))
		return
	}
	// Tags are stripped before the length check so "<b>hi</b>" counts as 2
	// characters, not 9.
	b.Comment = validate.SanitizeComment(b.Comment)
	if errs := validate.Map(b); errs != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, errs))
		return
	}

	// Snapshot the author's display fields now; reviews keep the pseudo and
	// avatar the author had when writing.
	u, err := h.Store.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.Unauthorized(apperr.CodeUnauthorized))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}

	rv := &models.Review{
		TMDBID:  b.MediaID,
		UserID:  u.ID,
		Pseudo:  u.Pseudo,
		Avatar:  u.Avatar,
		Rating:  b.Rating,
		Comment: b.Comment,
	}
	if err := h.Store.CreateReview(r.Context(), rv); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			httpx.Error(w, h.Log, apperr.Conflict(apperr.CodeReviewExists))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, rv)
}

// mine returns the caller's review for the item, or a literal null when
// there is none; not having reviewed something is an expected state.
func (h *ReviewsHandler) mine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	mediaID, err := strconv.ParseInt(chi.URLParam(r, "mediaId"), 10, 64)
	if err != nil || mediaID <= 0 {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, map[string]string{"mediaId": "must be a positive integer"}))
		return
	}
	rv, err := h.Store.MyReview(r.Context(), id.UserID, mediaID)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rv)
}

// ForItem is the public listing of all reviews for one media item.
func (h *ReviewsHandler) ForItem(w http.ResponseWriter, r *http.Request) {
	mediaID, err := strconv.ParseInt(chi.URLParam(r, "mediaId"), 10, 64)
	if err != nil || mediaID <= 0 {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, map[string]string{"mediaId": "must be a positive integer"}))
		return
	}
	reviews, err := h.Store.ReviewsForItem(r.Context(), mediaID)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"reviews": reviews})
}
