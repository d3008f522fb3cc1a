package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/httpx"
	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/validate"
)

type socialStore interface {
	store.UserStore
	store.FollowStore
}

type UsersHandler struct {
	Store socialStore
	Log   *zap.Logger
}

func NewUsersHandler(s socialStore, log *zap.Logger) *UsersHandler {
	return &UsersHandler{Store: s, Log: log}
}

// Routes is mounted under /users behind the session middleware.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/following", h.following)
	r.Get("/followers", h.followers)
	r.Post("/follow", h.follow)
	r.Delete("/follow/{pseudo}", h.unfollow)
}

// publicUser is the projection exposed on the community page.
type publicUser struct {
	ID        string    `json:"id"`
	Pseudo    string    `json:"pseudo"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
}

// followedUser matches the shape the profile page renders.
type followedUser struct {
	ID     string `json:"_id"`
	Pseudo string `json:"pseudo"`
	Avatar string `json:"avatar"`
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	u, err := h.Store.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.NotFound(apperr.CodeUserNotFound))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusOK, u)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser{ID: u.ID, Pseudo: u.Pseudo, Avatar: u.Avatar, CreatedAt: u.CreatedAt, Likes: u.Likes})
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"users": out})
}

func (h *UsersHandler) following(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if _, err := h.Store.GetUser(r.Context(), id.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.NotFound(apperr.CodeUserNotFound))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	users, err := h.Store.Following(r.Context(), id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	out := make([]followedUser, 0, len(users))
	for _, u := range users {
		out = append(out, followedUser{ID: u.ID, Pseudo: u.Pseudo, Avatar: u.Avatar})
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *UsersHandler) followers(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	n, err := h.Store.FollowerCount(r.Context(), id.UserID)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"count": n})
}

func (h *UsersHandler) follow(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	target, ok := h.resolveTarget(w, r, id, "")
	if !ok {
		return
	}
	if err := h.Store.Follow(r.Context(), id.UserID, target.ID); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}

func (h *UsersHandler) unfollow(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	target, ok := h.resolveTarget(w, r, id, chi.URLParam(r, "pseudo"))
	if !ok {
		return
	}
	if err := h.Store.Unfollow(r.Context(), id.UserID, target.ID); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}

// resolveTarget validates the handle (from the body for follow, from the
// path for unfollow), rejects self-references, and resolves the target
// synchronously so a dangling handle turns into a 404 up front.
func (h *UsersHandler) resolveTarget(w http.ResponseWriter, r *http.Request, caller auth.Identity, pseudo string) (*models.User, bool) {
	if pseudo == "" {
		type bodyT struct {
			Pseudo string `json:"pseudo" validate:"required,handle"`
		}
		var b bodyT
		if err := httpx.Decode(r, &b); err != nil {
			httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, nil))
			return nil, false
		}
		if errs := validate.Map(b); errs != nil {
			httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, errs))
			return nil, false
		}
		pseudo = b.Pseudo
	} else if errs := validate.Map(struct {
		Pseudo string `validate:"required,handle"`
	}{pseudo}); errs != nil {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeValidation, errs))
		return nil, false
	}

	if pseudo == caller.Pseudo {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeSelfFollow, map[string]string{"pseudo": "cannot target yourself"}))
		return nil, false
	}
	target, err := h.Store.GetUserByPseudo(r.Context(), pseudo)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.NotFound(apperr.CodeUserNotFound))
			return nil, false
		}
		httpx.Error(w, h.Log, err)
		return nil, false
	}
	if target.ID == caller.UserID {
		httpx.Error(w, h.Log, apperr.Validation(apperr.CodeSelfFollow, map[string]string{"pseudo": "cannot target yourself"}))
		return nil, false
	}
	return target, true
}
