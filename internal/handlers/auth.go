package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/httpx"
	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/validate"
)

const resetTokenTTL = time.Hour

type authStore interface {
	store.UserStore
	store.ResetStore
}

type AuthHandler struct {
	Store        authStore
	Sessions     *auth.Sessions
	Hasher       auth.PasswordHasher
	Log          *zap.Logger
	CookieSecure bool
}

func NewAuthHandler(s authStore, sessions *auth.Sessions, hasher auth.PasswordHasher, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Store: s, Sessions: sessions, Hasher: hasher, Log: log, CookieSecure: true}
}

// Routes is mounted under /auth in main.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/reset/request", h.resetRequest)
	r.Post("/reset", h.reset)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Pseudo   string `json:"pseudo" validate:"required,handle"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,password"`
		Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, nil), http.StatusUnprocessableEntity)
		return
	}
	if errs := validate.Map(b); errs != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, errs), http.StatusUnprocessableEntity)
		return
	}

	hash, err := h.Hasher.Hash(b.Password)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	u := &models.User{Pseudo: b.Pseudo, Email: b.Email, PasswordHash: hash}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Figure out which side of the uniqueness pair collided so the
			// client can highlight the right field.
			if _, lookupErr := h.Store.GetUserByEmail(r.Context(), b.Email); lookupErr == nil {
				httpx.Error(w, h.Log, apperr.Conflict(apperr.CodeEmailTaken))
			} else {
				httpx.Error(w, h.Log, apperr.Conflict(apperr.CodePseudoTaken))
			}
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, nil), http.StatusUnprocessableEntity)
		return
	}
	if errs := validate.Map(b); errs != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, errs), http.StatusUnprocessableEntity)
		return
	}

	u, err := h.Store.GetUserByEmail(r.Context(), b.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.Unauthorized(apperr.CodeInvalidCreds))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	if !h.Hasher.Verify(u.PasswordHash, b.Password) {
		httpx.Error(w, h.Log, apperr.Unauthorized(apperr.CodeInvalidCreds))
		return
	}
	if u.SuspendedAt != nil {
		httpx.Error(w, h.Log, apperr.Unauthorized("ACCOUNT_SUSPENDED"))
		return
	}

	tok, err := h.Sessions.Issue(auth.Identity{UserID: u.ID, Pseudo: u.Pseudo, Role: u.Role}, time.Now())
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tok,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.Sessions.TTL),
		Path:     "/",
	})
	httpx.Respond(w, http.StatusOK, map[string]any{"ok": true, "token": tok})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		HttpOnly: true,
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
	})
	httpx.Respond(w, http.StatusOK, map[string]any{"ok": true})
}

// resetRequest always answers 202 so the endpoint can't be used to probe
// which emails have accounts.
func (h *AuthHandler) resetRequest(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Email string `json:"email" validate:"required,email"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, nil), http.StatusUnprocessableEntity)
		return
	}
	if errs := validate.Map(b); errs != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, errs), http.StatusUnprocessableEntity)
		return
	}

	if u, err := h.Store.GetUserByEmail(r.Context(), b.Email); err == nil {
		t := &models.ResetToken{Token: uuid.NewString(), UserID: u.ID, ExpiresAt: time.Now().Add(resetTokenTTL)}
		if err := h.Store.CreateResetToken(r.Context(), t); err != nil {
			httpx.Error(w, h.Log, err)
			return
		}
		// Mail delivery is handled out-of-band; the token only shows up in
		// logs at debug level for local development.
		h.Log.Debug("reset token issued", zap.String("user_id", u.ID))
	}
	httpx.Respond(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h *AuthHandler) reset(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,password"`
		Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
	}
	var b bodyT
	if err := httpx.Decode(r, &b); err != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, nil), http.StatusUnprocessableEntity)
		return
	}
	if errs := validate.Map(b); errs != nil {
		httpx.ErrorStatus(w, h.Log, apperr.Validation(apperr.CodeValidation, errs), http.StatusUnprocessableEntity)
		return
	}

	userID, err := h.Store.ConsumeResetToken(r.Context(), b.Token, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, h.Log, apperr.Unauthorized(apperr.CodeResetTokenInvalid))
			return
		}
		httpx.Error(w, h.Log, err)
		return
	}
	hash, err := h.Hasher.Hash(b.Password)
	if err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	if err := h.Store.UpdatePassword(r.Context(), userID, hash); err != nil {
		httpx.Error(w, h.Log, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"ok": true})
}
