package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/handlers"
	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/tmdb"
)

// fakeHasher keeps handler tests fast; production wiring uses bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hash:" + pw, nil }
func (fakeHasher) Verify(hash, pw string) bool    { return hash == "hash:"+pw }

// stubGateway serves canned metadata and can be told to fail per item or
// for the genre catalog.
type stubGateway struct {
	media      map[int64]*tmdb.Media
	failMedia  map[int64]bool
	genres     *tmdb.GenreCatalog
	genresErr  error
	genreCalls int
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		media:     map[int64]*tmdb.Media{},
		failMedia: map[int64]bool{},
		genres: &tmdb.GenreCatalog{
			Movies: []tmdb.Genre{{ID: 28, Name: "Action"}},
			TV:     []tmdb.Genre{{ID: 16, Name: "Animation"}},
		},
	}
}

func (s *stubGateway) GetMedia(_ context.Context, kind string, id int64) (*tmdb.Media, error) {
	if s.failMedia[id] {
		return nil, fmt.Errorf("tmdb status 500")
	}
	if m, ok := s.media[id]; ok {
		return m, nil
	}
	return &tmdb.Media{ID: id, Kind: kind, Title: fmt.Sprintf("Title %d", id), Genres: []tmdb.Genre{}}, nil
}

func (s *stubGateway) Search(_ context.Context, kind, query string, page int) (*tmdb.SearchResult, error) {
	return &tmdb.SearchResult{Page: page, Results: []tmdb.Media{{ID: 1, Kind: kind, Title: query}}}, nil
}

func (s *stubGateway) Genres(_ context.Context) (*tmdb.GenreCatalog, error) {
	s.genreCalls++
	if s.genresErr != nil {
		return nil, s.genresErr
	}
	return s.genres, nil
}

// env is one fully wired API instance on a memory store, routed exactly as
// cmd/api wires production.
type env struct {
	store    *store.Memory
	gateway  *stubGateway
	sessions *auth.Sessions
	catalog  *handlers.CatalogHandler
	router   chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	mem := store.NewMemory()
	gw := newStubGateway()
	sessions := auth.NewSessions("test-secret", "watchlisty", time.Hour)

	authHandler := handlers.NewAuthHandler(mem, sessions, fakeHasher{}, log)
	authHandler.CookieSecure = false
	listsHandler := handlers.NewListsHandler(mem, gw, log)
	reviewsHandler := handlers.NewReviewsHandler(mem, log)
	usersHandler := handlers.NewUsersHandler(mem, log)
	catalogHandler := handlers.NewCatalogHandler(gw, log)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Route("/auth", authHandler.Routes)
			r.Get("/genres", catalogHandler.Genres)
			r.Get("/search", catalogHandler.Search)
			r.Get("/media/{mediaId}/reviews", reviewsHandler.ForItem)
		})
		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			r.Get("/me", usersHandler.Me)
			r.Route("/lists", listsHandler.Routes)
			r.Route("/reviews", reviewsHandler.Routes)
			r.Route("/users", usersHandler.Routes)
		})
	})

	return &env{store: mem, gateway: gw, sessions: sessions, catalog: catalogHandler, router: r}
}

// addUser registers a user straight into the store and returns it.
func (e *env) addUser(t *testing.T, pseudo, email string) *models.User {
	t.Helper()
	u := &models.User{Pseudo: pseudo, Email: email, PasswordHash: "hash:password123", Avatar: "/avatars/" + pseudo + ".png"}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", pseudo, err)
	}
	return u
}

func (e *env) addUserWithLikes(t *testing.T, pseudo, email string, likes int) *models.User {
	t.Helper()
	u := &models.User{Pseudo: pseudo, Email: email, PasswordHash: "hash:password123", Likes: likes}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", pseudo, err)
	}
	return u
}

func (e *env) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.sessions.Issue(auth.Identity{UserID: u.ID, Pseudo: u.Pseudo, Role: "user"}, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// do performs a request against the router. A non-empty token is sent as a
// bearer header; body is JSON-encoded when non-nil.
func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type errBody struct {
	Error struct {
		Code        string            `json:"code"`
		Message     string            `json:"message"`
		FieldErrors map[string]string `json:"fieldErrors"`
	} `json:"error"`
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errBody {
	t.Helper()
	var b errBody
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return b
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}
