package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
)

var (
	_ Store = (*Gorm)(nil)
	_ Store = (*Memory)(nil)
)

// Memory keeps every record in maps guarded by one mutex. It backs the
// handler tests and mirrors the uniqueness rules the postgres indexes give
// the real store.
type Memory struct {
	mu      sync.Mutex
	users   map[string]*models.User
	follows map[string]map[string]time.Time // follower -> followee -> since
	entries map[string]*models.ListEntry    // key: user|tmdb|kind
	reviews map[string]*models.Review       // key: user|tmdb
	resets  map[string]*models.ResetToken
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*models.User),
		follows: make(map[string]map[string]time.Time),
		entries: make(map[string]*models.ListEntry),
		reviews: make(map[string]*models.Review),
		resets:  make(map[string]*models.ResetToken),
	}
}

func entryKey(userID string, tmdbID int64, kind string) string {
	return userID + "|" + kind + "|" + strconv.FormatInt(tmdbID, 10)
}

func reviewKey(userID string, tmdbID int64) string {
	return userID + "|" + strconv.FormatInt(tmdbID, 10)
}

// Users

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Pseudo == u.Pseudo {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByPseudo(_ context.Context, pseudo string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Pseudo == pseudo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdatePassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Follows

func (m *Memory) Follow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.follows[followerID] == nil {
		m.follows[followerID] = make(map[string]time.Time)
	}
	if _, ok := m.follows[followerID][followeeID]; !ok {
		m.follows[followerID][followeeID] = time.Now()
	}
	return nil
}

func (m *Memory) Unfollow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.follows[followerID], followeeID)
	return nil
}

func (m *Memory) Following(_ context.Context, userID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.follows[userID]))
	for followeeID := range m.follows[userID] {
		if u, ok := m.users[followeeID]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pseudo < out[j].Pseudo })
	return out, nil
}

func (m *Memory) FollowerCount(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, followees := range m.follows {
		if _, ok := followees[userID]; ok {
			n++
		}
	}
	return n, nil
}

// List entries

func (m *Memory) UpsertEntry(_ context.Context, e *models.ListEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey(e.UserID, e.TMDBID, e.Kind)
	now := time.Now()
	if existing, ok := m.entries[key]; ok {
		existing.Status = e.Status
		existing.UpdatedAt = now
		*e = *existing
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt, e.UpdatedAt = now, now
	cp := *e
	m.entries[key] = &cp
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, userID string, tmdbID int64, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey(userID, tmdbID, kind))
	return nil
}

func (m *Memory) EntriesByStatus(_ context.Context, userID, status string) ([]models.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ListEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Status == status {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Reviews

func (m *Memory) CreateReview(_ context.Context, rv *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reviewKey(rv.UserID, rv.TMDBID)
	if _, ok := m.reviews[key]; ok {
		return ErrDuplicate
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now()
	rv.CreatedAt, rv.UpdatedAt = now, now
	cp := *rv
	m.reviews[key] = &cp
	return nil
}

func (m *Memory) MyReview(_ context.Context, userID string, tmdbID int64) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.reviews[reviewKey(userID, tmdbID)]
	if !ok {
		return nil, nil
	}
	cp := *rv
	return &cp, nil
}

func (m *Memory) ReviewsForItem(_ context.Context, tmdbID int64) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, rv := range m.reviews {
		if rv.TMDBID == tmdbID {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Reset tokens

func (m *Memory) CreateResetToken(_ context.Context, t *models.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.resets[t.Token] = &cp
	return nil
}

func (m *Memory) ConsumeResetToken(_ context.Context, token string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.resets[token]
	if !ok || t.UsedAt != nil || now.After(t.ExpiresAt) {
		return "", ErrNotFound
	}
	used := now
	t.UsedAt = &used
	return t.UserID, nil
}
