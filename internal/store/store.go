package store

import (
	"context"
	"errors"
	"time"

	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
)

// Sentinel errors translated by handlers into HTTP-level responses.
var (
	ErrDuplicate = errors.New("store: duplicate key")
	ErrNotFound  = errors.New("store: not found")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPseudo(ctx context.Context, pseudo string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	// ListUsers returns every account's public projection sorted by likes
	// descending. Ordering is a display concern, recomputed per call.
	ListUsers(ctx context.Context) ([]models.User, error)
}

type FollowStore interface {
	// Follow and Unfollow are idempotent; repeating either leaves one edge
	// or zero edges respectively.
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Following(ctx context.Context, userID string) ([]models.User, error)
	// FollowerCount scans edges on read; there is no denormalized counter.
	FollowerCount(ctx context.Context, userID string) (int64, error)
}

type ListStore interface {
	// UpsertEntry creates the entry or overwrites the status of the existing
	// one, keyed by (user, tmdb_id, kind).
	UpsertEntry(ctx context.Context, e *models.ListEntry) error
	// DeleteEntry is a no-op when the entry is absent.
	DeleteEntry(ctx context.Context, userID string, tmdbID int64, kind string) error
	EntriesByStatus(ctx context.Context, userID, status string) ([]models.ListEntry, error)
}

type ReviewStore interface {
	// CreateReview returns ErrDuplicate when the caller already reviewed the
	// item; duplicates are rejected, never overwritten.
	CreateReview(ctx context.Context, rv *models.Review) error
	// MyReview returns (nil, nil) when the caller has no review yet.
	MyReview(ctx context.Context, userID string, tmdbID int64) (*models.Review, error)
	ReviewsForItem(ctx context.Context, tmdbID int64) ([]models.Review, error)
}

type ResetStore interface {
	CreateResetToken(ctx context.Context, t *models.ResetToken) error
	// ConsumeResetToken marks the token used and returns its owner, or
	// ErrNotFound when the token is unknown, expired or already used.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (userID string, err error)
}

// Store aggregates the per-record interfaces; handlers depend on the slices
// they need, main wires one implementation for all of them.
type Store interface {
	UserStore
	FollowStore
	ListStore
	ReviewStore
	ResetStore
}
