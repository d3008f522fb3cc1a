package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaKind discriminates movie vs TV entries. List statuses are the three
// buckets a media item can sit in for a given user.
const (
	KindMovie = "movie"
	KindTV    = "tv"

	StatusWatchlist = "watchlist"
	StatusWatching  = "watching"
	StatusCompleted = "completed"
)

type User struct {
	ID        string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Pseudo       string `gorm:"uniqueIndex" json:"pseudo"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Avatar       string `json:"avatar"`
	Role         string `gorm:"default:user" json:"role"`
	Likes        int    `gorm:"default:0" json:"likes"`

	// Genre preferences are small ID sets from the TMDB catalog.
	MovieGenres []int64 `gorm:"serializer:json" json:"movie_genres"`
	TVGenres    []int64 `gorm:"serializer:json" json:"tv_genres"`

	VerifiedAt  *time.Time `json:"verified_at"`
	SuspendedAt *time.Time `json:"suspended_at"`
}

// Follow is one directed edge of the social graph. The pair index makes
// double-follow harmless at the store level.
type Follow struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FollowerID string `gorm:"type:uuid;uniqueIndex:idx_follow_edge" json:"follower_id"`
	FolloweeID string `gorm:"type:uuid;uniqueIndex:idx_follow_edge" json:"followee_id"`
}

// ListEntry is a user's status marker for one media item. At most one entry
// exists per (user, tmdb_id, kind); status changes mutate it in place.
type ListEntry struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;uniqueIndex:idx_list_entry" json:"user_id"`
	TMDBID int64  `gorm:"uniqueIndex:idx_list_entry" json:"tmdb_id"`
	Kind   string `gorm:"uniqueIndex:idx_list_entry" json:"kind"`
	Status string `gorm:"not null" json:"status"`
}

// Review holds one rating+comment per (media item, user). Pseudo and avatar
// are snapshotted at write time and intentionally never refreshed.
type Review struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TMDBID int64  `gorm:"uniqueIndex:idx_review_owner" json:"tmdb_id"`
	UserID string `gorm:"type:uuid;uniqueIndex:idx_review_owner" json:"user_id"`

	Pseudo  string `json:"pseudo"`
	Avatar  string `json:"avatar"`
	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `json:"comment"`
}

// ResetToken is a single-use opaque credential for the password-reset flow.
type ResetToken struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"type:uuid;index" json:"-"`
	ExpiresAt time.Time `json:"-"`
	UsedAt    *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-"`
}
