package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
)

// Gorm is the postgres-backed store. Uniqueness invariants (pseudo, email,
// review ownership, list-entry key, follow edge) are enforced by the
// database indexes declared on the models; concurrent duplicate writers are
// resolved there, not with application locks.
type Gorm struct{ DB *gorm.DB }

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{DB: db} }

// Migrate creates the schema. Requires TranslateError on the gorm config so
// unique violations surface as gorm.ErrDuplicatedKey.
func (s *Gorm) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.ListEntry{},
		&models.Review{},
		&models.ResetToken{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}

// Users

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(u).Error)
}

func (s *Gorm) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) GetUserByPseudo(ctx context.Context, pseudo string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "pseudo = ?", pseudo).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) UpdatePassword(ctx context.Context, userID, hash string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.DB.WithContext(ctx).Order("likes DESC, created_at ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Follows

func (s *Gorm) Follow(ctx context.Context, followerID, followeeID string) error {
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}}, DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	if errors.Is(translate(err), ErrDuplicate) {
		return nil
	}
	return translate(err)
}

func (s *Gorm) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return translate(s.DB.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error)
}

func (s *Gorm) Following(ctx context.Context, userID string) ([]models.User, error) {
	var out []models.User
	err := s.DB.WithContext(ctx).
		Joins("JOIN follows f ON f.followee_id = users.id").
		Where("f.follower_id = ?", userID).
		Order("users.pseudo ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Gorm) FollowerCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&n).Error
	return n, translate(err)
}

// List entries

func (s *Gorm) UpsertEntry(ctx context.Context, e *models.ListEntry) error {
	return translate(s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tmdb_id"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]any{"status": e.Status, "updated_at": time.Now()}),
		}).
		Create(e).Error)
}

func (s *Gorm) DeleteEntry(ctx context.Context, userID string, tmdbID int64, kind string) error {
	return translate(s.DB.WithContext(ctx).
		Where("user_id = ? AND tmdb_id = ? AND kind = ?", userID, tmdbID, kind).
		Delete(&models.ListEntry{}).Error)
}

func (s *Gorm) EntriesByStatus(ctx context.Context, userID, status string) ([]models.ListEntry, error) {
	var out []models.ListEntry
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Reviews

func (s *Gorm) CreateReview(ctx context.Context, rv *models.Review) error {
	return translate(s.DB.WithContext(ctx).Create(rv).Error)
}

func (s *Gorm) MyReview(ctx context.Context, userID string, tmdbID int64) (*models.Review, error) {
	var rv models.Review
	err := s.DB.WithContext(ctx).First(&rv, "user_id = ? AND tmdb_id = ?", userID, tmdbID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (s *Gorm) ReviewsForItem(ctx context.Context, tmdbID int64) ([]models.Review, error) {
	var out []models.Review
	err := s.DB.WithContext(ctx).Where("tmdb_id = ?", tmdbID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Reset tokens

func (s *Gorm) CreateResetToken(ctx context.Context, t *models.ResetToken) error {
	return translate(s.DB.WithContext(ctx).Create(t).Error)
}

func (s *Gorm) ConsumeResetToken(ctx context.Context, token string, now time.Time) (string, error) {
	var userID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.ResetToken
		if err := tx.First(&t, "token = ?", token).Error; err != nil {
			return err
		}
		if t.UsedAt != nil || now.After(t.ExpiresAt) {
			return gorm.ErrRecordNotFound
		}
		userID = t.UserID
		return tx.Model(&t).Update("used_at", now).Error
	})
	if err != nil {
		return "", translate(err)
	}
	return userID, nil
}
