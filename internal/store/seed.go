package store

import (
	"context"
	"errors"

	"github.com/Mart1n-S/WatchListy-sub001/internal/models"
)

// SeedDemo provisions the demo account used by local development and the
// public sandbox. Re-running against an existing account is a no-op.
func SeedDemo(ctx context.Context, s Store, passwordHash string) error {
	u := &models.User{
		Pseudo:       "demo",
		Email:        "demo@watchlisty.app",
		PasswordHash: passwordHash,
		Avatar:       "/avatars/default.png",
	}
	if err := s.CreateUser(ctx, u); err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}
	return nil
}
