// Package store is the persistence boundary for user records.
package store

import (
	"context"
	"errors"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for a wallet address.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when a concurrent insert created the same wallet first.
	ErrConflict = errors.New("user with this wallet address already exists")
)

// UserStore is CRUD over the users table. Every method is a single atomic
// statement; nothing spans more than one row.
type UserStore interface {
	GetByWallet(ctx context.Context, address string) (models.UserRecord, error)
	Create(ctx context.Context, address string) (models.UserRecord, error)
	UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListed(ctx context.Context, address string, listed bool) error
	ListListed(ctx context.Context) ([]models.UserRecord, error)
}
