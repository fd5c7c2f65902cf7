package handlers

import (
	"context"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

// MockUserActions
type MockUserActions struct {
	RegisterOrFetchFunc func(ctx context.Context, address string) (models.UserRecord, bool, error)
	GetProfileFunc      func(ctx context.Context, address string) (models.UserRecord, error)
	UpdateProfileFunc   func(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListingFunc      func(ctx context.Context, address string, listed bool) error
	ListListedFunc      func(ctx context.Context) ([]models.UserRecord, error)
}

func (m *MockUserActions) RegisterOrFetch(ctx context.Context, address string) (models.UserRecord, bool, error) {
	if m.RegisterOrFetchFunc != nil {
		return m.RegisterOrFetchFunc(ctx, address)
	}
	return models.UserRecord{WalletAddress: address}, true, nil
}

func (m *MockUserActions) GetProfile(ctx context.Context, address string) (models.UserRecord, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, address)
	}
	return models.UserRecord{}, store.ErrNotFound
}

func (m *MockUserActions) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, address, upd)
	}
	rec := models.UserRecord{WalletAddress: address}
	upd.Apply(&rec)
	return rec, nil
}

func (m *MockUserActions) SetListing(ctx context.Context, address string, listed bool) error {
	if m.SetListingFunc != nil {
		return m.SetListingFunc(ctx, address, listed)
	}
	return nil
}

func (m *MockUserActions) ListListed(ctx context.Context) ([]models.UserRecord, error) {
	if m.ListListedFunc != nil {
		return m.ListListedFunc(ctx)
	}
	return []models.UserRecord{}, nil
}

// MockLeaderboard
type MockLeaderboard struct {
	DeriveFunc func(ctx context.Context, period models.Period) (models.LeaderboardResponse, error)
}

func (m *MockLeaderboard) Derive(ctx context.Context, period models.Period) (models.LeaderboardResponse, error) {
	if m.DeriveFunc != nil {
		return m.DeriveFunc(ctx, period)
	}
	return models.LeaderboardResponse{Period: period}, nil
}

// MockLimiter
type MockLimiter struct {
	AllowFunc func(ctx context.Context, wallet string) (bool, error)
}

func (m *MockLimiter) Allow(ctx context.Context, wallet string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, wallet)
	}
	return true, nil
}

type MockQueue struct{ depth int }

func (m *MockQueue) QueueDepth() int { return m.depth }
