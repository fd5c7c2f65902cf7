package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

var userActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pnlboard_user_actions_total",
	Help: "User record actions by action and result",
}, []string{"action", "result"})

// UserService implements the user record actions on top of a store and
// announces changes on the event sink.
type UserService struct {
	store  store.UserStore
	events EventSink
	logger *zap.SugaredLogger
}

func NewUserService(st store.UserStore, events EventSink, logger *zap.Logger) *UserService {
	if events == nil {
		events = nopEventSink{}
	}
	return &UserService{store: st, events: events, logger: logger.Sugar()}
}

// RegisterOrFetch returns the record for address, creating it on first
// sight. A Conflict from a concurrent create is absorbed by re-reading, so
// the call is idempotent. created reports whether this call inserted the row.
func (s *UserService) RegisterOrFetch(ctx context.Context, address string) (rec models.UserRecord, created bool, err error) {
	defer func() { observe("register", err) }()

	rec, err = s.store.GetByWallet(ctx, address)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.UserRecord{}, false, fmt.Errorf("get user: %w", err)
	}

	rec, err = s.store.Create(ctx, address)
	switch {
	case err == nil:
		s.logger.Infow("User registered", "wallet", address, "id", rec.ID)
		s.events.Publish(ctx, models.LeaderboardEvent{
			Type:          models.EventUserRegistered,
			WalletAddress: address,
			At:            time.Now().UTC(),
		})
		return rec, true, nil
	case errors.Is(err, store.ErrConflict):
		rec, err = s.store.GetByWallet(ctx, address)
		if err != nil {
			return models.UserRecord{}, false, fmt.Errorf("get user after conflict: %w", err)
		}
		return rec, false, nil
	default:
		return models.UserRecord{}, false, fmt.Errorf("create user: %w", err)
	}
}

func (s *UserService) GetProfile(ctx context.Context, address string) (models.UserRecord, error) {
	rec, err := s.store.GetByWallet(ctx, address)
	observe("get", err)
	return rec, err
}

func (s *UserService) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	rec, err := s.store.UpdateProfile(ctx, address, upd)
	observe("update_profile", err)
	if err != nil {
		return models.UserRecord{}, err
	}

	s.events.Publish(ctx, models.LeaderboardEvent{
		Type:          models.EventProfileUpdated,
		WalletAddress: address,
		Listed:        rec.Listed,
		At:            time.Now().UTC(),
	})
	return rec, nil
}

func (s *UserService) SetListing(ctx context.Context, address string, listed bool) error {
	err := s.store.SetListed(ctx, address, listed)
	observe("set_listing", err)
	if err != nil {
		return err
	}

	s.logger.Infow("Listing changed", "wallet", address, "listed", listed)
	s.events.Publish(ctx, models.LeaderboardEvent{
		Type:          models.EventListingChanged,
		WalletAddress: address,
		Listed:        listed,
		At:            time.Now().UTC(),
	})
	return nil
}

// ListListed returns the listed records, never nil.
func (s *UserService) ListListed(ctx context.Context) ([]models.UserRecord, error) {
	recs, err := s.store.ListListed(ctx)
	observe("list_listed", err)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.UserRecord{}
	}
	return recs, nil
}

func observe(action string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	userActions.WithLabelValues(action, result).Inc()
}
