package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

// ToggleListing optimistically shows the new flag, writes it, and re-reads
// the profile until the stored value agrees. Any failure puts the previous
// flag back and surfaces a notice. Success refreshes the leaderboard.
func (s *Session) ToggleListing(ctx context.Context, listed bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != Connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.listing.InFlight() {
		s.mu.Unlock()
		return ErrListingInFlight
	}
	prev := s.listed
	s.listed = listed
	s.listing = ListingState{Phase: ListingPending, Previous: prev}
	g, addr := s.gen, s.address
	s.mu.Unlock()

	rec, err := s.writeListing(ctx, addr, listed)

	s.mu.Lock()
	if !s.current(g) {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.listed = prev
		s.listing = ListingState{Phase: ListingFailed, Previous: prev, Err: err}
		s.mu.Unlock()

		listingToggles.WithLabelValues(toggleOutcome(err)).Inc()
		s.logger.Warnw("Listing toggle rolled back", "wallet", addr, "listed", listed, "error", err)
		s.notifier.Notify(NoticeError, "Failed to update listing status. Please try again.")
		return fmt.Errorf("toggle listing: %w", err)
	}
	s.profile = &rec
	s.listed = rec.Listed
	s.listing = ListingState{Phase: ListingIdle, Previous: prev}
	s.mu.Unlock()

	listingToggles.WithLabelValues("ok").Inc()
	if err := s.RefreshLeaderboard(ctx); err != nil {
		s.logger.Warnw("Leaderboard refresh after toggle failed", "error", err)
	}
	return nil
}

func (s *Session) writeListing(ctx context.Context, addr string, listed bool) (models.UserRecord, error) {
	if err := s.actions.SetListingFlag(ctx, addr, listed); err != nil {
		return models.UserRecord{}, err
	}
	return s.revalidate(ctx, addr, listed)
}

// revalidate re-reads the profile until its listed flag equals want, with
// doubling backoff between attempts. NotFound ends the loop early.
func (s *Session) revalidate(ctx context.Context, addr string, want bool) (models.UserRecord, error) {
	policy := &backoff.ExponentialBackOff{
		InitialInterval: s.validateBackoff,
		Multiplier:      2,
		MaxInterval:     s.validateBackoff << maxBackoffDoublings,
		Stop:            backoff.Stop,
		Clock:           s.clock,
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.validateAttempts-1)), ctx)

	read := func() (models.UserRecord, error) {
		rec, err := s.actions.FetchUserProfile(ctx, addr)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return rec, backoff.Permanent(err)
		case err != nil:
			return rec, err
		case rec.Listed != want:
			return rec, ErrValidationMismatch
		}
		return rec, nil
	}
	notify := func(err error, next time.Duration) {
		s.logger.Debugw("Listing re-validation retry", "wallet", addr, "error", err, "wait", next)
	}

	return backoff.RetryNotifyWithTimerAndData(read, b, notify, &clockTimer{clock: s.clock})
}

const maxBackoffDoublings = 4

// clockTimer drives backoff waits from the session clock.
type clockTimer struct {
	clock clockwork.Clock
	timer clockwork.Timer
}

func (t *clockTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = t.clock.NewTimer(d)
		return
	}
	t.timer.Reset(d)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.timer.Chan()
}

// SubmitProfile writes nickname and social changes. It is refused while a
// listing toggle is in flight. The cache takes the server's copy, not the input.
func (s *Session) SubmitProfile(ctx context.Context, upd models.ProfileUpdate) (models.UserRecord, error) {
	s.mu.Lock()
	if s.state != Connected || s.closed {
		s.mu.Unlock()
		return models.UserRecord{}, ErrNotConnected
	}
	if s.listing.InFlight() {
		s.mu.Unlock()
		return models.UserRecord{}, ErrListingInFlight
	}
	g, addr := s.gen, s.address
	s.mu.Unlock()

	rec, err := s.actions.UpdateUserProfile(ctx, addr, upd)
	if err != nil {
		s.logger.Warnw("Profile update failed", "wallet", addr, "error", err)
		s.notifier.Notify(NoticeError, "Failed to update profile")
		return models.UserRecord{}, fmt.Errorf("update profile: %w", err)
	}
	if !s.applyProfile(g, rec) {
		return models.UserRecord{}, ErrStale
	}
	s.notifier.Notify(NoticeInfo, "Profile updated")
	return rec, nil
}

// OpenProfile re-reads the stored profile before it is edited.
func (s *Session) OpenProfile(ctx context.Context) (models.UserRecord, error) {
	s.mu.Lock()
	if s.state != Connected || s.closed {
		s.mu.Unlock()
		return models.UserRecord{}, ErrNotConnected
	}
	g, addr := s.gen, s.address
	s.mu.Unlock()

	rec, err := s.actions.FetchUserProfile(ctx, addr)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !s.applyProfile(g, rec) {
		return models.UserRecord{}, ErrStale
	}
	return rec, nil
}

// applyProfile replaces the profile cache. The listed flag follows the
// record unless a toggle is in flight.
func (s *Session) applyProfile(g uint64, rec models.UserRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(g) {
		return false
	}
	s.profile = &rec
	if !s.listing.InFlight() {
		s.listed = rec.Listed
	}
	return true
}

func toggleOutcome(err error) string {
	switch {
	case errors.Is(err, ErrValidationMismatch):
		return "mismatch"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
