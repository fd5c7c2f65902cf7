package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

var (
	listingToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnlboard_client_listing_toggles_total",
		Help: "Listing toggles by outcome",
	}, []string{"outcome"})

	pollFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnlboard_client_poll_failures_total",
		Help: "Background poll fetches that failed",
	}, []string{"fetch"})
)

// poller is the recurring refresh task of one connected generation.
type poller struct {
	cancel context.CancelFunc
	once   sync.Once
}

// stop cancels the task without waiting for its goroutine, so it may run on
// the poll goroutine itself (a Notifier disconnecting from
// LeaderboardUpdated). A poll still in flight is discarded by the
// generation check.
func (p *poller) stop() {
	p.once.Do(p.cancel)
}

// startPolling launches the poll task for generation g. Callers hold mu.
func (s *Session) startPolling(g uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{cancel: cancel}
	s.poller = p

	ticker := s.clock.NewTicker(s.pollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.pollOnce(ctx, g)
			}
		}
	}()
}

// pollOnce re-fetches profile and leaderboard. Failures are logged only;
// local state is left as it was.
func (s *Session) pollOnce(ctx context.Context, g uint64) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if !s.current(g) {
		s.mu.Unlock()
		return
	}
	addr := s.address
	s.mu.Unlock()

	rec, err := s.actions.FetchUserProfile(ctx, addr)
	if err != nil {
		pollFailures.WithLabelValues("profile").Inc()
		s.logger.Warnw("Poll profile fetch failed", "wallet", addr, "error", err)
	} else {
		s.applyProfile(g, rec)
	}

	if ctx.Err() != nil {
		return
	}
	board, err := s.deriveBoard(ctx)
	if err != nil {
		pollFailures.WithLabelValues("leaderboard").Inc()
		s.logger.Warnw("Poll leaderboard fetch failed", "error", err)
		return
	}
	s.applyBoard(g, board)
}

// RefreshLeaderboard fetches the listed users and re-derives the board.
// It does not need a connected wallet.
func (s *Session) RefreshLeaderboard(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	g := s.gen
	s.mu.Unlock()

	board, err := s.deriveBoard(ctx)
	if err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}
	if !s.applyBoard(g, board) {
		return ErrStale
	}
	return nil
}

func (s *Session) deriveBoard(ctx context.Context) (models.Leaderboard, error) {
	records, err := s.actions.FetchListedLeaderboard(ctx)
	if err != nil {
		return models.Leaderboard{}, err
	}
	return s.engine.Derive(records), nil
}

func (s *Session) applyBoard(g uint64, board models.Leaderboard) bool {
	s.mu.Lock()
	if !s.current(g) {
		s.mu.Unlock()
		return false
	}
	s.board = board
	s.mu.Unlock()

	s.notifier.LeaderboardUpdated(board)
	return true
}
