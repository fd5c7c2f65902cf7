package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/ranking"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

var (
	deriveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pnlboard_leaderboard_derive_duration_seconds",
		Help:    "Time to load listed users and derive the leaderboard",
		Buckets: prometheus.DefBuckets,
	})

	listedTraders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pnlboard_leaderboard_listed_traders",
		Help: "Traders on the most recently derived leaderboard",
	})
)

// LeaderboardService derives the board server side and hands every
// derivation to the snapshot recorder.
type LeaderboardService struct {
	store    store.UserStore
	engine   *ranking.Engine
	recorder SnapshotRecorder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewLeaderboardService(st store.UserStore, engine *ranking.Engine, recorder SnapshotRecorder, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		store:    st,
		engine:   engine,
		recorder: recorder,
		logger:   logger.Sugar(),
		now:      time.Now,
	}
}

// Derive ranks the currently listed users. The period is echoed back; it does
// not filter anything.
func (s *LeaderboardService) Derive(ctx context.Context, period models.Period) (models.LeaderboardResponse, error) {
	start := time.Now()
	recs, err := s.store.ListListed(ctx)
	if err != nil {
		return models.LeaderboardResponse{}, fmt.Errorf("list listed users: %w", err)
	}

	board := s.engine.Derive(recs)
	deriveDuration.Observe(time.Since(start).Seconds())
	listedTraders.Set(float64(board.Len()))

	resp := models.LeaderboardResponse{
		Leaderboard: board,
		Period:      period,
		GeneratedAt: s.now().UTC(),
	}

	if s.recorder != nil && board.Len() > 0 {
		snap := models.LeaderboardSnapshot{
			ID:         uuid.New(),
			Period:     period,
			CapturedAt: resp.GeneratedAt,
			Traders:    append(append(make([]models.Trader, 0, board.Len()), board.TopTraders...), board.RankedTraders...),
		}
		if !s.recorder.Enqueue(snap) {
			s.logger.Warnw("Leaderboard snapshot dropped", "snapshot", snap.ID, "traders", len(snap.Traders))
		}
	}
	return resp, nil
}
