package logic

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

type MockRedis struct {
	mu        sync.Mutex
	counters  map[string]int64
	expires   map[string]time.Duration
	published []string

	PublishErr error
	IncrErr    error
}

func NewMockRedis() *MockRedis {
	return &MockRedis{counters: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *MockRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return redis.NewIntResult(0, m.PublishErr)
	}
	if b, ok := message.([]byte); ok {
		m.published = append(m.published, channel+" "+string(b))
	}
	return redis.NewIntResult(1, nil)
}

func (m *MockRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrErr != nil {
		return redis.NewIntResult(0, m.IncrErr)
	}
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *MockRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

type MockEventSink struct {
	mu     sync.Mutex
	Events []models.LeaderboardEvent
}

func (m *MockEventSink) Publish(ctx context.Context, evt models.LeaderboardEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, evt)
}

type MockRecorder struct {
	EnqueueFunc func(snap models.LeaderboardSnapshot) bool
	Snapshots   []models.LeaderboardSnapshot
}

func (m *MockRecorder) Enqueue(snap models.LeaderboardSnapshot) bool {
	m.Snapshots = append(m.Snapshots, snap)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(snap)
	}
	return true
}

// MockUserStore overrides individual store calls; unset calls panic so tests
// notice unexpected traffic.
type MockUserStore struct {
	GetByWalletFunc   func(ctx context.Context, address string) (models.UserRecord, error)
	CreateFunc        func(ctx context.Context, address string) (models.UserRecord, error)
	UpdateProfileFunc func(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListedFunc     func(ctx context.Context, address string, listed bool) error
	ListListedFunc    func(ctx context.Context) ([]models.UserRecord, error)
}

func (m *MockUserStore) GetByWallet(ctx context.Context, address string) (models.UserRecord, error) {
	return m.GetByWalletFunc(ctx, address)
}

func (m *MockUserStore) Create(ctx context.Context, address string) (models.UserRecord, error) {
	return m.CreateFunc(ctx, address)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	return m.UpdateProfileFunc(ctx, address, upd)
}

func (m *MockUserStore) SetListed(ctx context.Context, address string, listed bool) error {
	return m.SetListedFunc(ctx, address, listed)
}

func (m *MockUserStore) ListListed(ctx context.Context) ([]models.UserRecord, error) {
	return m.ListListedFunc(ctx)
}
