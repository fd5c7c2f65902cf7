package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

// MockActions forwards to the XxxFunc fields and falls back to an in-memory
// store, so tests only override the calls they care about.
type MockActions struct {
	Store *store.MemoryStore

	RegisterFunc    func(ctx context.Context, address string) (models.UserRecord, error)
	FetchFunc       func(ctx context.Context, address string) (models.UserRecord, error)
	UpdateFunc      func(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListingFunc  func(ctx context.Context, address string, listed bool) error
	LeaderboardFunc func(ctx context.Context) ([]models.UserRecord, error)

	ProfileFetches     atomic.Int32
	LeaderboardFetches atomic.Int32
}

func NewMockActions() *MockActions {
	return &MockActions{Store: store.NewMemoryStore()}
}

func (m *MockActions) RegisterOrFetchUser(ctx context.Context, address string) (models.UserRecord, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, address)
	}
	rec, err := m.Store.GetByWallet(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		return m.Store.Create(ctx, address)
	}
	return rec, err
}

func (m *MockActions) FetchUserProfile(ctx context.Context, address string) (models.UserRecord, error) {
	m.ProfileFetches.Add(1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, address)
	}
	return m.Store.GetByWallet(ctx, address)
}

func (m *MockActions) UpdateUserProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, address, upd)
	}
	return m.Store.UpdateProfile(ctx, address, upd)
}

func (m *MockActions) SetListingFlag(ctx context.Context, address string, listed bool) error {
	if m.SetListingFunc != nil {
		return m.SetListingFunc(ctx, address, listed)
	}
	return m.Store.SetListed(ctx, address, listed)
}

func (m *MockActions) FetchListedLeaderboard(ctx context.Context) ([]models.UserRecord, error) {
	m.LeaderboardFetches.Add(1)
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx)
	}
	return m.Store.ListListed(ctx)
}

type MockWallet struct {
	ConnectFunc func(ctx context.Context, trustedOnly bool) (string, error)
}

func (m *MockWallet) Connect(ctx context.Context, trustedOnly bool) (string, error) {
	return m.ConnectFunc(ctx, trustedOnly)
}

func walletReturning(addr string) *MockWallet {
	return &MockWallet{ConnectFunc: func(context.Context, bool) (string, error) { return addr, nil }}
}

type MockAddressStore struct {
	mu      sync.Mutex
	addr    string
	cleared bool
}

func (m *MockAddressStore) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr, m.addr != "", nil
}

func (m *MockAddressStore) Save(addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addr = addr
	return nil
}

func (m *MockAddressStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addr = ""
	m.cleared = true
	return nil
}

// recordingNotifier keeps notices and signals every leaderboard update.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
	errors  int
	updates chan models.Leaderboard
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{updates: make(chan models.Leaderboard, 16)}
}

func (n *recordingNotifier) Notify(level NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, message)
	if level == NoticeError {
		n.errors++
	}
}

func (n *recordingNotifier) LeaderboardUpdated(board models.Leaderboard) {
	select {
	case n.updates <- board:
	default:
	}
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.errors
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notices...)
}
