// Package session keeps one client's view of wallet identity, profile and
// leaderboard consistent with the server across optimistic updates and polling.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/ranking"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

var (
	ErrNotConnected       = errors.New("wallet not connected")
	ErrConnecting         = errors.New("wallet connection already in progress")
	ErrListingInFlight    = errors.New("listing update in progress")
	ErrValidationMismatch = errors.New("stored listing does not match requested state")
	ErrStale              = errors.New("session changed while request was in flight")
	ErrClosed             = errors.New("session closed")
)

const (
	DefaultPollInterval     = 10 * time.Second
	DefaultValidateAttempts = 3
	DefaultValidateBackoff  = 200 * time.Millisecond
)

// Actions is the remote surface the session reconciles against.
type Actions interface {
	RegisterOrFetchUser(ctx context.Context, address string) (models.UserRecord, error)
	FetchUserProfile(ctx context.Context, address string) (models.UserRecord, error)
	UpdateUserProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListingFlag(ctx context.Context, address string, listed bool) error
	FetchListedLeaderboard(ctx context.Context) ([]models.UserRecord, error)
}

// AddressStore persists the last connected address between runs.
type AddressStore interface {
	Load() (string, bool, error)
	Save(address string) error
	Clear() error
}

// State is the connection state of a session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type ListingPhase int

const (
	ListingIdle ListingPhase = iota
	ListingPending
	ListingFailed
)

// ListingState is the optimistic toggle sub-state of a connected session.
// Previous is the flag value before the last toggle; Err is set when Failed.
type ListingState struct {
	Phase    ListingPhase
	Previous bool
	Err      error
}

func (l ListingState) InFlight() bool {
	return l.Phase == ListingPending
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	State         State
	WalletAddress string
	Profile       *models.UserRecord
	Listed        bool
	Listing       ListingState
	Leaderboard   models.Leaderboard
}

// Config wires the session to its collaborators. Actions and Wallet are required.
type Config struct {
	Actions          Actions
	Wallet           wallet.Provider
	Addresses        AddressStore
	Notifier         Notifier
	Engine           *ranking.Engine
	Clock            clockwork.Clock
	PollInterval     time.Duration
	ValidateAttempts int
	ValidateBackoff  time.Duration
	Logger           *zap.Logger
}

// Session is safe for concurrent use. No lock is held across a remote call;
// every result is applied only if the session generation it was started
// under is still current.
type Session struct {
	actions   Actions
	wallet    wallet.Provider
	addresses AddressStore
	notifier  Notifier
	engine    *ranking.Engine
	clock     clockwork.Clock
	logger    *zap.SugaredLogger

	pollInterval     time.Duration
	validateAttempts int
	validateBackoff  time.Duration

	mu      sync.Mutex
	gen     uint64
	closed  bool
	state   State
	address string
	profile *models.UserRecord
	listed  bool
	listing ListingState
	board   models.Leaderboard
	poller  *poller
}

func New(cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Engine == nil {
		cfg.Engine = ranking.NewEngine(ranking.NewRandomSource())
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ValidateAttempts <= 0 {
		cfg.ValidateAttempts = DefaultValidateAttempts
	}
	if cfg.ValidateBackoff <= 0 {
		cfg.ValidateBackoff = DefaultValidateBackoff
	}

	return &Session{
		actions:          cfg.Actions,
		wallet:           cfg.Wallet,
		addresses:        cfg.Addresses,
		notifier:         cfg.Notifier,
		engine:           cfg.Engine,
		clock:            cfg.Clock,
		logger:           cfg.Logger.Sugar(),
		pollInterval:     cfg.PollInterval,
		validateAttempts: cfg.ValidateAttempts,
		validateBackoff:  cfg.ValidateBackoff,
		board:            emptyBoard(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.state,
		WalletAddress: s.address,
		Listed:        s.listed,
		Listing:       s.listing,
		Leaderboard:   s.board,
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

// Disconnect drops the wallet identity, stops polling and forgets the
// persisted address.
func (s *Session) Disconnect() {
	s.teardown(false)
	if s.addresses != nil {
		if err := s.addresses.Clear(); err != nil {
			s.logger.Warnw("Failed to clear persisted wallet", "error", err)
		}
	}
}

// Close tears the session down for good. The persisted address is kept so a
// later session can Restore it.
func (s *Session) Close() {
	s.teardown(true)
}

func (s *Session) teardown(closing bool) {
	s.mu.Lock()
	if closing {
		s.closed = true
	}
	s.gen++
	p := s.poller
	s.poller = nil
	s.state = Disconnected
	s.address = ""
	s.profile = nil
	s.listed = false
	s.listing = ListingState{}
	s.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

// current reports whether g is still the live generation. Callers hold mu.
func (s *Session) current(g uint64) bool {
	return !s.closed && s.gen == g
}

func emptyBoard() models.Leaderboard {
	return models.Leaderboard{TopTraders: []models.Trader{}, RankedTraders: []models.Trader{}}
}
