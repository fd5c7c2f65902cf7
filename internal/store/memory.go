package store

import (
	"context"
	"sync"
	"time"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// MemoryStore keeps records in process. It backs STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]*models.UserRecord
	// order preserves insertion order so ListListed mirrors a heap scan.
	order []string
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.UserRecord),
		now:   time.Now,
	}
}

func (s *MemoryStore) GetByWallet(ctx context.Context, address string) (models.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.UserRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[address]
	if !ok {
		return models.UserRecord{}, ErrNotFound
	}
	return *u, nil
}

func (s *MemoryStore) Create(ctx context.Context, address string) (models.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.UserRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[address]; ok {
		return models.UserRecord{}, ErrConflict
	}
	s.nextID++
	u := &models.UserRecord{
		ID:            s.nextID,
		WalletAddress: address,
		CreatedAt:     s.now().UTC(),
	}
	s.users[address] = u
	s.order = append(s.order, address)
	return *u, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.UserRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[address]
	if !ok {
		return models.UserRecord{}, ErrNotFound
	}
	upd.Apply(u)
	return *u, nil
}

func (s *MemoryStore) SetListed(ctx context.Context, address string, listed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[address]
	if !ok {
		return ErrNotFound
	}
	u.Listed = listed
	return nil
}

func (s *MemoryStore) ListListed(ctx context.Context) ([]models.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.UserRecord, 0)
	for _, addr := range s.order {
		if u := s.users[addr]; u.Listed {
			users = append(users, *u)
		}
	}
	return users, nil
}
