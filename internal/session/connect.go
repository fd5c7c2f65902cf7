package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

// Connect asks the wallet for its public key, registers the user and starts
// polling. On any wallet failure the session returns to Disconnected.
func (s *Session) Connect(ctx context.Context) error {
	g, err := s.beginConnect()
	if errors.Is(err, errAlreadyConnected) {
		return nil
	}
	if err != nil {
		return err
	}

	addr, err := s.wallet.Connect(ctx, false)
	if err != nil {
		s.abortConnect(g)
		if errors.Is(err, wallet.ErrUnavailable) {
			s.notifier.Notify(NoticeError, "No compatible wallet found. Install one from "+wallet.InstallURL)
		} else {
			s.notifier.Notify(NoticeError, "Failed to connect wallet")
		}
		return fmt.Errorf("connect wallet: %w", err)
	}

	return s.establish(ctx, g, addr)
}

// Restore silently reconnects a wallet that trusted this client before.
// Nothing is asked of the wallet unless an address was persisted by an
// earlier connection. An untrusted or missing wallet leaves the session
// Disconnected without an error or notice; the persisted address is kept
// for the next attempt.
func (s *Session) Restore(ctx context.Context) error {
	var persisted string
	if s.addresses != nil {
		addr, ok, err := s.addresses.Load()
		switch {
		case err != nil:
			s.logger.Warnw("Failed to read persisted wallet", "error", err)
		case !ok:
			s.logger.Debugw("No persisted wallet, silent reconnect skipped")
			return nil
		default:
			persisted = addr
		}
	}

	g, err := s.beginConnect()
	if errors.Is(err, errAlreadyConnected) {
		return nil
	}
	if err != nil {
		return err
	}

	addr, err := s.wallet.Connect(ctx, true)
	switch {
	case err == nil:
	case errors.Is(err, wallet.ErrNotTrusted), errors.Is(err, wallet.ErrUnavailable):
		s.abortConnect(g)
		s.logger.Infow("Silent reconnect skipped", "reason", err, "persisted", persisted)
		return nil
	default:
		s.abortConnect(g)
		return fmt.Errorf("restore wallet: %w", err)
	}

	if persisted != "" && persisted != addr {
		s.logger.Infow("Wallet changed since last session", "previous", persisted, "current", addr)
	}
	return s.establish(ctx, g, addr)
}

var errAlreadyConnected = errors.New("already connected")

func (s *Session) beginConnect() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	switch s.state {
	case Connecting:
		return 0, ErrConnecting
	case Connected:
		return 0, errAlreadyConnected
	}
	s.gen++
	s.state = Connecting
	return s.gen, nil
}

func (s *Session) abortConnect(g uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(g) {
		s.state = Disconnected
	}
}

// establish moves a Connecting session to Connected. Registration and the
// first profile read are best effort: on failure the session stays
// connected with no profile until a later poll succeeds.
func (s *Session) establish(ctx context.Context, g uint64, addr string) error {
	s.mu.Lock()
	if !s.current(g) {
		s.mu.Unlock()
		return ErrStale
	}
	s.state = Connected
	s.address = addr
	s.profile = nil
	s.listed = false
	s.listing = ListingState{}
	s.startPolling(g)
	s.mu.Unlock()

	s.logger.Infow("Wallet connected", "wallet", addr)

	if s.addresses != nil {
		if err := s.addresses.Save(addr); err != nil {
			s.logger.Warnw("Failed to persist wallet", "error", err)
		}
	}

	if _, err := s.actions.RegisterOrFetchUser(ctx, addr); err != nil {
		s.logger.Errorw("Failed to register user", "wallet", addr, "error", err)
		return nil
	}

	rec, err := s.actions.FetchUserProfile(ctx, addr)
	if err != nil {
		s.logger.Warnw("Initial profile fetch failed", "wallet", addr, "error", err)
		return nil
	}
	s.applyProfile(g, rec)
	return nil
}
