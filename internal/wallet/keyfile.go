package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// keypairSize is the length of a Solana CLI keypair: secret seed followed by public key.
const keypairSize = 64

// FileStore persists a single wallet address in a file. It doubles as the
// trusted-connection record of KeyfileProvider and as a session address store.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored address, or ok=false when nothing is stored.
func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read wallet state: %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", false, nil
	}
	return addr, true, nil
}

func (s *FileStore) Save(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(addr+"\n"), 0o600); err != nil {
		return fmt.Errorf("write wallet state: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear wallet state: %w", err)
	}
	return nil
}

// KeyfileProvider is a Provider backed by a Solana CLI keypair file
// (a JSON array of 64 bytes). A key counts as trusted once it has been
// approved and stored in the trust store.
type KeyfileProvider struct {
	keypairPath string
	trust       *FileStore
	// Approve asks the user to accept a non-trusted connection. Nil approves.
	Approve func(publicKey string) bool
}

func NewKeyfileProvider(keypairPath string, trust *FileStore) *KeyfileProvider {
	return &KeyfileProvider{keypairPath: keypairPath, trust: trust}
}

func (p *KeyfileProvider) Connect(ctx context.Context, trustedOnly bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pub, err := p.publicKey()
	if err != nil {
		return "", err
	}

	trusted, ok, err := p.trust.Load()
	if err != nil {
		return "", err
	}
	if ok && trusted == pub {
		return pub, nil
	}
	if trustedOnly {
		return "", ErrNotTrusted
	}

	if p.Approve != nil && !p.Approve(pub) {
		return "", ErrRejected
	}
	if err := p.trust.Save(pub); err != nil {
		return "", err
	}
	return pub, nil
}

func (p *KeyfileProvider) publicKey() (string, error) {
	if p.keypairPath == "" {
		return "", ErrUnavailable
	}
	data, err := os.ReadFile(p.keypairPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrUnavailable
	}
	if err != nil {
		return "", fmt.Errorf("read keypair: %w", err)
	}

	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("parse keypair %s: %w", p.keypairPath, err)
	}
	if len(raw) != keypairSize {
		return "", fmt.Errorf("keypair %s: expected %d bytes, got %d", p.keypairPath, keypairSize, len(raw))
	}

	key := make([]byte, PublicKeySize)
	for i, v := range raw[keypairSize-PublicKeySize:] {
		if v < 0 || v > 255 {
			return "", fmt.Errorf("keypair %s: byte %d out of range", p.keypairPath, i)
		}
		key[i] = byte(v)
	}
	return EncodePublicKey(key), nil
}
