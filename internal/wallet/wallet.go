// Package wallet holds the wallet capability consumed by sessions, address
// validation for Solana-style public keys, and a keypair-file provider used by
// the terminal client.
package wallet

import (
	"context"
	"errors"

	b58 "github.com/mr-tron/base58/base58"
)

// InstallURL is where users without a compatible wallet extension are sent.
const InstallURL = "https://phantom.app/"

// PublicKeySize is the byte length of an ed25519 public key.
const PublicKeySize = 32

var (
	// ErrUnavailable means no compatible wallet is present.
	ErrUnavailable = errors.New("wallet: no compatible wallet available")
	// ErrNotTrusted means a trusted-only connect found no prior approval.
	ErrNotTrusted = errors.New("wallet: not previously trusted")
	// ErrRejected means the user declined the connection request.
	ErrRejected = errors.New("wallet: connection rejected")
	// ErrInvalidAddress means the string is not a base58 encoded public key.
	ErrInvalidAddress = errors.New("wallet: invalid address")
)

// Provider is the external wallet capability. Connect returns the base58
// public key of the connected account.
type Provider interface {
	Connect(ctx context.Context, trustedOnly bool) (string, error)
}

// ValidateAddress checks that addr is base58 and decodes to a 32-byte key.
func ValidateAddress(addr string) error {
	if addr == "" {
		return ErrInvalidAddress
	}
	raw, err := b58.Decode(addr)
	if err != nil || len(raw) != PublicKeySize {
		return ErrInvalidAddress
	}
	return nil
}

// ValidAddress is the boolean form of ValidateAddress.
func ValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}

// EncodePublicKey returns the base58 form of a raw public key.
func EncodePublicKey(key []byte) string {
	return b58.Encode(key)
}

// Short returns the first n characters of addr.
func Short(addr string, n int) string {
	if len(addr) <= n {
		return addr
	}
	return addr[:n]
}
