package main

import (
	"strings"

	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

// Classify reports why addr cannot be used as a wallet key, or "" if it can.
func Classify(addr string) string {
	trimmed := strings.TrimSpace(addr)
	switch {
	case trimmed == "":
		return "empty"
	case trimmed != addr:
		return "surrounding whitespace"
	case strings.HasPrefix(addr, "0x"):
		return "hex address, expected base58"
	case !wallet.ValidAddress(addr):
		return "not a base58 encoded 32-byte key"
	}
	return ""
}
