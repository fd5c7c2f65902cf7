package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

var errEmptyUpdate = errors.New("profile update has no fields")

// userColumns is the projection shared by every read.
const userColumns = "id, wallet_address, nickname, telegram, discord, twitter, twitch, kick, listed, created_at"

// BuildProfileUpdate constructs the UPDATE for a partial profile change. Only
// fixed column names are interpolated; values always travel as arguments.
func BuildProfileUpdate(address string, upd models.ProfileUpdate) (string, []interface{}, error) {
	fields := []struct {
		column string
		value  *string
	}{
		{"nickname", upd.Nickname},
		{"telegram", upd.Telegram},
		{"discord", upd.Discord},
		{"twitter", upd.Twitter},
		{"twitch", upd.Twitch},
		{"kick", upd.Kick},
	}

	var sets []string
	var args []interface{}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		args = append(args, nullIfEmpty(*f.value))
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}
	if len(sets) == 0 {
		return "", nil, errEmptyUpdate
	}

	args = append(args, address)
	query := fmt.Sprintf("UPDATE users SET %s WHERE wallet_address = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), userColumns)

	return query, args, nil
}

// nullIfEmpty stores cleared values as NULL rather than empty strings.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
