package models

import "time"

// SocialNetworks lists the social handles a user may register, in display order.
var SocialNetworks = []string{"telegram", "discord", "twitter", "twitch", "kick"}

// UserRecord is the single persisted entity: one row per wallet address.
type UserRecord struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	Nickname      *string   `json:"nickname"`
	Telegram      *string   `json:"telegram"`
	Discord       *string   `json:"discord"`
	Twitter       *string   `json:"twitter"`
	Twitch        *string   `json:"twitch"`
	Kick          *string   `json:"kick"`
	Listed        bool      `json:"listed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Socials returns the non-empty social handles in SocialNetworks order.
func (u UserRecord) Socials() []string {
	socials := make([]string, 0, len(SocialNetworks))
	for _, handle := range []*string{u.Telegram, u.Discord, u.Twitter, u.Twitch, u.Kick} {
		if handle != nil && *handle != "" {
			socials = append(socials, *handle)
		}
	}
	return socials
}

// ProfileUpdate is a partial update of nickname and socials.
// A nil field is left untouched; an empty string clears the stored value.
type ProfileUpdate struct {
	Nickname *string
	Telegram *string
	Discord  *string
	Twitter  *string
	Twitch   *string
	Kick     *string
}

// IsEmpty reports whether the update would write nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Nickname == nil && p.Telegram == nil && p.Discord == nil &&
		p.Twitter == nil && p.Twitch == nil && p.Kick == nil
}

// Apply writes the update onto rec in place.
func (p ProfileUpdate) Apply(rec *UserRecord) {
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *src == "" {
			*dst = nil
			return
		}
		v := *src
		*dst = &v
	}
	set(&rec.Nickname, p.Nickname)
	set(&rec.Telegram, p.Telegram)
	set(&rec.Discord, p.Discord)
	set(&rec.Twitter, p.Twitter)
	set(&rec.Twitch, p.Twitch)
	set(&rec.Kick, p.Kick)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
