package models

import (
	"fmt"
	"strings"
)

type RegisterUserRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,wallet"`
}

type UpdateProfileRequest struct {
	Nickname *string          `json:"nickname" validate:"omitempty,max=32"`
	Socials  map[string]string `json:"socials" validate:"omitempty,dive,keys,oneof=telegram discord twitter twitch kick,endkeys,max=64"`
}

// ToUpdate converts the request into a store update. Submitted values are trimmed;
// networks missing from the socials map are left untouched.
func (r UpdateProfileRequest) ToUpdate() (ProfileUpdate, error) {
	var upd ProfileUpdate
	if r.Nickname != nil {
		upd.Nickname = StringPtr(strings.TrimSpace(*r.Nickname))
	}
	for network, handle := range r.Socials {
		v := StringPtr(strings.TrimSpace(handle))
		switch network {
		case "telegram":
			upd.Telegram = v
		case "discord":
			upd.Discord = v
		case "twitter":
			upd.Twitter = v
		case "twitch":
			upd.Twitch = v
		case "kick":
			upd.Kick = v
		default:
			return ProfileUpdate{}, fmt.Errorf("unknown social network %q", network)
		}
	}
	return upd, nil
}

type SetListingRequest struct {
	Listed *bool `json:"listed" validate:"required"`
}

type SetListingResponse struct {
	Success bool `json:"success"`
}
