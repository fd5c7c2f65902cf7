package models

import "time"

// EventType names a change published on the leaderboard events channel.
type EventType string

const (
	EventListingChanged EventType = "listing_changed"
	EventProfileUpdated EventType = "profile_updated"
	EventUserRegistered EventType = "user_registered"
)

// LeaderboardEvent is published to Redis whenever a record that feeds the board changes.
type LeaderboardEvent struct {
	ID            string    `json:"eventId"`
	Type          EventType `json:"type"`
	WalletAddress string    `json:"walletAddress"`
	Listed        bool      `json:"listed"`
	At            time.Time `json:"at"`
}
