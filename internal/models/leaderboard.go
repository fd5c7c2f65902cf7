package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position is the podium slot of a top-three trader.
type Position string

const (
	PositionCenter Position = "center"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
)

// PodiumSize is the number of traders shown on the podium.
const PodiumSize = 3

// Trader is a derived, non-persisted view of a listed user with synthetic performance figures.
type Trader struct {
	Rank          int             `json:"rank"`
	Name          string          `json:"name"`
	WalletAddress string          `json:"walletAddress"`
	PnL           decimal.Decimal `json:"pnl"`
	Value         decimal.Decimal `json:"value"`
	GreenTrades   int             `json:"greenTrades"`
	RedTrades     int             `json:"redTrades"`
	Position      Position        `json:"position,omitempty"`
	Socials       []string        `json:"socials"`
}

// Leaderboard splits the ranked traders at the podium boundary.
type Leaderboard struct {
	TopTraders    []Trader `json:"topTraders"`
	RankedTraders []Trader `json:"rankedTraders"`
}

// Len returns the total number of traders.
func (l Leaderboard) Len() int {
	return len(l.TopTraders) + len(l.RankedTraders)
}

// Period is the leaderboard time tab. It is echoed back but does not filter.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod maps a query value to a Period, defaulting to daily.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodDaily
	}
}

// LeaderboardResponse is the server-side derived leaderboard.
type LeaderboardResponse struct {
	Leaderboard
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// LeaderboardSnapshot is one derivation queued for the analytics sink.
type LeaderboardSnapshot struct {
	ID         uuid.UUID
	Period     Period
	CapturedAt time.Time
	Traders    []Trader
}
