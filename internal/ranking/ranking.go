// Package ranking derives the trader leaderboard from listed user records.
package ranking

import (
	"slices"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

// fallbackNameLen is how much of the wallet address an unnamed trader shows.
const fallbackNameLen = 4

var podium = [models.PodiumSize]models.Position{
	models.PositionCenter,
	models.PositionLeft,
	models.PositionRight,
}

// Engine turns listed records into a ranked board.
type Engine struct {
	source PerformanceSource
}

func NewEngine(source PerformanceSource) *Engine {
	return &Engine{source: source}
}

// Derive synthesizes a trader per record, orders them by descending PnL
// (ties keep input order), numbers ranks from 1 and splits at the podium.
func (e *Engine) Derive(records []models.UserRecord) models.Leaderboard {
	traders := make([]models.Trader, 0, len(records))
	for _, rec := range records {
		perf := e.source.Figures(rec.WalletAddress)
		traders = append(traders, models.Trader{
			Name:          DisplayName(rec),
			WalletAddress: rec.WalletAddress,
			PnL:           perf.PnL,
			Value:         perf.Value,
			GreenTrades:   perf.GreenTrades,
			RedTrades:     perf.RedTrades,
			Socials:       rec.Socials(),
		})
	}

	slices.SortStableFunc(traders, func(a, b models.Trader) int {
		return b.PnL.Cmp(a.PnL)
	})

	for i := range traders {
		traders[i].Rank = i + 1
		if i < models.PodiumSize {
			traders[i].Position = podium[i]
		}
	}

	split := min(len(traders), models.PodiumSize)
	return models.Leaderboard{
		TopTraders:    traders[:split:split],
		RankedTraders: append(make([]models.Trader, 0, len(traders)-split), traders[split:]...),
	}
}

// DisplayName is the nickname when set, otherwise a short address label.
func DisplayName(rec models.UserRecord) string {
	if rec.Nickname != nil && *rec.Nickname != "" {
		return *rec.Nickname
	}
	return "Trader " + wallet.Short(rec.WalletAddress, fallbackNameLen)
}

// TradePercentages splits green and red trades into shares of 100.
// Both are 0 when there are no trades.
func TradePercentages(green, red int) (greenPct, redPct float64) {
	total := green + red
	if total <= 0 {
		return 0, 0
	}
	greenPct = float64(green) / float64(total) * 100
	redPct = float64(red) / float64(total) * 100
	return greenPct, redPct
}
