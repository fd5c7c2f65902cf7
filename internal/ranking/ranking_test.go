package ranking

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// fixedSource returns a preset PnL per wallet.
func fixedSource(pnl map[string]int64) PerformanceSource {
	return PerformanceFunc(func(addr string) Performance {
		return Performance{PnL: decimal.NewFromInt(pnl[addr]), Value: decimal.NewFromInt(1), GreenTrades: 3, RedTrades: 1}
	})
}

func listed(addrs ...string) []models.UserRecord {
	recs := make([]models.UserRecord, 0, len(addrs))
	for _, a := range addrs {
		recs = append(recs, models.UserRecord{WalletAddress: a, Listed: true})
	}
	return recs
}

func TestDerive_Sizes(t *testing.T) {
	for size := 0; size <= 5; size++ {
		t.Run(fmt.Sprintf("%d records", size), func(t *testing.T) {
			addrs := make([]string, size)
			for i := range addrs {
				addrs[i] = fmt.Sprintf("wallet-%d", i)
			}
			board := NewEngine(NewRandomSource()).Derive(listed(addrs...))

			if got, want := len(board.TopTraders), min(size, 3); got != want {
				t.Errorf("len(TopTraders) = %d, want %d", got, want)
			}
			if got, want := len(board.RankedTraders), max(size-3, 0); got != want {
				t.Errorf("len(RankedTraders) = %d, want %d", got, want)
			}
			if board.TopTraders == nil || board.RankedTraders == nil {
				t.Error("slices must be non-nil so they encode as []")
			}
		})
	}
}

func TestDerive_RanksAndPositions(t *testing.T) {
	pnl := map[string]int64{"a": 500, "b": 9000, "c": 100, "d": 50}
	board := NewEngine(fixedSource(pnl)).Derive(listed("a", "b", "c", "d"))

	wantTop := []struct {
		addr string
		rank int
		pos  models.Position
	}{
		{"b", 1, models.PositionCenter},
		{"a", 2, models.PositionLeft},
		{"c", 3, models.PositionRight},
	}
	for i, want := range wantTop {
		got := board.TopTraders[i]
		if got.WalletAddress != want.addr || got.Rank != want.rank || got.Position != want.pos {
			t.Errorf("TopTraders[%d] = %s rank %d %q, want %s rank %d %q",
				i, got.WalletAddress, got.Rank, got.Position, want.addr, want.rank, want.pos)
		}
	}

	if len(board.RankedTraders) != 1 {
		t.Fatalf("RankedTraders = %+v, want one entry", board.RankedTraders)
	}
	fourth := board.RankedTraders[0]
	if fourth.WalletAddress != "d" || fourth.Rank != 4 || fourth.Position != "" {
		t.Errorf("RankedTraders[0] = %+v, want d at rank 4 without position", fourth)
	}
}

func TestDerive_TiesKeepInputOrder(t *testing.T) {
	pnl := map[string]int64{"x": 10, "y": 10, "z": 10, "w": 20}
	board := NewEngine(fixedSource(pnl)).Derive(listed("x", "y", "z", "w"))

	var order []string
	for _, tr := range append(board.TopTraders, board.RankedTraders...) {
		order = append(order, tr.WalletAddress)
	}
	want := []string{"w", "x", "y", "z"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestDerive_RanksAreConsecutiveAndSorted(t *testing.T) {
	recs := listed("a", "b", "c", "d", "e", "f", "g")
	board := NewEngine(NewRandomSource()).Derive(recs)
	all := append(append([]models.Trader{}, board.TopTraders...), board.RankedTraders...)

	for i, tr := range all {
		if tr.Rank != i+1 {
			t.Errorf("trader %d has rank %d", i, tr.Rank)
		}
		if i > 0 && tr.PnL.GreaterThan(all[i-1].PnL) {
			t.Errorf("rank %d pnl %s exceeds rank %d pnl %s", tr.Rank, tr.PnL, all[i-1].Rank, all[i-1].PnL)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		rec  models.UserRecord
		want string
	}{
		{models.UserRecord{WalletAddress: "9xQeWvG816bUx9EP", Nickname: models.StringPtr("whale")}, "whale"},
		{models.UserRecord{WalletAddress: "9xQeWvG816bUx9EP"}, "Trader 9xQe"},
		{models.UserRecord{WalletAddress: "9xQeWvG816bUx9EP", Nickname: models.StringPtr("")}, "Trader 9xQe"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.rec); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}

func TestTradePercentages(t *testing.T) {
	tests := []struct {
		green, red         int
		wantGreen, wantRed float64
	}{
		{0, 0, 0, 0},
		{3, 1, 75, 25},
		{0, 7, 0, 100},
		{1, 2, 100.0 / 3, 200.0 / 3},
	}
	for _, tt := range tests {
		g, r := TradePercentages(tt.green, tt.red)
		if math.Abs(g-tt.wantGreen) > 1e-9 || math.Abs(r-tt.wantRed) > 1e-9 {
			t.Errorf("TradePercentages(%d, %d) = %v, %v; want %v, %v", tt.green, tt.red, g, r, tt.wantGreen, tt.wantRed)
		}
		if tt.green+tt.red > 0 && math.Abs(g+r-100) > 1e-9 {
			t.Errorf("TradePercentages(%d, %d) sums to %v", tt.green, tt.red, g+r)
		}
	}
}

func TestSeededSource_StablePerWallet(t *testing.T) {
	s := NewSeededSource(42)
	a1, a2 := s.Figures("wallet-a"), s.Figures("wallet-a")
	if !a1.PnL.Equal(a2.PnL) || a1.GreenTrades != a2.GreenTrades {
		t.Errorf("same wallet produced %+v and %+v", a1, a2)
	}
	if other := NewSeededSource(43).Figures("wallet-a"); other.PnL.Equal(a1.PnL) && other.Value.Equal(a1.Value) {
		t.Error("different seeds should produce different figures")
	}
}

func TestFigureRanges(t *testing.T) {
	s := NewRandomSource()
	for i := 0; i < 500; i++ {
		p := s.Figures("w")
		if p.PnL.IsNegative() || p.PnL.GreaterThanOrEqual(decimal.NewFromInt(maxPnL)) {
			t.Fatalf("pnl out of range: %s", p.PnL)
		}
		if p.PnL.Exponent() < -figurePlaces {
			t.Fatalf("pnl has more than %d places: %s", figurePlaces, p.PnL)
		}
		if p.GreenTrades < 0 || p.GreenTrades >= maxGreenTrades || p.RedTrades < 0 || p.RedTrades >= maxRedTrades {
			t.Fatalf("trade counts out of range: %+v", p)
		}
	}
}
