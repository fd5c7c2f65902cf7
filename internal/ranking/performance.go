package ranking

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// Ranges of the synthetic figures. PnL and value carry four decimal places.
const (
	maxPnL         = 10000
	maxValue       = 50000
	maxGreenTrades = 300
	maxRedTrades   = 100
	figurePlaces   = 4
)

// Performance is the synthetic trading record of one wallet.
type Performance struct {
	PnL         decimal.Decimal
	Value       decimal.Decimal
	GreenTrades int
	RedTrades   int
}

// PerformanceSource produces figures for a wallet. Implementations decide
// whether the same wallet gets the same figures across calls.
type PerformanceSource interface {
	Figures(walletAddress string) Performance
}

// PerformanceFunc adapts a function to PerformanceSource.
type PerformanceFunc func(walletAddress string) Performance

func (f PerformanceFunc) Figures(walletAddress string) Performance {
	return f(walletAddress)
}

// RandomSource regenerates figures on every call, so two derivations over
// unchanged records may order traders differently.
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSource() *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (s *RandomSource) Figures(string) Performance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return drawFigures(s.rng)
}

// SeededSource derives figures from the wallet address and a seed: the same
// wallet always gets the same numbers for a given seed.
type SeededSource struct {
	seed uint64
}

func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{seed: uint64(seed)}
}

func (s *SeededSource) Figures(walletAddress string) Performance {
	h := fnv.New64a()
	h.Write([]byte(walletAddress))
	return drawFigures(rand.New(rand.NewPCG(s.seed, h.Sum64())))
}

func drawFigures(rng *rand.Rand) Performance {
	return Performance{
		PnL:         decimal.NewFromFloat(rng.Float64() * maxPnL).Truncate(figurePlaces),
		Value:       decimal.NewFromFloat(rng.Float64() * maxValue).Truncate(figurePlaces),
		GreenTrades: rng.IntN(maxGreenTrades),
		RedTrades:   rng.IntN(maxRedTrades),
	}
}
