package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	mrand "math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pnlboard/leaderboard-api/internal/client"
	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

var nicknames = []string{"whale", "degen", "ape", "paperhands", "diamond", "moon", "sniper", "rugsurvivor"}

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	count := flag.Int("n", 25, "number of wallets to register")
	share := flag.Float64("listed", 0.7, "share of wallets that opt into the leaderboard")
	workers := flag.Int("workers", 8, "concurrent requests")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	api := client.New(*apiURL, 10*time.Second, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var registered, listed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	for i := 0; i < *count; i++ {
		i := i
		g.Go(func() error {
			addr, err := newAddress()
			if err != nil {
				return err
			}
			if _, err := api.RegisterOrFetchUser(gctx, addr); err != nil {
				return fmt.Errorf("register %s: %w", addr, err)
			}
			registered.Add(1)

			// Leave some wallets on the "Trader xxxx" fallback name.
			if i%3 != 0 {
				nick := fmt.Sprintf("%s%d", nicknames[i%len(nicknames)], i)
				if _, err := api.UpdateUserProfile(gctx, addr, models.ProfileUpdate{Nickname: &nick}); err != nil {
					return fmt.Errorf("profile %s: %w", addr, err)
				}
			}

			if mrand.Float64() < *share {
				if err := api.SetListingFlag(gctx, addr, true); err != nil {
					return fmt.Errorf("list %s: %w", addr, err)
				}
				listed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Seeding failed after %d wallets: %v", registered.Load(), err)
	}
	fmt.Printf("Registered %d wallets, %d listed\n", registered.Load(), listed.Load())
}

func newAddress() (string, error) {
	key := make([]byte, wallet.PublicKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return wallet.EncodePublicKey(key), nil
}
