// Command pnlwatch runs one leaderboard session in the terminal: it connects a
// keypair-file wallet, applies profile and listing changes, and prints the board.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/client"
	"github.com/pnlboard/leaderboard-api/internal/config"
	"github.com/pnlboard/leaderboard-api/internal/logging"
	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/render"
	"github.com/pnlboard/leaderboard-api/internal/session"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

type options struct {
	connect    bool
	disconnect bool
	list       bool
	unlist     bool
	yes        bool
	watch      bool
	nickname   string
	socials    map[string]*string
}

func parseFlags() options {
	var opts options
	flag.BoolVar(&opts.connect, "connect", false, "connect the wallet if it is not already trusted")
	flag.BoolVar(&opts.disconnect, "disconnect", false, "disconnect and forget the wallet")
	flag.BoolVar(&opts.list, "list", false, "list yourself on the leaderboard")
	flag.BoolVar(&opts.unlist, "unlist", false, "remove yourself from the leaderboard")
	flag.BoolVar(&opts.yes, "yes", false, "approve the wallet connection without prompting")
	flag.BoolVar(&opts.watch, "watch", false, "keep running and reprint the leaderboard on every refresh")
	flag.StringVar(&opts.nickname, "nickname", "", "set your nickname")

	opts.socials = make(map[string]*string, len(models.SocialNetworks))
	for _, network := range models.SocialNetworks {
		opts.socials[network] = flag.String(network, "", "set your "+network+" handle")
	}
	flag.Parse()
	return opts
}

// profileUpdate collects only the flags that were given on the command line,
// so "-twitter=" clears a handle while an absent flag leaves it alone.
func (o options) profileUpdate() (models.ProfileUpdate, bool) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	req := models.UpdateProfileRequest{Socials: map[string]string{}}
	if set["nickname"] {
		req.Nickname = &o.nickname
	}
	for network, v := range o.socials {
		if set[network] {
			req.Socials[network] = *v
		}
	}
	upd, err := req.ToUpdate()
	if err != nil {
		return models.ProfileUpdate{}, false
	}
	return upd, !upd.IsEmpty()
}

func main() {
	opts := parseFlags()
	if opts.list && opts.unlist {
		fmt.Fprintln(os.Stderr, "-list and -unlist are mutually exclusive")
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, opts options, logger *zap.Logger) error {
	state := wallet.NewFileStore(cfg.WalletStateFile)
	provider := wallet.NewKeyfileProvider(cfg.WalletKeypair, state)
	if !opts.yes {
		provider.Approve = prompt
	}

	notifier := &render.Notifier{Out: os.Stdout, Err: os.Stderr}
	sess := session.New(session.Config{
		Actions:          client.New(cfg.APIURL, cfg.RequestTimeout, logger),
		Wallet:           provider,
		Addresses:        state,
		Notifier:         notifier,
		PollInterval:     cfg.PollInterval,
		ValidateAttempts: cfg.ValidateAttempts,
		ValidateBackoff:  cfg.ValidateBackoff,
		Logger:           logger,
	})
	defer sess.Close()

	if err := sess.Restore(ctx); err != nil {
		logger.Sugar().Warnw("Could not restore wallet session", "error", err)
	}

	if opts.disconnect {
		sess.Disconnect()
		fmt.Println("Wallet disconnected.")
		return nil
	}

	wantsWrite := opts.list || opts.unlist
	upd, hasUpdate := opts.profileUpdate()
	if opts.connect || wantsWrite || hasUpdate {
		if err := sess.Connect(ctx); err != nil {
			return err
		}
	}

	if hasUpdate {
		if _, err := sess.SubmitProfile(ctx, upd); err != nil {
			return err
		}
	}
	if wantsWrite {
		if err := sess.ToggleListing(ctx, opts.list); err != nil {
			return err
		}
	}

	render.Status(os.Stdout, sess.Snapshot())
	// A successful toggle has already refreshed and printed the board.
	if !wantsWrite {
		if err := sess.RefreshLeaderboard(ctx); err != nil {
			return fmt.Errorf("fetch leaderboard: %w", err)
		}
	}

	if !opts.watch {
		return nil
	}
	if sess.Snapshot().State == session.Connected {
		// The session polls profile and board on its own while connected.
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := sess.RefreshLeaderboard(ctx); err != nil && ctx.Err() == nil {
				logger.Sugar().Warnw("Leaderboard refresh failed", "error", err)
			}
		}
	}
}

func prompt(publicKey string) bool {
	fmt.Fprintf(os.Stderr, "Connect wallet %s? [y/N] ", publicKey)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
