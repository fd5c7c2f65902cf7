// Package render prints session state for the terminal client.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/ranking"
	"github.com/pnlboard/leaderboard-api/internal/session"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gold   = color.New(color.FgYellow, color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	errorC = color.New(color.FgRed, color.Bold)
	infoC  = color.New(color.FgCyan)
)

var podiumLabel = map[models.Position]string{
	models.PositionCenter: "1st",
	models.PositionLeft:   "2nd",
	models.PositionRight:  "3rd",
}

// Board writes the podium followed by the ranked table.
func Board(w io.Writer, board models.Leaderboard) {
	if board.Len() == 0 {
		fmt.Fprintln(w, faint("No listed traders yet."))
		return
	}

	for _, t := range board.TopTraders {
		fmt.Fprintf(w, "%s  %s  %s  PnL %s  Value %s\n",
			gold(podiumLabel[t.Position]), t.Name, faint(wallet.Short(t.WalletAddress, 8)),
			signed(t), t.Value.StringFixed(2))
	}

	if len(board.RankedTraders) == 0 {
		return
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Trader", "Wallet", "PnL", "Value", "Win/Loss", "Socials"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, t := range board.RankedTraders {
		table.Append([]string{
			fmt.Sprint(t.Rank),
			t.Name,
			wallet.Short(t.WalletAddress, 8),
			signed(t),
			t.Value.StringFixed(2),
			trades(t),
			strings.Join(t.Socials, " "),
		})
	}
	table.Render()
}

func signed(t models.Trader) string {
	s := t.PnL.StringFixed(2)
	if t.PnL.IsNegative() {
		return red(s)
	}
	return green("+" + s)
}

func trades(t models.Trader) string {
	greenPct, redPct := ranking.TradePercentages(t.GreenTrades, t.RedTrades)
	return fmt.Sprintf("%s/%s (%.0f%%/%.0f%%)", green(t.GreenTrades), red(t.RedTrades), greenPct, redPct)
}

// Status writes a one-line summary of the connection and listing state.
func Status(w io.Writer, snap session.Snapshot) {
	if snap.State != session.Connected {
		fmt.Fprintf(w, "Wallet: %s\n", snap.State)
		return
	}

	name := wallet.Short(snap.WalletAddress, 4)
	if snap.Profile != nil {
		name = ranking.DisplayName(*snap.Profile)
	}
	listing := "not listed"
	if snap.Listed {
		listing = "listed"
	}
	if snap.Listing.InFlight() {
		listing += " (updating)"
	}
	fmt.Fprintf(w, "Wallet: %s  %s  %s\n", wallet.Short(snap.WalletAddress, 8), name, listing)
}

// Notifier prints leaderboard updates to Out and notices to Err.
type Notifier struct {
	Out io.Writer
	Err io.Writer

	mu sync.Mutex
}

func (n *Notifier) Notify(level session.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if level == session.NoticeError {
		errorC.Fprintln(n.Err, message)
		return
	}
	infoC.Fprintln(n.Err, message)
}

func (n *Notifier) LeaderboardUpdated(board models.Leaderboard) {
	n.mu.Lock()
	defer n.mu.Unlock()
	Board(n.Out, board)
	fmt.Fprintln(n.Out)
}
