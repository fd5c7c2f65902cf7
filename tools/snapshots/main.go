// Command snapshots prints the most recent leaderboard snapshot stored in ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/pnlboard/leaderboard-api/internal/database"
)

const latestSnapshot = `
	SELECT snapshot_id, period, captured_at, rank, wallet_address, name, pnl, value, green_trades, red_trades
	FROM leaderboard_snapshots
	WHERE snapshot_id = (
		SELECT snapshot_id FROM leaderboard_snapshots
		WHERE period = ?
		ORDER BY captured_at DESC
		LIMIT 1
	)
	ORDER BY rank`

func main() {
	period := flag.String("period", "daily", "leaderboard period to inspect")
	flag.Parse()

	dsn := os.Getenv("CLICKHOUSE_URL")
	if dsn == "" {
		log.Fatal("CLICKHOUSE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := database.ConnectClickHouse(ctx, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	var total uint64
	if err := conn.QueryRow(ctx, "SELECT count(DISTINCT snapshot_id) FROM leaderboard_snapshots").Scan(&total); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Snapshots stored: %d\n", total)

	rows, err := conn.Query(ctx, latestSnapshot, *period)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Trader", "Wallet", "PnL", "Value", "Green", "Red"})
	table.SetBorder(false)

	var (
		id       uuid.UUID
		captured time.Time
	)
	for rows.Next() {
		var (
			p, walletAddr, name string
			rank, green, red    uint32
			pnl, value          decimal.Decimal
		)
		if err := rows.Scan(&id, &p, &captured, &rank, &walletAddr, &name, &pnl, &value, &green, &red); err != nil {
			log.Fatal(err)
		}
		table.Append([]string{
			fmt.Sprint(rank), name, walletAddr,
			pnl.StringFixed(4), value.StringFixed(4),
			fmt.Sprint(green), fmt.Sprint(red),
		})
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	if table.NumLines() == 0 {
		fmt.Printf("No %s snapshots yet.\n", *period)
		return
	}
	fmt.Printf("Latest %s snapshot %s at %s\n", *period, id, captured.Format(time.RFC3339))
	table.Render()
}
