// Package worker records leaderboard snapshots to ClickHouse off the request
// path. Derivations are queued on a buffered channel, batched per worker and
// flushed on batch size or interval. A full queue sheds load instead of
// blocking the handler.
package worker

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// Prometheus metrics
var (
	snapshotsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pnlboard_snapshots_queued_total",
		Help: "Leaderboard snapshots accepted by the recorder",
	})

	snapshotsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pnlboard_snapshots_written_total",
		Help: "Leaderboard snapshots written to ClickHouse",
	})

	snapshotsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pnlboard_snapshots_failed_total",
		Help: "Leaderboard snapshots lost to failed batch inserts",
	})

	snapshotsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pnlboard_snapshots_load_shed_total",
		Help: "Leaderboard snapshots dropped because the queue was full or stopped",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pnlboard_snapshot_queue_depth",
		Help: "Current depth of the snapshot queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pnlboard_snapshot_batch_insert_duration_seconds",
		Help:    "Duration of snapshot batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

const insertSnapshots = `
	INSERT INTO leaderboard_snapshots (
		snapshot_id, period, captured_at, rank, wallet_address, name,
		pnl, value, green_trades, red_trades
	)`

// maxNameLen bounds trader names written to the analytics table.
const maxNameLen = 64

// Job is one queued snapshot.
type Job struct {
	Snapshot models.LeaderboardSnapshot
	Queued   time.Time
}

// PoolConfig configures the recorder
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool batches snapshots into ClickHouse.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.reportQueueDepth()

	p.logger.Infow("Snapshot recorder started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop drains the queue, flushes every worker's batch and waits for them.
func (p *Pool) Stop() {
	p.logger.Info("Stopping snapshot recorder...")
	close(p.jobQueue)
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Snapshot recorder stopped")
}

// Enqueue adds a snapshot without blocking. It returns false when the queue
// is full or the recorder has been stopped.
func (p *Pool) Enqueue(snap models.LeaderboardSnapshot) (ok bool) {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Snapshot dropped, recorder stopped", "snapshot", snap.ID)
			snapshotsLoadShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- Job{Snapshot: snap, Queued: time.Now()}:
		snapshotsQueued.Inc()
		return true
	default:
		snapshotsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Snapshot batch failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			snapshotsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Snapshot batch written", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			snapshotsWritten.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes one row per trader of every snapshot in the batch.
func (p *Pool) processBatch(batch []Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertSnapshots)
	if err != nil {
		return err
	}

	for _, job := range batch {
		snap := job.Snapshot
		for _, tr := range snap.Traders {
			err := chBatch.Append(
				snap.ID,
				string(snap.Period),
				snap.CapturedAt,
				uint32(tr.Rank),
				tr.WalletAddress,
				sanitizeName(tr.Name),
				tr.PnL,
				tr.Value,
				uint32(tr.GreenTrades),
				uint32(tr.RedTrades),
			)
			if err != nil {
				p.logger.Warnw("Failed to append snapshot row", "error", err, "snapshot", snap.ID, "wallet", tr.WalletAddress)
			}
		}
	}

	return chBatch.Send()
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// sanitizeName drops control and other non-printable runes and caps the length.
func sanitizeName(s string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	if r := []rune(clean); len(r) > maxNameLen {
		clean = string(r[:maxNameLen])
	}
	return clean
}

// NopRecorder discards snapshots. It stands in when ClickHouse is not configured.
type NopRecorder struct{}

func (NopRecorder) Enqueue(models.LeaderboardSnapshot) bool { return true }
