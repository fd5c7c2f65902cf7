package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
	"github.com/pnlboard/leaderboard-api/internal/wallet"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// UserActions is the user record surface served over HTTP.
type UserActions interface {
	RegisterOrFetch(ctx context.Context, address string) (models.UserRecord, bool, error)
	GetProfile(ctx context.Context, address string) (models.UserRecord, error)
	UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error)
	SetListing(ctx context.Context, address string, listed bool) error
	ListListed(ctx context.Context) ([]models.UserRecord, error)
}

// LeaderboardDeriver produces the server-side ranked board.
type LeaderboardDeriver interface {
	Derive(ctx context.Context, period models.Period) (models.LeaderboardResponse, error)
}

// WriteLimiter decides whether a wallet may perform another write.
type WriteLimiter interface {
	Allow(ctx context.Context, wallet string) (bool, error)
}

// SnapshotQueue reports the snapshot recorder backlog for readiness.
type SnapshotQueue interface {
	QueueDepth() int
}

type Config struct {
	Users       UserActions
	Leaderboard LeaderboardDeriver
	Limiter     WriteLimiter
	Snapshots   SnapshotQueue
	Postgres    *pgxpool.Pool
	ClickHouse  driver.Conn
	Redis       *redis.Client
	AdminToken  string
	Logger      *zap.Logger
}

type Handler struct {
	users       UserActions
	leaderboard LeaderboardDeriver
	limiter     WriteLimiter
	snapshots   SnapshotQueue
	pg          store.PgPool
	ch          driver.Conn
	checks      map[string]func(ctx context.Context) error
	adminHash   string
	logger      *zap.SugaredLogger
	validator   *validator.Validate
}

func New(cfg Config) *Handler {
	h := &Handler{
		users:       cfg.Users,
		leaderboard: cfg.Leaderboard,
		limiter:     cfg.Limiter,
		snapshots:   cfg.Snapshots,
		ch:          cfg.ClickHouse,
		checks:      make(map[string]func(ctx context.Context) error),
		logger:      cfg.Logger.Sugar(),
		validator:   newValidator(),
	}
	if cfg.AdminToken != "" {
		h.adminHash = hashToken(cfg.AdminToken)
	}

	// Only configured dependencies take part in readiness.
	if cfg.Postgres != nil {
		h.pg = cfg.Postgres
		h.checks["postgres"] = cfg.Postgres.Ping
	}
	if cfg.ClickHouse != nil {
		h.checks["clickhouse"] = cfg.ClickHouse.Ping
	}
	if cfg.Redis != nil {
		h.checks["redis"] = func(ctx context.Context) error { return cfg.Redis.Ping(ctx).Err() }
	}
	return h
}

// newValidator registers the "wallet" tag used by request models.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return wallet.ValidAddress(fl.Field().String())
	})
	return v
}
