package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgUserStore struct {
	pg PgPool
}

func NewPostgresStore(pg PgPool) UserStore {
	return &pgUserStore{pg: pg}
}

func scanUser(row pgx.Row) (models.UserRecord, error) {
	var u models.UserRecord
	err := row.Scan(&u.ID, &u.WalletAddress, &u.Nickname, &u.Telegram, &u.Discord,
		&u.Twitter, &u.Twitch, &u.Kick, &u.Listed, &u.CreatedAt)
	return u, err
}

func (s *pgUserStore) GetByWallet(ctx context.Context, address string) (models.UserRecord, error) {
	u, err := scanUser(s.pg.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE wallet_address = $1", address))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserRecord{}, ErrNotFound
	}
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *pgUserStore) Create(ctx context.Context, address string) (models.UserRecord, error) {
	u, err := scanUser(s.pg.QueryRow(ctx,
		"INSERT INTO users (wallet_address) VALUES ($1) RETURNING "+userColumns, address))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.UserRecord{}, ErrConflict
		}
		return models.UserRecord{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (s *pgUserStore) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	if upd.IsEmpty() {
		return s.GetByWallet(ctx, address)
	}
	query, args, err := BuildProfileUpdate(address, upd)
	if err != nil {
		return models.UserRecord{}, err
	}

	u, err := scanUser(s.pg.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserRecord{}, ErrNotFound
	}
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *pgUserStore) SetListed(ctx context.Context, address string, listed bool) error {
	tag, err := s.pg.Exec(ctx, "UPDATE users SET listed = $1 WHERE wallet_address = $2", listed, address)
	if err != nil {
		return fmt.Errorf("failed to set listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgUserStore) ListListed(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := s.pg.Query(ctx, "SELECT "+userColumns+" FROM users WHERE listed = true")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.UserRecord, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
