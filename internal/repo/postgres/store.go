package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecavus/wedding-rsvp/internal/domain"
)

// DB is satisfied by both *pgxpool.Pool and pgx.Tx, so every query below
// runs against whichever scope the caller is in.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db   DB
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// Transaction runs fn against a transaction-scoped store. Any error rolls
// back every write made through it.
func (s *Store) Transaction(ctx context.Context, fn func(domain.Store) error) error {
	if s.pool == nil {
		// Already transaction-scoped.
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ domain.Store = (*Store)(nil)
