// Package repository implements the gateway backend on PostgreSQL.
// It uses pgx directly (no ORM): accounts and sessions get their own tables,
// documents are JSONB rows keyed by (collection, id) and files are BYTEA.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
)

// uniqueViolation is the SQLSTATE of a unique constraint failure.
const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a gateway.Backend backed by PostgreSQL.
type Store struct {
	db        DB
	signer    *auth.Signer
	publicURL string
	now       func() time.Time
}

var _ gateway.Backend = (*Store)(nil)

// New constructs a Store. Run database.Migrate first.
func New(db DB, signer *auth.Signer, publicURL string) *Store {
	return &Store{db: db, signer: signer, publicURL: publicURL, now: time.Now}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
