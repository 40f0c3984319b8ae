package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use. pgxmock
// satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DocumentHashRepositoryInterface defines operations for the duplicate
// detection digest store.
type DocumentHashRepositoryInterface interface {
	Exists(ctx context.Context, digest [32]byte, kind domain.ArtifactKind) (bool, error)
	Insert(ctx context.Context, hash domain.DocumentHash) error
}

// KYCDraftRepositoryInterface defines operations for syncing validated
// artifact digests into the customer's onboarding draft.
type KYCDraftRepositoryInterface interface {
	UpsertHashes(ctx context.Context, customerID int64, step string, hashes map[string]string) error
}
