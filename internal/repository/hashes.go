package repository

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

type DocumentHashRepository struct {
	pool PgxPool
}

func NewDocumentHashRepository(pool PgxPool) *DocumentHashRepository {
	return &DocumentHashRepository{pool: pool}
}

// Exists reports whether an artifact with this digest and kind was seen before.
func (r *DocumentHashRepository) Exists(ctx context.Context, digest [32]byte, kind domain.ArtifactKind) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM document_hashes
			WHERE digest = $1 AND kind = $2
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, digest[:], string(kind)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("document hash exists: %w", err)
	}

	return exists, nil
}

// Insert records an artifact digest. A concurrent insert of the same digest
// is not an error: the record already being there is the desired end state.
func (r *DocumentHashRepository) Insert(ctx context.Context, hash domain.DocumentHash) error {
	query := `
		INSERT INTO document_hashes (digest, kind, customer_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (digest, kind) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, hash.Digest[:], string(hash.Kind), hash.CustomerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insert document hash: %w", err)
	}

	return nil
}
