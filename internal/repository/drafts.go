package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

type KYCDraftRepository struct {
	pool PgxPool
}

func NewKYCDraftRepository(pool PgxPool) *KYCDraftRepository {
	return &KYCDraftRepository{pool: pool}
}

// UpsertHashes merges the validated artifact digests for one onboarding step
// into the customer's draft row. Existing keys for other steps are preserved
// by the jsonb concatenation.
func (r *KYCDraftRepository) UpsertHashes(ctx context.Context, customerID int64, step string, hashes map[string]string) error {
	query := `
		INSERT INTO kyc_drafts (customer_id, step, hashes, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (customer_id) DO UPDATE
		SET step = EXCLUDED.step,
		    hashes = kyc_drafts.hashes || EXCLUDED.hashes,
		    updated_at = NOW()
	`

	payload, err := json.Marshal(hashes)
	if err != nil {
		return fmt.Errorf("marshal draft hashes: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, customerID, step, payload); err != nil {
		return fmt.Errorf("upsert kyc draft: %w", err)
	}

	return nil
}
