package dedup

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// HashStore persists artifact digests for duplicate detection.
type HashStore interface {
	Exists(ctx context.Context, digest [32]byte, kind domain.ArtifactKind) (bool, error)
	Insert(ctx context.Context, hash domain.DocumentHash) error
}

// Gate is the duplicate-upload check. It is strictly best effort on the
// storage side: a store that errors or is absent never blocks a validation,
// only a confirmed duplicate does.
type Gate struct {
	store  HashStore
	logger *slog.Logger
}

func NewGate(store HashStore, logger *slog.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// Digest returns the SHA-256 digest of an artifact's raw bytes.
func Digest(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Check looks the artifact up and appends the duplicate diagnostic to the
// result on a hit. Lookup failures are logged and ignored.
func (g *Gate) Check(ctx context.Context, res *domain.AnalysisResult, raw []byte, kind domain.ArtifactKind) {
	if g.store == nil {
		return
	}

	exists, err := g.store.Exists(ctx, Digest(raw), kind)
	if err != nil {
		g.logger.Warn("duplicate lookup failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err))
		return
	}
	if exists {
		res.AddFailure(domain.CodeDuplicateUpload, "this document was already uploaded")
	}
}

// Record stores the artifact digest for future lookups. Failures are logged
// and swallowed.
func (g *Gate) Record(ctx context.Context, raw []byte, kind domain.ArtifactKind, customerID *int64) {
	if g.store == nil {
		return
	}

	hash := domain.DocumentHash{
		Digest:     Digest(raw),
		Kind:       kind,
		CustomerID: customerID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := g.store.Insert(ctx, hash); err != nil {
		g.logger.Warn("digest insert failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}
}
