package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

// Store is the subset of cache operations the OCR decorator needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedOCREngine wraps an OCR engine with a content-addressed result cache.
// The same image bytes always yield the same text, so results are cached by
// digest. Cache failures degrade to a plain engine call.
type CachedOCREngine struct {
	engine provider.OCREngine
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedOCREngine(engine provider.OCREngine, store Store, ttl time.Duration, logger *slog.Logger) *CachedOCREngine {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedOCREngine{
		engine: engine,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

var _ provider.OCREngine = (*CachedOCREngine)(nil)

func (e *CachedOCREngine) Recognize(ctx context.Context, image []byte) (string, error) {
	key := ocrKey(image)

	if cached, err := e.store.Get(ctx, key); err == nil {
		return string(cached), nil
	}

	text, err := e.engine.Recognize(ctx, image)
	if err != nil {
		return "", err
	}

	if err := e.store.Set(ctx, key, []byte(text), e.ttl); err != nil {
		e.logger.Warn("failed to cache OCR result", slog.Any("error", err))
	}

	return text, nil
}

func ocrKey(image []byte) string {
	digest := sha256.Sum256(image)
	return "ocr:" + hex.EncodeToString(digest[:])
}
