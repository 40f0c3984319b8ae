package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

// Engine implements provider.OCREngine over a long-lived Tesseract worker.
// The gosseract client is not goroutine-safe, so calls are serialized with a
// mutex; the pipeline bounds wall-clock time per call through the context.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

var _ provider.OCREngine = (*Engine)(nil)

// New creates a Tesseract engine configured for the given languages
// (e.g. "fra", "eng"). Languages default to English when empty.
func New(languages ...string) (*Engine, error) {
	client := gosseract.NewClient()

	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tesseract languages: %w", err)
		}
	}

	return &Engine{client: client}, nil
}

// Recognize extracts text from an image. Failures are wrapped in
// domain.ErrOCRUnavailable so the pipeline can degrade instead of aborting.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.ErrOCRUnavailable.WithError(err)
	}

	type result struct {
		text string
		err  error
	}

	done := make(chan result, 1)
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if err := e.client.SetImageFromBytes(image); err != nil {
			done <- result{err: fmt.Errorf("set image: %w", err)}
			return
		}
		text, err := e.client.Text()
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		// The worker finishes in the background; the buffered channel keeps
		// it from leaking.
		return "", domain.ErrOCRUnavailable.WithError(ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", domain.ErrOCRUnavailable.WithError(res.err)
		}
		return res.text, nil
	}
}

// Close releases the underlying Tesseract worker.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
