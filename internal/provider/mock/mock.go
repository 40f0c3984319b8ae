package mock

import (
	"context"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

// Detector implements provider.FaceDetector for tests and development.
// It deterministically reports one confident, centered face for any image of
// plausible size, and no face for very small payloads.
type Detector struct{}

// NewDetector creates a new mock detector instance
func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(ctx context.Context, image []byte) (*domain.FaceCheck, error) {
	if len(image) < 100 {
		return nil, domain.ErrInvalidImage
	}
	if len(image) < 1000 {
		return &domain.FaceCheck{}, nil
	}

	return &domain.FaceCheck{
		FaceDetected: true,
		FaceScore:    0.99,
		FaceCentered: true,
		FaceCount:    1,
		Boxes: []domain.BoundingBox{
			{X: 0.3, Y: 0.2, Width: 0.4, Height: 0.5},
		},
		LandmarksOK:       true,
		EyesOpen:          true,
		MouthClosed:       true,
		NeutralExpression: true,
		FraudScore:        0.05,
		QualityScore:      0.95,
		IsRealPerson:      true,
	}, nil
}

// Engine implements provider.OCREngine returning a fixed text, useful for
// wiring tests without a Tesseract install.
type Engine struct {
	Text string
}

func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	return e.Text, nil
}

var (
	_ provider.FaceDetector = (*Detector)(nil)
	_ provider.OCREngine    = (*Engine)(nil)
)
