package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// FaceDetector is the external face detection capability. Implementations
// must distinguish "no face found" (a FaceCheck with FaceCount == 0) from
// "detector down" (an error wrapping domain.ErrDetectorUnavailable). The
// pipeline converts both into the three-valued domain.FaceDetection.
type FaceDetector interface {
	Detect(ctx context.Context, image []byte) (*domain.FaceCheck, error)
}

// OCREngine is the external text recognition capability. Stateless per call;
// implementations may keep a long-lived worker handle internally.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// VisionScorer is the optional realness scorer. Absence or failure must
// degrade gracefully: the pipeline records a message, never a rejection.
type VisionScorer interface {
	Score(ctx context.Context, image []byte) (*domain.VisionVerdict, error)
}
