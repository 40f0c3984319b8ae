package capability

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/validoc/internal/config"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider/tesseract"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider/vision"
)

// NewFaceDetector creates a FaceDetector instance based on configuration.
//
// Environment variables:
//   - FACE_DETECTOR: "mock" or "rekognition" (default: "mock")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via AWS SDK credential chain
func NewFaceDetector(ctx context.Context, cfg *config.Config) (provider.FaceDetector, error) {
	switch provider.DetectorType(cfg.FaceDetector) {
	case provider.DetectorTypeRekognition:
		rekogConfig := rekognition.DefaultConfig()
		rekogConfig.Region = cfg.AWSRegion

		detector, err := rekognition.NewDetector(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return detector, nil

	case provider.DetectorTypeMock, "":
		// Default to the deterministic detector for dev/test environments
		return mock.NewDetector(), nil

	default:
		return nil, fmt.Errorf("unknown face detector type: %s (supported: %s, %s)",
			cfg.FaceDetector, provider.DetectorTypeMock, provider.DetectorTypeRekognition)
	}
}

// NewOCREngine creates an OCREngine instance based on configuration.
//
// Environment variables:
//   - OCR_ENGINE: "mock" or "tesseract" (default: "mock")
//   - OCR_LANGUAGES: comma-separated Tesseract languages (default: "fra,eng")
func NewOCREngine(cfg *config.Config) (provider.OCREngine, error) {
	switch provider.EngineType(cfg.OCREngine) {
	case provider.EngineTypeTesseract:
		engine, err := tesseract.New(cfg.OCRLanguages...)
		if err != nil {
			return nil, fmt.Errorf("create tesseract engine: %w", err)
		}
		return engine, nil

	case provider.EngineTypeMock, "":
		return &mock.Engine{}, nil

	default:
		return nil, fmt.Errorf("unknown OCR engine type: %s (supported: %s, %s)",
			cfg.OCREngine, provider.EngineTypeMock, provider.EngineTypeTesseract)
	}
}

// NewVisionScorer creates the optional realness scorer. A nil scorer (no API
// key configured) is valid: the pipeline degrades to a message-only check.
func NewVisionScorer(cfg *config.Config) provider.VisionScorer {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return vision.New(cfg.OpenAIAPIKey, cfg.VisionModel)
}
