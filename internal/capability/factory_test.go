package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/validoc/internal/config"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider/mock"
)

func TestNewFaceDetector(t *testing.T) {
	tests := []struct {
		name         string
		detectorType string
		wantErr      bool
	}{
		{name: "mock detector", detectorType: "mock", wantErr: false},
		{name: "empty defaults to mock", detectorType: "", wantErr: false},
		{name: "unknown type", detectorType: "skynet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{FaceDetector: tt.detectorType}

			detector, err := NewFaceDetector(context.Background(), cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, detector)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, &mock.Detector{}, detector)
		})
	}
}

func TestNewOCREngine(t *testing.T) {
	cfg := &config.Config{OCREngine: "mock"}
	engine, err := NewOCREngine(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mock.Engine{}, engine)

	cfg = &config.Config{OCREngine: "abbyy"}
	_, err = NewOCREngine(cfg)
	assert.Error(t, err)
}

func TestNewVisionScorerOptional(t *testing.T) {
	assert.Nil(t, NewVisionScorer(&config.Config{}))
	assert.NotNil(t, NewVisionScorer(&config.Config{OpenAIAPIKey: "sk-test"}))
}
