package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/validoc/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/validoc/internal/dedup"
	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/metrics"
)

type stubDetector struct {
	check *domain.FaceCheck
	err   error
}

func (s stubDetector) Detect(ctx context.Context, image []byte) (*domain.FaceCheck, error) {
	return s.check, s.err
}

type stubEngine struct {
	text string
	err  error
}

func (s stubEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return s.text, s.err
}

type stubStore struct {
	exists   bool
	inserted []domain.DocumentHash
}

func (s *stubStore) Exists(ctx context.Context, digest [32]byte, kind domain.ArtifactKind) (bool, error) {
	return s.exists, nil
}

func (s *stubStore) Insert(ctx context.Context, hash domain.DocumentHash) error {
	s.inserted = append(s.inserted, hash)
	return nil
}

type stubSink struct {
	events []string
}

func (s *stubSink) Dispatch(ctx context.Context, eventType string, data interface{}) {
	s.events = append(s.events, eventType)
}

type stubDrafts struct {
	err   error
	calls int
}

func (s *stubDrafts) UpsertHashes(ctx context.Context, customerID int64, step string, hashes map[string]string) error {
	s.calls++
	return s.err
}

func fullFaceCheck() *domain.FaceCheck {
	return &domain.FaceCheck{
		FaceDetected:      true,
		FaceScore:         0.98,
		FaceCentered:      true,
		FaceCount:         1,
		Boxes:             []domain.BoundingBox{{X: 0.3, Y: 0.2, Width: 0.4, Height: 0.5}},
		LandmarksOK:       true,
		EyesOpen:          true,
		MouthClosed:       true,
		NeutralExpression: true,
		FraudScore:        0.05,
		QualityScore:      0.92,
		IsRealPerson:      true,
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type pipelineOpts struct {
	detector stubDetector
	engine   stubEngine
	store    *stubStore
	drafts   *stubDrafts
	maxSize  int64
}

func newTestPipeline(opts pipelineOpts) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var store dedup.HashStore
	if opts.store != nil {
		store = opts.store
	}

	var drafts *stubDrafts
	if opts.drafts != nil {
		drafts = opts.drafts
	}

	p := NewPipeline(
		analyzer.NewPhotoAnalyzer(opts.detector, nil, logger, time.Second),
		analyzer.NewDocClassifier(opts.engine, logger, time.Second),
		dedup.NewGate(store, logger),
		nil,
		metrics.NewCollector(),
		logger,
		opts.maxSize,
	)
	if drafts != nil {
		p.drafts = drafts
	}
	return p
}

func TestValidateEmptyInput(t *testing.T) {
	p := newTestPipeline(pipelineOpts{})

	report, err := p.Validate(context.Background(), Input{})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrMissingFile)
}

func TestValidatePhotoOnly(t *testing.T) {
	p := newTestPipeline(pipelineOpts{detector: stubDetector{check: fullFaceCheck()}})

	raw := encodePNG(t, solidImage(500, 600, color.White))
	report, err := p.Validate(context.Background(), Input{Photo: raw})

	require.NoError(t, err)
	require.NotNil(t, report.Photo)
	require.NotNil(t, report.Face)
	assert.Nil(t, report.Signature)
	assert.Nil(t, report.CardSides)
	assert.True(t, report.Face.OK)
	assert.Contains(t, report.Timers, "photo")
	assert.Equal(t, "skipped", report.DBSync)
}

func TestValidateNonImagePhoto(t *testing.T) {
	p := newTestPipeline(pipelineOpts{})

	report, err := p.Validate(context.Background(), Input{Photo: []byte("plain text, not an image")})

	require.NoError(t, err)
	require.NotNil(t, report.Photo)
	assert.True(t, report.Photo.HasCode(domain.CodeUnsupportedFormat))
	assert.Equal(t, domain.StatusFailed, report.Status)
}

func TestValidateOversizedArtifact(t *testing.T) {
	p := newTestPipeline(pipelineOpts{maxSize: 64})

	raw := encodePNG(t, solidImage(200, 200, color.White))
	report, err := p.Validate(context.Background(), Input{Photo: raw})

	require.NoError(t, err)
	assert.True(t, report.Photo.HasCode(domain.CodeFileTooLarge))
}

func TestValidateDuplicatePhotoFails(t *testing.T) {
	p := newTestPipeline(pipelineOpts{
		detector: stubDetector{check: fullFaceCheck()},
		store:    &stubStore{exists: true},
	})

	raw := encodePNG(t, solidImage(500, 600, color.White))
	report, err := p.Validate(context.Background(), Input{Photo: raw})

	require.NoError(t, err)
	assert.True(t, report.Photo.HasCode(domain.CodeDuplicateUpload))
	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Equal(t, "skipped", report.DBSync)
}

func TestValidateSameImageBothSidesFails(t *testing.T) {
	p := newTestPipeline(pipelineOpts{engine: stubEngine{text: "PERMIS DE CONDUIRE"}})

	raw := encodePNG(t, solidImage(400, 250, color.White))
	report, err := p.Validate(context.Background(), Input{Front: raw, Back: raw})

	require.NoError(t, err)
	require.NotNil(t, report.CardSides)
	assert.True(t, report.CardSides.HasCode(domain.CodeSidesSameImage))
	assert.Equal(t, domain.StatusFailed, report.Status)
}

func TestValidateDetectedTypeFromFront(t *testing.T) {
	p := newTestPipeline(pipelineOpts{
		detector: stubDetector{check: fullFaceCheck()},
		engine:   stubEngine{text: "RÉPUBLIQUE FRANÇAISE PASSEPORT"},
	})

	raw := encodePNG(t, solidImage(400, 250, color.White))
	report, err := p.Validate(context.Background(), Input{Front: raw})

	require.NoError(t, err)
	assert.Equal(t, domain.DocTypePassport, report.DetectedType)
	require.NotNil(t, report.OCR)
	assert.True(t, report.OCR.OK)
}

func TestValidateFaceUnavailableNeverOK(t *testing.T) {
	p := newTestPipeline(pipelineOpts{
		detector: stubDetector{err: domain.ErrDetectorUnavailable},
	})

	raw := encodePNG(t, solidImage(500, 600, color.White))
	report, err := p.Validate(context.Background(), Input{Photo: raw})

	require.NoError(t, err)
	assert.True(t, report.FaceUnavailable)
	assert.True(t, report.Face.HasCode(domain.CodeFaceUnavailable))
	assert.NotEqual(t, domain.StatusOK, report.Status)
}

func TestValidateEmitsOutcomeEvents(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		sink := &stubSink{}
		p := newTestPipeline(pipelineOpts{detector: stubDetector{check: fullFaceCheck()}}).WithEvents(sink)

		raw := encodePNG(t, solidImage(500, 600, color.White))
		_, err := p.Validate(context.Background(), Input{Photo: raw})

		require.NoError(t, err)
		require.Len(t, sink.events, 1)
		assert.Equal(t, EventValidationCompleted, sink.events[0])
	})

	t.Run("duplicate raises fraud and failed", func(t *testing.T) {
		sink := &stubSink{}
		p := newTestPipeline(pipelineOpts{
			detector: stubDetector{check: fullFaceCheck()},
			store:    &stubStore{exists: true},
		}).WithEvents(sink)

		raw := encodePNG(t, solidImage(500, 600, color.White))
		_, err := p.Validate(context.Background(), Input{Photo: raw})

		require.NoError(t, err)
		assert.Contains(t, sink.events, EventFraudDetected)
		assert.Contains(t, sink.events, EventValidationFailed)
	})
}

func TestValidateDraftSyncOutcomes(t *testing.T) {
	customerID := int64(42)

	t.Run("sync ok", func(t *testing.T) {
		drafts := &stubDrafts{}
		store := &stubStore{}
		p := newTestPipeline(pipelineOpts{
			detector: stubDetector{check: fullFaceCheck()},
			store:    store,
			drafts:   drafts,
		})

		raw := encodePNG(t, solidImage(500, 600, color.White))
		report, err := p.Validate(context.Background(), Input{
			Photo:      raw,
			CustomerID: &customerID,
			Step:       "documents",
		})

		require.NoError(t, err)
		if report.Status != domain.StatusFailed {
			assert.Equal(t, "ok", report.DBSync)
			assert.Equal(t, 1, drafts.calls)
			assert.Len(t, store.inserted, 1)
		}
	})

	t.Run("sync failure is silent", func(t *testing.T) {
		drafts := &stubDrafts{err: domain.ErrInternal}
		p := newTestPipeline(pipelineOpts{
			detector: stubDetector{check: fullFaceCheck()},
			drafts:   drafts,
		})

		raw := encodePNG(t, solidImage(500, 600, color.White))
		report, err := p.Validate(context.Background(), Input{
			Photo:      raw,
			CustomerID: &customerID,
			Step:       "documents",
		})

		require.NoError(t, err)
		if report.Status != domain.StatusFailed {
			assert.Equal(t, "failed", report.DBSync)
		}
	})
}
