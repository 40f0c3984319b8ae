package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

func passing() *domain.AnalysisResult {
	return domain.NewAnalysisResult()
}

func failing(code domain.DiagnosticCode) *domain.AnalysisResult {
	res := domain.NewAnalysisResult()
	res.AddFailure(code, "check failed")
	return res
}

func TestComputeScoreNormalizesOverAttemptedChecks(t *testing.T) {
	photoOnly := domain.NewValidationReport()
	photoOnly.Photo = passing()
	assert.InDelta(t, 100.0, ComputeScore(photoOnly), 0.001)

	mixed := domain.NewValidationReport()
	mixed.Photo = passing()
	mixed.Signature = failing(domain.CodeSignatureAbsent)
	// 10 of 25 attempted points
	assert.InDelta(t, 40.0, ComputeScore(mixed), 0.001)
}

func TestComputeScoreEmptyReport(t *testing.T) {
	assert.Zero(t, ComputeScore(domain.NewValidationReport()))
}

func TestFinalizeStatusThresholds(t *testing.T) {
	tests := []struct {
		name  string
		build func() *domain.ValidationReport
		want  domain.Status
	}{
		{
			name: "all checks pass",
			build: func() *domain.ValidationReport {
				r := domain.NewValidationReport()
				r.Photo, r.Face, r.Signature = passing(), passing(), passing()
				return r
			},
			want: domain.StatusOK,
		},
		{
			name: "signature failure drags into review band",
			build: func() *domain.ValidationReport {
				r := domain.NewValidationReport()
				r.Photo, r.Face = passing(), passing()
				r.Signature = failing(domain.CodeSignatureAbsent)
				// 40 of 55 points = 72.7
				return r
			},
			want: domain.StatusFlagged,
		},
		{
			name: "face failure fails outright",
			build: func() *domain.ValidationReport {
				r := domain.NewValidationReport()
				r.Photo, r.Signature = passing(), passing()
				r.Face = failing(domain.CodeNoFace)
				// 25 of 55 points = 45.5
				return r
			},
			want: domain.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build()
			FinalizeStatus(r)
			assert.Equal(t, tt.want, r.Status)
		})
	}
}

func TestFinalizeStatusSecurityCriticalOverridesScore(t *testing.T) {
	r := domain.NewValidationReport()
	r.Photo, r.Face, r.Front, r.Back, r.CardSides, r.OCR, r.OCRBack =
		passing(), passing(), passing(), passing(), passing(), passing(), passing()
	r.Signature = failing(domain.CodeDuplicateUpload)

	FinalizeStatus(r)

	// 85 of 100 points would pass on score alone.
	assert.Greater(t, r.Score, scorePass)
	assert.Equal(t, domain.StatusFailed, r.Status)
}

func TestFinalizeStatusFaceUnavailableNeverPasses(t *testing.T) {
	r := domain.NewValidationReport()
	r.Photo, r.Signature, r.Front, r.Back, r.CardSides, r.OCR, r.OCRBack =
		passing(), passing(), passing(), passing(), passing(), passing(), passing()
	r.Face = failing(domain.CodeFaceUnavailable)
	r.FaceUnavailable = true

	FinalizeStatus(r)

	// Half face credit: 85 of 100 points, above the pass threshold.
	assert.Greater(t, r.Score, scorePass)
	assert.Equal(t, domain.StatusFlagged, r.Status)
}

func TestFinalizeStatusIsIdempotent(t *testing.T) {
	r := domain.NewValidationReport()
	r.Photo, r.Face = passing(), failing(domain.CodeEyesClosed)

	FinalizeStatus(r)
	score, status := r.Score, r.Status
	FinalizeStatus(r)

	assert.Equal(t, score, r.Score)
	assert.Equal(t, status, r.Status)
}
