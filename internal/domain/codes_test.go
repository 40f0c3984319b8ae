package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionTableIsComplete(t *testing.T) {
	codes := []DiagnosticCode{
		CodeFaceUnavailable, CodeNoFace, CodeLowFaceConfidence, CodeMultipleFaces,
		CodeFaceOffCenter, CodeFaceTooSmall, CodeEyesClosed, CodeMouthOpen,
		CodeNotNeutral, CodeFraudSuspected, CodeLowQuality, CodeNotRealPerson,
		CodeTooDark, CodeTooBright, CodeLowContrast, CodeBlurry,
		CodeBusyBackground, CodeNonWhiteBackground, CodeColorCast, CodeNotPortrait,
		CodeImageTooSmall, CodeSignatureAbsent, CodeSignatureInvisible,
		CodeSidesSameImage, CodeSidesSizeDiffer, CodeSidesOrientation,
		CodeUnknownDocType, CodeOCRUnavailable, CodeDuplicateUpload,
		CodeUnsupportedFormat, CodeMissingFile, CodeFileTooLarge,
	}

	seen := make(map[string]DiagnosticCode)
	for _, code := range codes {
		suggestion := SuggestionFor(code)
		assert.NotEmpty(t, suggestion, "code %s has no suggestion", code)

		// One canonical suggestion per code, and no two codes sharing one.
		if prev, ok := seen[suggestion]; ok {
			t.Errorf("codes %s and %s share suggestion %q", prev, code, suggestion)
		}
		seen[suggestion] = code
	}
}

func TestSecurityCriticalCodes(t *testing.T) {
	assert.True(t, IsSecurityCritical(CodeFraudSuspected))
	assert.True(t, IsSecurityCritical(CodeNotRealPerson))
	assert.True(t, IsSecurityCritical(CodeDuplicateUpload))
	assert.True(t, IsSecurityCritical(CodeSidesSameImage))

	assert.False(t, IsSecurityCritical(CodeBlurry))
	assert.False(t, IsSecurityCritical(CodeFaceUnavailable))
}

func TestAnalysisResultAddFailure(t *testing.T) {
	r := NewAnalysisResult()
	assert.True(t, r.OK)

	r.AddFailure(CodeBlurry, "image is blurry")
	r.AddFailure(CodeBlurry, "image is still blurry")
	r.AddFailure(CodeTooDark, "image is too dark")

	assert.False(t, r.OK)
	assert.Equal(t, []string{"image is blurry", "image is still blurry", "image is too dark"}, r.Messages)
	assert.Equal(t, []DiagnosticCode{CodeBlurry, CodeTooDark}, r.Codes)
	assert.Len(t, r.Suggestions, 2)
}
