package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the final decision of the validation pipeline.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFlagged Status = "flagged"
	StatusFailed  Status = "failed"
)

// ValidationReport aggregates every sub-result of one validation request.
// It is a transient output value, constructed fresh per request and never
// persisted as a whole.
type ValidationReport struct {
	ID uuid.UUID `json:"id"`

	// Per-artifact sub-results; nil means the check was not attempted.
	Photo     *AnalysisResult `json:"photo,omitempty"`
	Face      *AnalysisResult `json:"face,omitempty"`
	Signature *AnalysisResult `json:"signature,omitempty"`
	Front     *AnalysisResult `json:"front,omitempty"`
	Back      *AnalysisResult `json:"back,omitempty"`
	CardSides *AnalysisResult `json:"card_sides,omitempty"`
	OCR       *AnalysisResult `json:"ocr,omitempty"`
	OCRBack   *AnalysisResult `json:"ocr_back,omitempty"`

	// FaceUnavailable marks that the detection capability could not be
	// reached; the face result then carries partial, not zero, weight.
	FaceUnavailable bool `json:"face_unavailable,omitempty"`

	DetectedType DocType             `json:"detected_type,omitempty"`
	OCRFront     *OCRDocResult       `json:"ocr_front_result,omitempty"`
	OCRBackDoc   *OCRDocResult       `json:"ocr_back_result,omitempty"`
	LicenseBack  *LicenseBackExtract `json:"license_back,omitempty"`

	Score  float64 `json:"score"`
	Status Status  `json:"status"`

	Timers    map[string]int64 `json:"timers,omitempty"` // stage -> milliseconds
	DBSync    string           `json:"db_sync,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewValidationReport returns an empty report with a fresh identifier.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		ID:        uuid.New(),
		Timers:    make(map[string]int64),
		CreatedAt: time.Now().UTC(),
	}
}

// Results returns the attempted sub-results in a stable order.
func (r *ValidationReport) Results() []*AnalysisResult {
	all := []*AnalysisResult{
		r.Photo, r.Face, r.Signature, r.Front, r.Back, r.CardSides, r.OCR, r.OCRBack,
	}
	out := make([]*AnalysisResult, 0, len(all))
	for _, res := range all {
		if res != nil {
			out = append(out, res)
		}
	}
	return out
}

// HasSecurityCritical reports whether any attempted sub-result carries a
// security-critical code.
func (r *ValidationReport) HasSecurityCritical() bool {
	for _, res := range r.Results() {
		if res.HasSecurityCritical() {
			return true
		}
	}
	return false
}

// Summary is the derived view returned to callers alongside the report.
type Summary struct {
	IsValid      bool             `json:"is_valid"`
	Status       Status           `json:"status"`
	DetectedType string           `json:"detected_type,omitempty"`
	Message      string           `json:"message"`
	ScoreRatio   float64          `json:"score_ratio"`
	Codes        []string         `json:"codes,omitempty"`
	Suggestions  []string         `json:"suggestions,omitempty"`
	Timers       map[string]int64 `json:"timers,omitempty"`
	DBSync       string           `json:"db_sync,omitempty"`
}

// Summarize flattens the report into the caller-facing summary. Codes keep
// first-seen order across sub-results; suggestions stay aligned with codes.
func (r *ValidationReport) Summarize() Summary {
	s := Summary{
		IsValid:    r.Status == StatusOK,
		Status:     r.Status,
		ScoreRatio: r.Score / 100.0,
		Timers:     r.Timers,
		DBSync:     r.DBSync,
	}

	if r.DetectedType != "" && r.DetectedType != DocTypeUnknown {
		s.DetectedType = string(r.DetectedType)
	}

	seen := make(map[DiagnosticCode]bool)
	var firstMessage string
	for _, res := range r.Results() {
		if firstMessage == "" && !res.OK && len(res.Messages) > 0 {
			firstMessage = res.Messages[0]
		}
		for _, code := range res.Codes {
			if seen[code] {
				continue
			}
			seen[code] = true
			s.Codes = append(s.Codes, string(code))
			s.Suggestions = append(s.Suggestions, SuggestionFor(code))
		}
	}

	switch {
	case r.Status == StatusOK:
		s.Message = "document validation passed"
	case firstMessage != "":
		s.Message = firstMessage
	case r.Status == StatusFlagged:
		s.Message = "document validation requires manual review"
	default:
		s.Message = "document validation failed"
	}

	return s
}
