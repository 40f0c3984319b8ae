package service

import (
	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// Check weights. The biometric decision dominates; everything else refines.
const (
	weightPhoto     = 10.0
	weightFace      = 30.0
	weightSignature = 15.0
	weightFront     = 10.0
	weightBack      = 10.0
	weightCardSides = 10.0
	weightOCR       = 10.0
	weightOCRBack   = 5.0
)

// Decision thresholds on the normalized 0-100 score.
const (
	scorePass   = 80.0
	scoreReview = 60.0
)

// faceUnavailableCredit is the share of the face weight granted when the
// detection capability was down. The face could not be cleared, but the
// submission is not punished as if a check had failed outright.
const faceUnavailableCredit = 0.5

type component struct {
	result *domain.AnalysisResult
	weight float64
	earned float64
}

func components(r *domain.ValidationReport) []component {
	build := func(res *domain.AnalysisResult, weight float64) component {
		c := component{result: res, weight: weight}
		if res != nil && res.OK {
			c.earned = weight
		}
		return c
	}

	face := build(r.Face, weightFace)
	if r.FaceUnavailable && r.Face != nil {
		face.earned = weightFace * faceUnavailableCredit
	}

	return []component{
		build(r.Photo, weightPhoto),
		face,
		build(r.Signature, weightSignature),
		build(r.Front, weightFront),
		build(r.Back, weightBack),
		build(r.CardSides, weightCardSides),
		build(r.OCR, weightOCR),
		build(r.OCRBack, weightOCRBack),
	}
}

// ComputeScore normalizes earned credit over the checks that were actually
// attempted, so a photo-only submission is scored against photo checks alone
// rather than diluted by absent artifacts.
func ComputeScore(r *domain.ValidationReport) float64 {
	var attempted, earned float64
	for _, c := range components(r) {
		if c.result == nil {
			continue
		}
		attempted += c.weight
		earned += c.earned
	}

	if attempted == 0 {
		return 0
	}
	return earned / attempted * 100.0
}

// FinalizeStatus computes the score and derives the final decision. Any
// security-critical diagnostic forces a hard failure regardless of score,
// and a report produced without face coverage never passes cleanly.
func FinalizeStatus(r *domain.ValidationReport) {
	r.Score = ComputeScore(r)

	switch {
	case r.HasSecurityCritical():
		r.Status = domain.StatusFailed
	case r.Score >= scorePass:
		r.Status = domain.StatusOK
	case r.Score >= scoreReview:
		r.Status = domain.StatusFlagged
	default:
		r.Status = domain.StatusFailed
	}

	if r.FaceUnavailable && r.Status == domain.StatusOK {
		r.Status = domain.StatusFlagged
	}
}
