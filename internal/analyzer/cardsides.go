package analyzer

import (
	"fmt"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
)

// AnalyzeCardSides checks that the front and back of a document are
// plausibly two sides of the same physical card: comparable dimensions,
// same orientation, and visually distinct content. It exists to catch the
// common upload mistake of submitting the same file twice, and trivially
// swapped or forged submissions.
func AnalyzeCardSides(front, back image.Image) *domain.AnalysisResult {
	return analyzeCardSides(front, back, defaultCardSideThresholds())
}

func analyzeCardSides(front, back image.Image, t CardSideThresholds) *domain.AnalysisResult {
	res := domain.NewAnalysisResult()

	frontStats := imaging.Analyze(front)
	backStats := imaging.Analyze(back)

	res.SetStat("front_width", frontStats.Width)
	res.SetStat("front_height", frontStats.Height)
	res.SetStat("back_width", backStats.Width)
	res.SetStat("back_height", backStats.Height)

	if frontStats.MinSide() < t.MinSide {
		res.AddFailure(domain.CodeImageTooSmall,
			fmt.Sprintf("front side is %dx%d, below the %dpx minimum side", frontStats.Width, frontStats.Height, t.MinSide))
	}
	if backStats.MinSide() < t.MinSide {
		res.AddFailure(domain.CodeImageTooSmall,
			fmt.Sprintf("back side is %dx%d, below the %dpx minimum side", backStats.Width, backStats.Height, t.MinSide))
	}

	if sizeMismatch(frontStats, backStats, t.SizeTolerance) {
		res.AddFailure(domain.CodeSidesSizeDiffer,
			fmt.Sprintf("front (%dx%d) and back (%dx%d) dimensions differ beyond tolerance",
				frontStats.Width, frontStats.Height, backStats.Width, backStats.Height))
	}

	if frontStats.IsPortrait() != backStats.IsPortrait() {
		res.AddFailure(domain.CodeSidesOrientation, "front and back are scanned in different orientations")
	}

	frontHash := imaging.AverageHash(front)
	backHash := imaging.AverageHash(back)
	distance := imaging.HammingDistance(frontHash, backHash)
	res.SetStat("hash_distance", distance)

	if distance <= t.SameImageDistance {
		res.AddFailure(domain.CodeSidesSameImage, "front and back are the same image")
	}

	return res
}

func sizeMismatch(a, b imaging.Stats, tolerance float64) bool {
	if a.Width == 0 || a.Height == 0 || b.Width == 0 || b.Height == 0 {
		return true
	}
	widthDiff := math.Abs(float64(a.Width)-float64(b.Width)) / math.Max(float64(a.Width), float64(b.Width))
	heightDiff := math.Abs(float64(a.Height)-float64(b.Height)) / math.Max(float64(a.Height), float64(b.Height))
	return widthDiff > tolerance || heightDiff > tolerance
}
