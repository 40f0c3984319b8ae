package analyzer

import (
	"fmt"
	"image"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
)

// signatureFinding is a provisional complaint; suppressible ones are dropped
// when the override path engages.
type signatureFinding struct {
	code         domain.DiagnosticCode
	message      string
	suppressible bool
}

// AnalyzeSignature checks a scanned signature for visible ink on a clean
// background. Pure function: no I/O, deterministic over the image.
func AnalyzeSignature(img image.Image) *domain.AnalysisResult {
	return analyzeSignature(img, defaultSignatureThresholds())
}

func analyzeSignature(img image.Image, t SignatureThresholds) *domain.AnalysisResult {
	res := domain.NewAnalysisResult()

	stats := imaging.Analyze(img)
	ink := inkCoverage(img)

	res.SetStat("width", stats.Width)
	res.SetStat("height", stats.Height)
	res.SetStat("brightness", stats.Brightness)
	res.SetStat("contrast", stats.Contrast)
	res.SetStat("blur", stats.Blur)
	res.SetStat("ink_coverage", ink)
	res.SetStat("white_pixel_ratio", stats.WhitePixelRatio)

	var findings []signatureFinding

	if stats.MinSide() < t.MinSide {
		findings = append(findings, signatureFinding{
			code:    domain.CodeImageTooSmall,
			message: fmt.Sprintf("signature scan is %dx%d, below the %dpx minimum side", stats.Width, stats.Height, t.MinSide),
		})
	}
	if stats.Brightness >= t.InvisibleBrightness && stats.Contrast < t.InvisibleContrast {
		findings = append(findings, signatureFinding{
			code:    domain.CodeSignatureInvisible,
			message: "signature is not visible: image is bright with almost no contrast",
		})
	}
	if ink < t.MinInkCoverage {
		findings = append(findings, signatureFinding{
			code:    domain.CodeSignatureAbsent,
			message: "no signature ink found on the page",
		})
	}
	if stats.Blur < t.MinBlur {
		findings = append(findings, signatureFinding{
			code:         domain.CodeBlurry,
			message:      "signature scan is too blurry",
			suppressible: true,
		})
	}
	if stats.WhitePixelRatio < t.MinWhiteRatio {
		findings = append(findings, signatureFinding{
			code:         domain.CodeNonWhiteBackground,
			message:      "signature background is not white enough",
			suppressible: true,
		})
	}
	if stats.RGBBalanceDelta > t.MaxRGBDelta {
		findings = append(findings, signatureFinding{
			code:         domain.CodeColorCast,
			message:      "signature scan has a strong color cast",
			suppressible: true,
		})
	}
	if stats.BackgroundStdDev > t.MaxBackgroundStdDev {
		findings = append(findings, signatureFinding{
			code:         domain.CodeBusyBackground,
			message:      "signature background is not uniform",
			suppressible: true,
		})
	}

	// Override path: a large enough scan with visible ink or workable
	// contrast keeps its background complaints out of the decision. Tunable
	// policy, kept to avoid over-rejecting legitimate scans under imperfect
	// lighting while still blocking blank pages.
	override := stats.MinSide() >= t.OverrideMinSide &&
		(ink >= t.OverrideInkCoverage || stats.Contrast >= t.OverrideContrast)
	res.SetStat("override_applied", override)

	for _, f := range findings {
		if override && f.suppressible {
			continue
		}
		res.AddFailure(f.code, f.message)
	}

	return res
}

// inkCoverage returns the fraction of pixels that look like pen ink: very
// dark, or blue-dominant enough to be a blue ballpoint stroke.
func inkCoverage(img image.Image) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	ink := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			lum := 0.299*rf + 0.587*gf + 0.114*bf
			dark := lum < 80
			blue := bf > 60 && bf > rf+30 && bf > gf+30
			if dark || blue {
				ink++
			}
		}
	}

	return float64(ink) / float64(width*height)
}
