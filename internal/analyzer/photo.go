package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

// PhotoAnalyzer runs the face/biometric checks on a submitted photo. It is
// pure over its inputs plus one external detector call: detector failures
// are caught here and mapped to the unavailable diagnostic, never propagated.
type PhotoAnalyzer struct {
	detector provider.FaceDetector
	scorer   provider.VisionScorer // optional, may be nil
	logger   *slog.Logger
	timeout  time.Duration
}

// NewPhotoAnalyzer wires the analyzer with its capabilities. scorer may be
// nil; timeout bounds each external call.
func NewPhotoAnalyzer(detector provider.FaceDetector, scorer provider.VisionScorer, logger *slog.Logger, timeout time.Duration) *PhotoAnalyzer {
	return &PhotoAnalyzer{
		detector: detector,
		scorer:   scorer,
		logger:   logger,
		timeout:  timeout,
	}
}

// detect calls the face capability inside its own deadline and folds the
// outcome into the three-valued detection variant.
func (a *PhotoAnalyzer) detect(ctx context.Context, raw []byte) domain.FaceDetection {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	check, err := a.detector.Detect(ctx, raw)
	if err != nil {
		a.logger.Warn("face detector unavailable", slog.Any("error", err))
		return domain.Unavailable()
	}
	if check == nil || check.FaceCount == 0 {
		return domain.NoFace()
	}
	return domain.Detected(check)
}

// Analyze runs the full photo check: pixel statistics on one result, the
// biometric decision on the other. Both results are returned so the report
// can weight them independently; detection is also returned for the caller's
// fail-closed bookkeeping.
func (a *PhotoAnalyzer) Analyze(ctx context.Context, raw []byte, kind PhotoKind) (photo, face *domain.AnalysisResult, detection domain.FaceDetection) {
	photo = domain.NewAnalysisResult()
	face = domain.NewAnalysisResult()

	img, _, err := imaging.Decode(raw)
	if err != nil {
		photo.AddFailure(domain.CodeUnsupportedFormat, "photo could not be decoded")
		face.AddFailure(domain.CodeUnsupportedFormat, "photo could not be decoded")
		return photo, face, domain.Unavailable()
	}

	detection = a.detect(ctx, raw)

	thresholds := normalPhotoThresholds()
	if detection.State == domain.DetectionUnavailable {
		thresholds = strictPhotoThresholds()
	}

	stats := imaging.Analyze(img)
	a.applyImageChecks(photo, stats, kind, thresholds)
	a.applyFaceChecks(ctx, face, detection, stats, kind, thresholds, raw)

	return photo, face, detection
}

// applyImageChecks adds one message + code per failed pixel-level check.
func (a *PhotoAnalyzer) applyImageChecks(res *domain.AnalysisResult, stats imaging.Stats, kind PhotoKind, t PhotoThresholds) {
	res.SetStat("width", stats.Width)
	res.SetStat("height", stats.Height)
	res.SetStat("brightness", stats.Brightness)
	res.SetStat("contrast", stats.Contrast)
	res.SetStat("blur", stats.Blur)
	res.SetStat("background_std_dev", stats.BackgroundStdDev)
	res.SetStat("rgb_balance_delta", stats.RGBBalanceDelta)
	res.SetStat("white_pixel_ratio", stats.WhitePixelRatio)

	if stats.MinSide() < t.MinSide {
		res.AddFailure(domain.CodeImageTooSmall,
			fmt.Sprintf("image is %dx%d, below the %dpx minimum side", stats.Width, stats.Height, t.MinSide))
	}
	if stats.Brightness < t.MinBrightness {
		res.AddFailure(domain.CodeTooDark, "photo is too dark")
	}
	if stats.Brightness > t.MaxBrightness {
		res.AddFailure(domain.CodeTooBright, "photo is overexposed")
	}
	if stats.Contrast < t.MinContrast {
		res.AddFailure(domain.CodeLowContrast, "photo contrast is too low")
	}
	if stats.Blur < t.MinBlur {
		res.AddFailure(domain.CodeBlurry, "photo is too blurry")
	}
	if stats.BackgroundStdDev > t.MaxBackgroundStdDev {
		res.AddFailure(domain.CodeBusyBackground, "photo background is not uniform")
	}
	if stats.RGBBalanceDelta > t.MaxRGBDelta {
		res.AddFailure(domain.CodeColorCast, "photo has a strong color cast")
	}
	if (kind == KindProfile || kind == KindPassport) && stats.WhitePixelRatio < t.MinWhiteRatio {
		res.AddFailure(domain.CodeNonWhiteBackground, "photo background is not white enough")
	}
	if !stats.IsPortrait() {
		res.AddFailure(domain.CodeNotPortrait, "photo is not in portrait orientation")
	}
}

// applyFaceChecks is the biometric decision state machine. The artifact is
// accepted only when no message accumulated.
func (a *PhotoAnalyzer) applyFaceChecks(ctx context.Context, res *domain.AnalysisResult, detection domain.FaceDetection, stats imaging.Stats, kind PhotoKind, t PhotoThresholds, raw []byte) {
	res.SetStat("detection_state", detection.State.String())

	switch detection.State {
	case domain.DetectionUnavailable:
		// Fail closed: route to manual review, never silently pass.
		res.AddFailure(domain.CodeFaceUnavailable,
			"face verification capability is unavailable, manual review required")
		return

	case domain.DetectionNoFace:
		res.AddFailure(domain.CodeNoFace, "no face detected in the photo")
		return
	}

	check := detection.Check
	res.SetStat("face_count", check.FaceCount)
	res.SetStat("face_score", check.FaceScore)
	res.SetStat("fraud_score", check.FraudScore)
	res.SetStat("quality_score", check.QualityScore)

	if check.FaceCount > 1 {
		res.AddFailure(domain.CodeMultipleFaces,
			fmt.Sprintf("%d faces detected, expected exactly one", check.FaceCount))
	}
	if check.FaceScore < t.MinFaceConfidence {
		res.AddFailure(domain.CodeLowFaceConfidence,
			fmt.Sprintf("face confidence %.2f below minimum %.2f", check.FaceScore, t.MinFaceConfidence))
	}
	if faceAreaRatio(check) < t.MinFaceAreaRatio {
		res.AddFailure(domain.CodeFaceTooSmall, "face occupies too little of the frame")
	}
	if !check.FaceCentered {
		res.AddFailure(domain.CodeFaceOffCenter, "face is not centered in the frame")
	}
	if !check.LandmarksOK {
		res.AddFailure(domain.CodeLowQuality, "facial landmarks could not be resolved")
	}
	if !check.EyesOpen {
		res.AddFailure(domain.CodeEyesClosed, "eyes appear closed")
	}
	if !check.MouthClosed {
		res.AddFailure(domain.CodeMouthOpen, "mouth appears open")
	}
	if (kind == KindProfile || kind == KindPassport) && !check.NeutralExpression {
		res.AddFailure(domain.CodeNotNeutral, "expression is not neutral")
	}
	if check.FraudScore > t.MaxFraudScore {
		res.AddFailure(domain.CodeFraudSuspected,
			fmt.Sprintf("fraud score %.2f above maximum %.2f", check.FraudScore, t.MaxFraudScore))
	}
	if check.QualityScore < t.MinQualityScore {
		res.AddFailure(domain.CodeLowQuality, "face image quality is too low")
	}
	if !check.IsRealPerson {
		res.AddFailure(domain.CodeNotRealPerson, "subject does not appear to be a live person")
	}

	a.applyVisionScore(ctx, res, raw)
}

// applyVisionScore consults the optional realness scorer. Absence or failure
// degrades to a note; a negative verdict is still only advisory here, the
// hard liveness decision belongs to the detector's IsRealPerson signal.
func (a *PhotoAnalyzer) applyVisionScore(ctx context.Context, res *domain.AnalysisResult, raw []byte) {
	if a.scorer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	verdict, err := a.scorer.Score(ctx, raw)
	if err != nil {
		a.logger.Warn("vision scorer unavailable", slog.Any("error", err))
		res.AddNote("realness scorer unavailable, skipped")
		return
	}

	res.SetStat("vision_label", verdict.TopLabel)
	res.SetStat("vision_score", verdict.TopScore)
	if !verdict.OK {
		res.AddNote(fmt.Sprintf("realness scorer flagged subject as %q (%.2f)", verdict.TopLabel, verdict.TopScore))
	}
}

func faceAreaRatio(check *domain.FaceCheck) float64 {
	var best float64
	for _, box := range check.Boxes {
		if area := box.Area(); area > best {
			best = area
		}
	}
	if best == 0 && check.FaceDetected {
		// Detector reported a face without box geometry; do not reject on area.
		return 1
	}
	return best
}
