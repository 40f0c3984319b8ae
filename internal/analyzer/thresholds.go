package analyzer

// PhotoKind selects the threshold profile for a submitted photo.
type PhotoKind string

const (
	KindProfile       PhotoKind = "profile"
	KindPassport      PhotoKind = "passport"
	KindDriverLicense PhotoKind = "driver_license"
)

// PhotoThresholds gathers every numeric policy applied by the photo
// analyzer. Two sets exist: the normal one, used when the face detector
// answered, and a stricter fail-closed one used when the detector is
// unavailable and pixel statistics are the only signal left.
type PhotoThresholds struct {
	MinBrightness       float64
	MaxBrightness       float64
	MinContrast         float64
	MinBlur             float64 // Laplacian variance floor; below is blurry
	MaxBackgroundStdDev float64
	MaxRGBDelta         float64
	MinWhiteRatio       float64 // white background floor for profile/passport
	MinSide             int

	MinFaceConfidence float64
	MinFaceAreaRatio  float64
	MaxFraudScore     float64
	MinQualityScore   float64
}

func normalPhotoThresholds() PhotoThresholds {
	return PhotoThresholds{
		MinBrightness:       60,
		MaxBrightness:       240,
		MinContrast:         25,
		MinBlur:             60,
		MaxBackgroundStdDev: 45,
		MaxRGBDelta:         30,
		MinWhiteRatio:       0.20,
		MinSide:             300,
		MinFaceConfidence:   0.90,
		MinFaceAreaRatio:    0.06,
		MaxFraudScore:       0.50,
		MinQualityScore:     0.40,
	}
}

// strictPhotoThresholds applies when the face capability is down: pixel
// checks tighten because nothing biometric corroborates the image.
func strictPhotoThresholds() PhotoThresholds {
	t := normalPhotoThresholds()
	t.MinBrightness = 80
	t.MaxBrightness = 235
	t.MinContrast = 30
	t.MinBlur = 90
	t.MaxBackgroundStdDev = 35
	t.MaxRGBDelta = 22
	t.MinWhiteRatio = 0.30
	t.MinSide = 400
	return t
}

// SignatureThresholds is the signature analyzer policy. The override block
// is a deliberate false-positive mitigation, not a security rule: large
// enough scans with visible ink or contrast skip background complaints.
type SignatureThresholds struct {
	MinSide             int
	InvisibleBrightness float64
	InvisibleContrast   float64
	MinInkCoverage      float64
	MinBlur             float64
	MinWhiteRatio       float64
	MaxRGBDelta         float64
	MaxBackgroundStdDev float64

	OverrideMinSide     int
	OverrideInkCoverage float64
	OverrideContrast    float64
}

func defaultSignatureThresholds() SignatureThresholds {
	return SignatureThresholds{
		MinSide:             120,
		InvisibleBrightness: 243,
		InvisibleContrast:   2.8,
		MinInkCoverage:      0.0002,
		MinBlur:             4.0,
		MinWhiteRatio:       0.50,
		MaxRGBDelta:         40,
		MaxBackgroundStdDev: 60,

		OverrideMinSide:     250,
		OverrideInkCoverage: 0.0002,
		OverrideContrast:    2.8,
	}
}

// CardSideThresholds is the front/back consistency policy.
type CardSideThresholds struct {
	MinSide           int
	SizeTolerance     float64 // relative width/height mismatch tolerance
	SameImageDistance int     // Hamming distance at or below which sides count as the same image
}

func defaultCardSideThresholds() CardSideThresholds {
	return CardSideThresholds{
		MinSide:           200,
		SizeTolerance:     0.25,
		SameImageDistance: 5,
	}
}
