package domain

// DetectionState is the three-valued outcome of calling the face detection
// capability. Unavailable (the detector is down) is never equivalent to
// NoFace (the detector ran and found nothing) — the pipeline fails closed on
// Unavailable.
type DetectionState int

const (
	DetectionUnavailable DetectionState = iota
	DetectionNoFace
	DetectionFound
)

func (s DetectionState) String() string {
	switch s {
	case DetectionNoFace:
		return "no_face"
	case DetectionFound:
		return "detected"
	default:
		return "unavailable"
	}
}

// BoundingBox is a face area expressed as fractions of the image dimensions.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the fraction of the image covered by the box.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// FaceCheck carries everything the face detection capability reports about
// the best face found in an image. All scores are in [0,1].
type FaceCheck struct {
	FaceDetected      bool          `json:"face_detected"`
	FaceScore         float64       `json:"face_score"`
	FaceCentered      bool          `json:"face_centered"`
	FaceCount         int           `json:"face_count"`
	Boxes             []BoundingBox `json:"boxes,omitempty"`
	LandmarksOK       bool          `json:"landmarks_ok"`
	EyesOpen          bool          `json:"eyes_open"`
	MouthClosed       bool          `json:"mouth_closed"`
	NeutralExpression bool          `json:"neutral_expression"`
	FraudScore        float64       `json:"fraud_score"`
	QualityScore      float64       `json:"quality_score"`
	IsRealPerson      bool          `json:"is_real_person"`
}

// FaceDetection is the tagged variant handed to the photo analyzer. Check is
// non-nil only when State == DetectionFound.
type FaceDetection struct {
	State DetectionState
	Check *FaceCheck
}

// Unavailable returns the fail-closed detection value used when the
// capability errored or timed out.
func Unavailable() FaceDetection {
	return FaceDetection{State: DetectionUnavailable}
}

// NoFace returns the detection value for a detector that ran and found no face.
func NoFace() FaceDetection {
	return FaceDetection{State: DetectionNoFace}
}

// Detected wraps a full FaceCheck.
func Detected(check *FaceCheck) FaceDetection {
	if check == nil {
		return Unavailable()
	}
	return FaceDetection{State: DetectionFound, Check: check}
}

// VisionVerdict is the optional realness scorer output. Absence of the scorer
// degrades to a message, never a rejection.
type VisionVerdict struct {
	OK       bool    `json:"ok"`
	TopLabel string  `json:"top_label"`
	TopScore float64 `json:"top_score"`
}
