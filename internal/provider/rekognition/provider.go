package rekognition

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	// centeredTolerance is how far (as a fraction of the frame) the face
	// center may drift from the frame center and still count as centered
	centeredTolerance = 0.18

	// maxHeadAngle is the pose angle (degrees) beyond which the subject is
	// considered not to be facing the camera
	maxHeadAngle = 30.0
)

// Detector implements provider.FaceDetector using AWS Rekognition DetectFaces
type Detector struct {
	client *Client
}

// Ensure Detector implements provider.FaceDetector interface at compile time
var _ provider.FaceDetector = (*Detector)(nil)

// NewDetector creates a new Rekognition-backed face detector
func NewDetector(ctx context.Context, cfg Config) (*Detector, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Detector{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Detect runs DetectFaces with all attributes and maps the response onto a
// domain.FaceCheck. A response without faces yields a FaceCheck with
// FaceCount == 0, not an error; capability failures are wrapped in
// domain.ErrDetectorUnavailable so the pipeline can fail closed.
func (d *Detector) Detect(ctx context.Context, image []byte) (*domain.FaceCheck, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := d.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		err = classifyError(err)
		if errors.Is(err, ErrInvalidImage) {
			return nil, err
		}
		return nil, domain.ErrDetectorUnavailable.WithError(err)
	}

	check := &domain.FaceCheck{}
	var best *types.FaceDetail

	for i := range output.FaceDetails {
		detail := &output.FaceDetails[i]
		if aws.ToFloat32(detail.Confidence) < float32(d.client.config.MinConfidence) {
			continue
		}
		check.FaceCount++
		check.Boxes = append(check.Boxes, toBoundingBox(detail.BoundingBox))
		if best == nil || boxArea(detail.BoundingBox) > boxArea(best.BoundingBox) {
			best = detail
		}
	}

	if best == nil {
		return check, nil
	}

	check.FaceDetected = true
	check.FaceScore = float64(aws.ToFloat32(best.Confidence)) / 100.0
	check.FaceCentered = isCentered(best.BoundingBox)
	check.LandmarksOK = len(best.Landmarks) >= 5
	check.QualityScore = qualityScore(best.Quality)

	if best.EyesOpen != nil {
		check.EyesOpen = best.EyesOpen.Value
	}
	if best.MouthOpen != nil {
		check.MouthClosed = !best.MouthOpen.Value
	}
	check.NeutralExpression = isNeutral(best)
	check.FraudScore = fraudScore(best)
	check.IsRealPerson = check.FaceScore >= 0.9 && check.QualityScore >= 0.2 && poseWithinRange(best.Pose)

	return check, nil
}

func toBoundingBox(box *types.BoundingBox) domain.BoundingBox {
	if box == nil {
		return domain.BoundingBox{}
	}
	return domain.BoundingBox{
		X:      float64(aws.ToFloat32(box.Left)),
		Y:      float64(aws.ToFloat32(box.Top)),
		Width:  float64(aws.ToFloat32(box.Width)),
		Height: float64(aws.ToFloat32(box.Height)),
	}
}

func boxArea(box *types.BoundingBox) float64 {
	if box == nil {
		return 0
	}
	return float64(aws.ToFloat32(box.Width)) * float64(aws.ToFloat32(box.Height))
}

func isCentered(box *types.BoundingBox) bool {
	if box == nil {
		return false
	}
	cx := float64(aws.ToFloat32(box.Left)) + float64(aws.ToFloat32(box.Width))/2
	cy := float64(aws.ToFloat32(box.Top)) + float64(aws.ToFloat32(box.Height))/2
	return math.Abs(cx-0.5) <= centeredTolerance && math.Abs(cy-0.5) <= centeredTolerance
}

// qualityScore computes an overall quality score from Rekognition quality
// metrics, weighting sharpness more heavily as it is critical for recognition.
// Returns a score between 0.0 (poor) and 1.0 (excellent).
func qualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	brightness := float64(aws.ToFloat32(quality.Brightness)) / 100.0
	sharpness := float64(aws.ToFloat32(quality.Sharpness)) / 100.0

	return brightness*0.3 + sharpness*0.7
}

func isNeutral(detail *types.FaceDetail) bool {
	if detail.Smile != nil && detail.Smile.Value {
		return false
	}
	for _, emotion := range detail.Emotions {
		if aws.ToFloat32(emotion.Confidence) < 80 {
			continue
		}
		switch emotion.Type {
		case types.EmotionNameCalm, types.EmotionNameUnknown:
		default:
			return false
		}
	}
	return true
}

func poseWithinRange(pose *types.Pose) bool {
	if pose == nil {
		return true
	}
	yaw := math.Abs(float64(aws.ToFloat32(pose.Yaw)))
	pitch := math.Abs(float64(aws.ToFloat32(pose.Pitch)))
	return yaw <= maxHeadAngle && pitch <= maxHeadAngle
}

// fraudScore derives a 0-1 spoofing suspicion signal from detection
// confidence and head pose. Rekognition has no direct liveness output on
// DetectFaces, so extreme poses and low confidence raise suspicion.
func fraudScore(detail *types.FaceDetail) float64 {
	score := 1.0 - float64(aws.ToFloat32(detail.Confidence))/100.0

	if detail.Pose != nil {
		yaw := math.Abs(float64(aws.ToFloat32(detail.Pose.Yaw)))
		roll := math.Abs(float64(aws.ToFloat32(detail.Pose.Roll)))
		score += math.Min(1.0, (yaw+roll)/180.0) * 0.5
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
