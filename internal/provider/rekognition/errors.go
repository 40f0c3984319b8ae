package rekognition

import "errors"

var (
	// ErrInvalidImage indicates the image bytes cannot be processed
	ErrInvalidImage = errors.New("invalid image for rekognition processing")

	// ErrInvalidCredentials indicates AWS credentials are missing or rejected
	ErrInvalidCredentials = errors.New("invalid AWS credentials")

	// ErrThrottled indicates the Rekognition API rejected the call due to throughput limits
	ErrThrottled = errors.New("rekognition request throttled")
)
