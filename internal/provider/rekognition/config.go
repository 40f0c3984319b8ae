package rekognition

// Config holds configuration for the AWS Rekognition face detector
type Config struct {
	// Region is the AWS region where Rekognition will be used (e.g., "us-east-1")
	Region string

	// MinConfidence is the minimum detection confidence (0-100) below which
	// a face detail is ignored entirely
	MinConfidence float64
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 50.0,
	}
}
