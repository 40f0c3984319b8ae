package provider

// DetectorType defines supported face detection provider types
type DetectorType string

const (
	// DetectorTypeMock is the deterministic detector (local, for dev/test)
	DetectorTypeMock DetectorType = "mock"
	// DetectorTypeRekognition is the AWS Rekognition detector (cloud, for prod)
	DetectorTypeRekognition DetectorType = "rekognition"
)

// EngineType defines supported OCR engine types
type EngineType string

const (
	// EngineTypeMock returns canned text (local, for dev/test)
	EngineTypeMock EngineType = "mock"
	// EngineTypeTesseract runs a local Tesseract worker
	EngineTypeTesseract EngineType = "tesseract"
)
