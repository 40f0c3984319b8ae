package domain

import "time"

// ArtifactKind names the four artifacts a validation request may carry.
type ArtifactKind string

const (
	ArtifactPhoto     ArtifactKind = "photo"
	ArtifactSignature ArtifactKind = "signature"
	ArtifactFront     ArtifactKind = "front"
	ArtifactBack      ArtifactKind = "back"
)

// DocType classifies the identity document recognized from OCR text.
type DocType string

const (
	DocTypePassport      DocType = "passport"
	DocTypeVoterCard     DocType = "voter_card"
	DocTypeDriverLicense DocType = "driver_license"
	DocTypePoliceCard    DocType = "police_card"
	DocTypeUnknown       DocType = "unknown"
)

// MRZInfo reports machine-readable-zone detection on a document image.
type MRZInfo struct {
	Valid bool   `json:"valid"`
	Raw   string `json:"raw,omitempty"`
}

// OCRDocResult is the outcome of running OCR and classification on one
// document image.
type OCRDocResult struct {
	Text            string   `json:"text"`
	MRZ             MRZInfo  `json:"mrz"`
	DocTypeDetected DocType  `json:"doc_type_detected"`
	Keywords        []string `json:"keywords,omitempty"`
	Rotated         bool     `json:"rotated,omitempty"`
}

// LicenseBackExtract holds the fields pulled from the back of a driver
// license via pattern matching over free OCR text.
type LicenseBackExtract struct {
	Categories []string   `json:"categories,omitempty"`
	IssueDate  *time.Time `json:"issue_date,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
}

// DocumentHash is a write-once record of an uploaded artifact, used only for
// duplicate detection.
type DocumentHash struct {
	Digest     [32]byte
	Kind       ArtifactKind
	CustomerID *int64
	CreatedAt  time.Time
}
