package domain

// DiagnosticCode identifies a single finding produced by an analyzer.
// Every code maps to exactly one user-facing suggestion (see SuggestionFor).
type DiagnosticCode string

const (
	// Face / biometric findings
	CodeFaceUnavailable   DiagnosticCode = "FACE_CAPABILITY_UNAVAILABLE"
	CodeNoFace            DiagnosticCode = "NO_FACE_DETECTED"
	CodeLowFaceConfidence DiagnosticCode = "LOW_FACE_CONFIDENCE"
	CodeMultipleFaces     DiagnosticCode = "MULTIPLE_FACES"
	CodeFaceOffCenter     DiagnosticCode = "FACE_OFF_CENTER"
	CodeFaceTooSmall      DiagnosticCode = "FACE_TOO_SMALL"
	CodeEyesClosed        DiagnosticCode = "EYES_CLOSED"
	CodeMouthOpen         DiagnosticCode = "MOUTH_OPEN"
	CodeNotNeutral        DiagnosticCode = "EXPRESSION_NOT_NEUTRAL"
	CodeFraudSuspected    DiagnosticCode = "FRAUD_SUSPECTED"
	CodeLowQuality        DiagnosticCode = "LOW_QUALITY_FACE"
	CodeNotRealPerson     DiagnosticCode = "NOT_REAL_PERSON"

	// Pixel-level findings shared by photo, signature and card analyzers
	CodeTooDark            DiagnosticCode = "IMAGE_TOO_DARK"
	CodeTooBright          DiagnosticCode = "IMAGE_TOO_BRIGHT"
	CodeLowContrast        DiagnosticCode = "LOW_CONTRAST"
	CodeBlurry             DiagnosticCode = "IMAGE_BLURRY"
	CodeBusyBackground     DiagnosticCode = "BUSY_BACKGROUND"
	CodeNonWhiteBackground DiagnosticCode = "BACKGROUND_NOT_WHITE"
	CodeColorCast          DiagnosticCode = "COLOR_CAST"
	CodeNotPortrait        DiagnosticCode = "NOT_PORTRAIT_ORIENTATION"
	CodeImageTooSmall      DiagnosticCode = "IMAGE_TOO_SMALL"

	// Signature findings
	CodeSignatureAbsent    DiagnosticCode = "SIGNATURE_ABSENT"
	CodeSignatureInvisible DiagnosticCode = "SIGNATURE_INVISIBLE"

	// Card side consistency findings
	CodeSidesSameImage   DiagnosticCode = "CARD_SIDES_SAME_IMAGE"
	CodeSidesSizeDiffer  DiagnosticCode = "CARD_SIDES_SIZE_MISMATCH"
	CodeSidesOrientation DiagnosticCode = "CARD_SIDES_ORIENTATION_MISMATCH"

	// Document / OCR findings
	CodeUnknownDocType  DiagnosticCode = "UNKNOWN_DOCUMENT_TYPE"
	CodeOCRUnavailable  DiagnosticCode = "OCR_CAPABILITY_UNAVAILABLE"
	CodeDuplicateUpload DiagnosticCode = "DUPLICATE_DOCUMENT"

	// Intake findings (rejected before analysis)
	CodeUnsupportedFormat DiagnosticCode = "UNSUPPORTED_FORMAT"
	CodeMissingFile       DiagnosticCode = "MISSING_FILE"
	CodeFileTooLarge      DiagnosticCode = "FILE_TOO_LARGE"
)

// suggestions is the single canonical code -> suggestion table shared by all
// analyzers. Keeping it in one place guarantees the one-to-one mapping.
var suggestions = map[DiagnosticCode]string{
	CodeFaceUnavailable:   "Automatic face verification is temporarily unavailable; your photo will be reviewed manually",
	CodeNoFace:            "Make sure your face is fully visible and retake the photo",
	CodeLowFaceConfidence: "Retake the photo facing the camera directly in good lighting",
	CodeMultipleFaces:     "Submit a photo containing only yourself",
	CodeFaceOffCenter:     "Center your face in the frame and retake the photo",
	CodeFaceTooSmall:      "Move closer to the camera so your face fills more of the frame",
	CodeEyesClosed:        "Keep both eyes open and retake the photo",
	CodeMouthOpen:         "Keep your mouth closed and retake the photo",
	CodeNotNeutral:        "Keep a neutral expression and retake the photo",
	CodeFraudSuspected:    "Submit an unedited photo taken directly with your camera",
	CodeLowQuality:        "Retake the photo with a better camera or in better lighting",
	CodeNotRealPerson:     "Submit a live photo of yourself, not a picture of a screen or print",

	CodeTooDark:            "Retake the picture in a brighter environment",
	CodeTooBright:          "Avoid direct light sources and retake the picture",
	CodeLowContrast:        "Retake the picture with more even lighting",
	CodeBlurry:             "Hold the camera steady and retake the picture",
	CodeBusyBackground:     "Use a plain background and retake the picture",
	CodeNonWhiteBackground: "Use a white or light uniform background",
	CodeColorCast:          "Avoid colored lighting and retake the picture",
	CodeNotPortrait:        "Rotate the camera to portrait orientation and retake the picture",
	CodeImageTooSmall:      "Upload a higher resolution image",

	CodeSignatureAbsent:    "Sign on white paper with a dark pen and upload a clear scan",
	CodeSignatureInvisible: "Use a darker pen or rescan with higher contrast",

	CodeSidesSameImage:   "Upload the front and the back of the document as two different pictures",
	CodeSidesSizeDiffer:  "Scan both sides of the document at the same resolution",
	CodeSidesOrientation: "Scan both sides of the document in the same orientation",

	CodeUnknownDocType:  "Upload a supported identity document (passport, voter card, driver license or police card)",
	CodeOCRUnavailable:  "Document text recognition is temporarily unavailable; the document will be reviewed manually",
	CodeDuplicateUpload: "This document was already uploaded; submit a different one",

	CodeUnsupportedFormat: "Upload the image as JPEG, PNG or WebP",
	CodeMissingFile:       "Attach the required file and try again",
	CodeFileTooLarge:      "Compress the image below the size limit and try again",
}

// securityCritical codes force a failed status regardless of the aggregate score.
var securityCritical = map[DiagnosticCode]bool{
	CodeFraudSuspected:  true,
	CodeNotRealPerson:   true,
	CodeDuplicateUpload: true,
	CodeSidesSameImage:  true,
}

// SuggestionFor returns the canonical user-facing suggestion for a code.
// The empty string is returned only for codes unknown to this build.
func SuggestionFor(code DiagnosticCode) string {
	return suggestions[code]
}

// IsSecurityCritical reports whether a code must force a failed decision.
func IsSecurityCritical(code DiagnosticCode) bool {
	return securityCritical[code]
}
