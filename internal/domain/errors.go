package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Intake errors: rejected before any analyzer runs.
	ErrMissingFile = &AppError{
		Code:       string(CodeMissingFile),
		Message:    "No file was submitted",
		StatusCode: 422,
	}

	ErrUnsupportedFormat = &AppError{
		Code:       string(CodeUnsupportedFormat),
		Message:    "Unsupported image format",
		StatusCode: 422,
	}

	ErrFileTooLarge = &AppError{
		Code:       string(CodeFileTooLarge),
		Message:    "File exceeds the maximum allowed size",
		StatusCode: 422,
	}

	ErrImageTooSmall = &AppError{
		Code:       string(CodeImageTooSmall),
		Message:    "Image dimensions below the supported minimum",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	// Capability errors: mapped to unavailable diagnostics inside the
	// pipeline, surfaced directly only by health probes.
	ErrDetectorUnavailable = &AppError{
		Code:       string(CodeFaceUnavailable),
		Message:    "Face detection capability is unavailable",
		StatusCode: 503,
	}

	ErrOCRUnavailable = &AppError{
		Code:       string(CodeOCRUnavailable),
		Message:    "Text recognition capability is unavailable",
		StatusCode: 503,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}
)
