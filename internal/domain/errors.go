package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

var (
	// ErrDocumentNotFound is returned when a document does not exist for the
	// requesting owner. A tenant mismatch yields the same error so existence
	// never leaks across owners.
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")

	// ErrEmptyContent is returned when an extractor produced no usable text.
	ErrEmptyContent = NewDomainError(ErrCodeExtractionFailed, "extracted content is empty")

	// ErrMissingOwner is returned when an operation lacks an owner identity.
	ErrMissingOwner = NewDomainError(ErrCodeValidation, "owner id is required")
)

// NewUnsupportedFormatError reports a file type no extractor handles.
func NewUnsupportedFormatError(fileType string) *DomainError {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported file type: %s", fileType))
}

// NewExtractionFailedError wraps an upstream extraction failure.
func NewExtractionFailedError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeExtractionFailed, message, err)
}
