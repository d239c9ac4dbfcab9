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
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeExtraction    = "EXTRACTION_ERROR"
	ErrCodeEmptyContent  = "EMPTY_CONTENT"
	ErrCodeGeneration    = "GENERATION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkWindow   = NewDomainError(ErrCodeValidation, "chunk overlap must be positive and smaller than the window size")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrUnsupportedFileType  = NewDomainError(ErrCodeValidation, "unsupported file type")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Extraction errors.
// ErrExtractionFailed aborts ingestion for the affected document only; the
// service keeps running.
var (
	ErrExtractionFailed = NewDomainError(ErrCodeExtraction, "failed to extract text from source file")
	ErrEmptyContent     = NewDomainError(ErrCodeEmptyContent, "extraction yielded no usable chunks")
)

// Generation errors. Never surfaced from a query: the synthesizer recovers by
// falling back to the extractive strategy.
var (
	ErrGenerationFailed = NewDomainError(ErrCodeGeneration, "text generation failed")
)
