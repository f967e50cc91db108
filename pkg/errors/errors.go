package errors

import "errors"

// Error codes shared across the service. The retrieval pipeline distinguishes
// operational failures (index missing, embedding outage) from policy outcomes;
// policy outcomes are not errors and never appear here.
const (
	CodeInvalidInput         = "invalid_input"
	CodeEmptyCorpus          = "empty_corpus"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeIndexNotLoaded       = "index_not_loaded"
	CodeDimensionMismatch    = "dimension_mismatch"
	CodeLLMError             = "llm_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the AppError code, or an empty string for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
