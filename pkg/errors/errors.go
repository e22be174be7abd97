package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryGeneration    ErrorCategory = "generation"
	CategoryValidation    ErrorCategory = "validation"
	CategoryExport        ErrorCategory = "export"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Configuration errors
	CodeInvalidRatio  ErrorCode = "invalid_ratio"
	CodeInvalidCount  ErrorCode = "invalid_count"
	CodeInvalidRange  ErrorCode = "invalid_range"
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Generation errors
	CodeDegenerateAmount ErrorCode = "degenerate_amount"
	CodeEmptyPopulation  ErrorCode = "empty_population"

	// Validation errors
	CodeBrokenReference ErrorCode = "broken_reference"
	CodeSumMismatch     ErrorCode = "sum_mismatch"
	CodeInvalidRecord   ErrorCode = "invalid_record"

	// Export errors
	CodeFileError   ErrorCode = "file_error"
	CodeWriteFailed ErrorCode = "write_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// GeneratorError is the base error type for all application errors
type GeneratorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *GeneratorError) GetExitCode() int {
	switch e.Category {
	case CategoryConfiguration:
		return 2
	case CategoryGeneration, CategoryValidation:
		return 3
	case CategoryExport:
		return 4
	case CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *GeneratorError) WithContext(key string, value interface{}) *GeneratorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *GeneratorError) WithSuggestion(suggestion string) *GeneratorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new GeneratorError
func New(category ErrorCategory, code ErrorCode, message string) *GeneratorError {
	return &GeneratorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with GeneratorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *GeneratorError {
	if err == nil {
		return nil
	}

	return &GeneratorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ConfigurationError creates a configuration-related error. Configuration
// errors are fatal and reported before any generation begins.
func ConfigurationError(code ErrorCode, setting string, value interface{}) *GeneratorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidRatio:
		message = fmt.Sprintf("invalid partition ratio for '%s': %v", setting, value)
		suggestion = "partition ratios must be non-negative"
	case CodeInvalidCount:
		message = fmt.Sprintf("invalid count for '%s': %v", setting, value)
		suggestion = "counts must not be negative"
	case CodeInvalidRange:
		message = fmt.Sprintf("invalid range for '%s': %v", setting, value)
		suggestion = "check that the minimum does not exceed the maximum and bounds are positive"
	default:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	}

	return New(CategoryConfiguration, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// GenerationError creates a generation-related error
func GenerationError(code ErrorCode, operation string, err error) *GeneratorError {
	var message string
	var suggestion string

	switch code {
	case CodeDegenerateAmount:
		message = fmt.Sprintf("degenerate amount encountered during %s", operation)
		suggestion = "check the configured amount bounds"
	case CodeEmptyPopulation:
		message = fmt.Sprintf("empty input population for %s", operation)
		suggestion = "increase the requested counts or relax the unit-price band"
	default:
		message = fmt.Sprintf("generation error during %s", operation)
		suggestion = "review the generation configuration"
	}

	var result *GeneratorError
	if err != nil {
		result = Wrap(err, CategoryGeneration, code, message)
	} else {
		result = New(CategoryGeneration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ValidationError creates a dataset-validation error. Broken references
// indicate an internal invariant violation and are never swallowed.
func ValidationError(code ErrorCode, detail string, err error) *GeneratorError {
	var message string
	var suggestion string

	switch code {
	case CodeBrokenReference:
		message = fmt.Sprintf("statement line references a non-existent record: %s", detail)
		suggestion = "this is a generator bug - please report it with the seed and configuration"
	case CodeSumMismatch:
		message = fmt.Sprintf("sum invariant violated: %s", detail)
		suggestion = "this is a generator bug - please report it with the seed and configuration"
	case CodeInvalidRecord:
		message = fmt.Sprintf("generated record failed validation: %s", detail)
		suggestion = "check the configured bounds and distributions"
	default:
		message = fmt.Sprintf("validation error: %s", detail)
		suggestion = "check the generated dataset"
	}

	var result *GeneratorError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("detail", detail)
}

// ExportError creates an export-related error
func ExportError(code ErrorCode, path string, err error) *GeneratorError {
	var message string
	var suggestion string

	switch code {
	case CodeFileError:
		message = fmt.Sprintf("cannot open output file: %s", path)
		suggestion = "check that the output directory exists and is writable"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed writing output file: %s", path)
		suggestion = "check available disk space and permissions"
	default:
		message = fmt.Sprintf("export error: %s", path)
		suggestion = "check the output path and try again"
	}

	var result *GeneratorError
	if err != nil {
		result = Wrap(err, CategoryExport, code, message)
	} else {
		result = New(CategoryExport, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("path", path)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *GeneratorError {
	message := fmt.Sprintf("internal error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	var result *GeneratorError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*GeneratorError     `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*GeneratorError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// IsGeneratorError checks if an error is a GeneratorError
func IsGeneratorError(err error) bool {
	_, ok := err.(*GeneratorError)
	return ok
}

// AsGeneratorError extracts a GeneratorError from an error chain
func AsGeneratorError(err error) (*GeneratorError, bool) {
	var generatorErr *GeneratorError
	if errors.As(err, &generatorErr) {
		return generatorErr, true
	}
	return nil, false
}
