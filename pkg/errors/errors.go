// Package errors defines the error taxonomy used across the invoice
// reconciliation engine.
//
// Errors are classified by category and code so callers can decide whether a
// failure is fatal for a whole statement file (malformed document), fatal for
// a single entry (invalid amount), or an expected negative result that only
// belongs in the run report (unknown reference, amount mismatch).
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryFile           Category = "file"
	CategoryParse          Category = "parse"
	CategoryValidation     Category = "validation"
	CategoryConfiguration  Category = "configuration"
	CategoryReconciliation Category = "reconciliation"
	CategoryLedger         Category = "ledger"
	CategoryInternal       Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFilePermission Code = "file_permission"

	// Parse errors
	CodeMalformedDocument Code = "malformed_document"
	CodeMissingNamespace  Code = "missing_namespace"
	CodeInvalidAmount     Code = "invalid_amount"
	CodeInvalidDirection  Code = "invalid_direction"
	CodeInvalidDate       Code = "invalid_date"

	// Validation errors
	CodeMissingField Code = "missing_field"
	CodeInvalidValue Code = "invalid_value"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"
	CodeMissingConfig Code = "missing_config"

	// Reconciliation errors
	CodeProcessingFailed Code = "processing_failed"
	CodeBatchRejected    Code = "batch_rejected"

	// Ledger errors
	CodeLedgerUnavailable Code = "ledger_unavailable"
	CodeLedgerWriteFailed Code = "ledger_write_failed"
	CodeLedgerReadFailed  Code = "ledger_read_failed"

	// Internal errors
	CodeUnexpectedError Code = "unexpected_error"
)

// EngineError is the base error type for all engine errors.
type EngineError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context carries additional structured information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// GetExitCode maps the error category to a process exit code.
func (e *EngineError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	case CategoryLedger:
		return 6
	default:
		return 1
	}
}

// WithContext adds a context key/value pair to the error.
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a human-readable remediation hint.
func (e *EngineError) WithSuggestion(suggestion string) *EngineError {
	e.Suggestion = suggestion
	return e
}

// New creates a new EngineError with a captured stack trace.
func New(category Category, code Code, message string) *EngineError {
	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with engine error classification.
func Wrap(err error, category Category, code Code, message string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// MalformedDocumentError reports a statement document that cannot be processed
// at all. This aborts the whole file; nothing from it is recorded.
func MalformedDocumentError(file string, err error) *EngineError {
	message := fmt.Sprintf("statement document is not a valid camt.053 file: %s", file)

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryParse, CodeMalformedDocument, message)
	} else {
		result = New(CategoryParse, CodeMalformedDocument, message)
	}
	return result.
		WithSuggestion("verify the file is camt.053 XML with the expected document namespace").
		WithContext("file", file)
}

// InvalidAmountError reports an entry whose amount element is not numeric.
// The entry is skipped; the rest of the statement is still processed.
func InvalidAmountError(file string, entry int, value string) *EngineError {
	return New(CategoryParse, CodeInvalidAmount,
		fmt.Sprintf("entry %d in %s has a non-numeric amount: '%s'", entry, file, value)).
		WithSuggestion("correct the amount in the source statement or contact the issuing bank").
		WithContext("file", file).
		WithContext("entry", entry).
		WithContext("value", value)
}

// FileError reports a problem opening or reading a statement file.
func FileError(code Code, path string, err error) *EngineError {
	var message, suggestion string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("statement file not found: %s", path)
		suggestion = "check the file path and that the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied reading statement file: %s", path)
		suggestion = "check file permissions and ensure read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ConfigurationError reports an invalid or missing configuration value.
func ConfigurationError(code Code, setting string, value interface{}, err error) *EngineError {
	var message, suggestion string
	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment, or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// LedgerError reports a failure talking to the invoice ledger.
func LedgerError(code Code, operation string, err error) *EngineError {
	var message, suggestion string
	switch code {
	case CodeLedgerUnavailable:
		message = fmt.Sprintf("invoice ledger unavailable during %s", operation)
		suggestion = "check the database connection settings and that the ledger is reachable"
	case CodeLedgerWriteFailed:
		message = fmt.Sprintf("ledger write failed during %s", operation)
		suggestion = "the statement can be re-submitted once the ledger is healthy"
	case CodeLedgerReadFailed:
		message = fmt.Sprintf("ledger read failed during %s", operation)
		suggestion = "check ledger connectivity and retry the run"
	default:
		message = fmt.Sprintf("ledger error during %s", operation)
		suggestion = "check the ledger and try again"
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryLedger, code, message)
	} else {
		result = New(CategoryLedger, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ReconciliationError reports a failure of the reconciliation run itself, as
// opposed to an expected non-match result.
func ReconciliationError(code Code, operation string, err error) *EngineError {
	var message, suggestion string
	switch code {
	case CodeProcessingFailed:
		message = fmt.Sprintf("processing failed during %s", operation)
		suggestion = "check the statement file and ledger state, then re-submit"
	case CodeBatchRejected:
		message = fmt.Sprintf("batch rejected during %s", operation)
		suggestion = "reduce the number of concurrent files or check worker pool settings"
	default:
		message = fmt.Sprintf("reconciliation error during %s", operation)
		suggestion = "review the run configuration and input data"
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryReconciliation, code, message)
	} else {
		result = New(CategoryReconciliation, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ValidationError reports invalid data on a domain record.
func ValidationError(code Code, field string, value interface{}, err error) *EngineError {
	var message, suggestion string
	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidValue:
		message = fmt.Sprintf("invalid value in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}
	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// InternalError reports an unexpected internal failure.
func InternalError(operation string, err error) *EngineError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Summary aggregates multiple engine errors from one run.
type Summary struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	ByCode     map[Code]int     `json:"by_code"`
	Errors     []*EngineError   `json:"errors"`
}

// NewSummary builds a summary over the given errors.
func NewSummary(errs []*EngineError) *Summary {
	summary := &Summary{
		Total:      len(errs),
		ByCategory: make(map[Category]int),
		ByCode:     make(map[Code]int),
		Errors:     errs,
	}
	if errs == nil {
		summary.Errors = []*EngineError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted message covering all collected errors.
func (s *Summary) Error() string {
	if s.Total == 0 {
		return "no errors"
	}
	if s.Total == 1 {
		return s.Errors[0].Error()
	}

	var categories []string
	for category, count := range s.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	return fmt.Sprintf("%d errors occurred (%s)", s.Total, strings.Join(categories, ", "))
}

// HasCode reports whether the summary contains an error with the given code.
func (s *Summary) HasCode(code Code) bool {
	return s.ByCode[code] > 0
}

// GetExitCode returns the highest priority exit code among all errors.
func (s *Summary) GetExitCode() int {
	if s.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range s.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}
	return maxCode
}

// IsEngineError checks whether err is an EngineError.
func IsEngineError(err error) bool {
	_, ok := err.(*EngineError)
	return ok
}

// AsEngineError extracts an EngineError from an error chain.
func AsEngineError(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	if engineErr, ok := AsEngineError(err); ok {
		return engineErr.Code == code
	}
	return false
}
