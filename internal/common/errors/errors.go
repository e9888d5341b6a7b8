// Package errors provides standardized error handling for the sidebar workers
// and their BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSchemaMismatch     ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeCoercionFailed     ErrorCode = "COERCION_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeParseError         ErrorCode = "PARSE_ERROR"

	ErrCodeSerializationFailed ErrorCode = "SERIALIZATION_FAILED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout             ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// MetadataField is the metadata key carrying the offending input key.
const MetadataField = "field"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if field, ok := e.Metadata[MetadataField].(string); ok && field != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s): %s", e.Code, e.Message, field, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Field returns the input key the error refers to, or "".
func (e *StandardError) Field() string {
	field, _ := e.Metadata[MetadataField].(string)
	return field
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewSchemaMismatchError reports a raw value count that does not match the
// number of interactive fields. It indicates version skew between the page
// and the service.
func NewSchemaMismatchError(expected, got int) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Input value count does not match the sidebar schema",
		Details:   fmt.Sprintf("expected %d values, got %d", expected, got),
		Retryable: false,
		Metadata: map[string]interface{}{
			"expected": expected,
			"got":      got,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewCoercionError reports a raw value that cannot be converted to the kind
// declared for key.
func NewCoercionError(key string, raw interface{}, cause error) *StandardError {
	details := fmt.Sprintf("cannot coerce %v (%T)", raw, raw)
	if cause != nil {
		details = fmt.Sprintf("%s: %v", details, cause)
	}
	return &StandardError{
		Code:      ErrCodeCoercionFailed,
		Message:   "Input value could not be coerced",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataField: key},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports a coerced value that violates a declared bound
// or a required field that is missing.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input value failed validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataField: field},
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError reports a programming error in the field table.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationError,
		Message:   "Invalid sidebar configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError reports an undecodable request body or job payload.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Could not parse input",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSerializationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSerializationFailed,
		Message:   "Parameters could not be serialized",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Parameter cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Request to %s timed out", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught
// by boundary events in the dashboard process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSchemaMismatch:      "SIDEBAR_SCHEMA_MISMATCH",
	ErrCodeCoercionFailed:      "SIDEBAR_INPUT_INVALID",
	ErrCodeValidationFailed:    "SIDEBAR_INPUT_INVALID",
	ErrCodeConfigurationError:  "SIDEBAR_MISCONFIGURED",
	ErrCodeParseError:          "SIDEBAR_INPUT_INVALID",
	ErrCodeSerializationFailed: "SIDEBAR_INTERNAL",
	ErrCodeCacheUnavailable:    "SIDEBAR_INTERNAL",
	ErrCodeExternalService:     "SIDEBAR_INTERNAL",
	ErrCodeTimeout:             "SIDEBAR_INTERNAL",
}

// GetRetryCount returns the recommended retry count for a code. The sidebar
// transforms are deterministic, so only infrastructure failures are retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCacheUnavailable, ErrCodeExternalService:
		return 2
	case ErrCodeTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if field := stdErr.Field(); field != "" {
		vars["errorField"] = field
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard finds the first *StandardError in err's tree.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether any error in err's tree carries code.
func HasCode(err error, code ErrorCode) bool {
	for _, stdErr := range Flatten(err) {
		if stdErr.Code == code {
			return true
		}
	}
	return false
}

// FieldOf returns the offending input key of the first field-level error in
// err, or "".
func FieldOf(err error) string {
	for _, stdErr := range Flatten(err) {
		if field := stdErr.Field(); field != "" {
			return field
		}
	}
	return ""
}

// Flatten collects every *StandardError in err's tree, following both
// single wraps and errors.Join.
func Flatten(err error) []*StandardError {
	if err == nil {
		return nil
	}
	var out []*StandardError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if stdErr, ok := e.(*StandardError); ok {
			out = append(out, stdErr)
			return
		}
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "CONFIGURATION"):
		return "SCHEMA"
	case strings.Contains(codeStr, "COERCION") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "EXTERNAL"
	default:
		return "OTHER"
	}
}
