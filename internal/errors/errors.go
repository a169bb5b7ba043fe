package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrMultipleJSON     = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrUnsupportedRoot  = errors.New("root JSON value must be an object or an array")
	ErrNameConflict     = errors.New("type name already exists")
	ErrMissingReference = errors.New("referenced type is missing from the type table")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrUnknownFormat    = errors.New("unknown output format")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput             ErrorType = "input"
	ErrorTypeParsing           ErrorType = "parsing"
	ErrorTypeUnsupportedRoot   ErrorType = "unsupported_root"
	ErrorTypeNameConflict      ErrorType = "name_conflict"
	ErrorTypeInternalInvariant ErrorType = "internal_invariant"
	ErrorTypeRender            ErrorType = "render"
	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeOutput            ErrorType = "output"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error for input that is not valid JSON
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedRootError creates a new error for a scalar or null root value
func NewUnsupportedRootError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnsupportedRoot,
		Message: message,
		Err:     ErrUnsupportedRoot,
	}
}

// NewNameConflictError creates a new error for a requested name that is already taken
func NewNameConflictError(name string) *AppError {
	return &AppError{
		Type:    ErrorTypeNameConflict,
		Message: fmt.Sprintf("type name '%s' is already in use", name),
		Err:     ErrNameConflict,
	}
}

// NewInternalInvariantError reports a broken invariant of the inference
// engine. These are bugs, not user errors.
func NewInternalInvariantError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternalInvariant,
		Message: message,
		Err:     err,
	}
}

// NewRenderError creates a new error related to rendering output
func NewRenderError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRender,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the category of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeUnsupportedRoot:
			return fmt.Sprintf("Unsupported input: %s", appErr.Message)
		case ErrorTypeNameConflict:
			return fmt.Sprintf("Naming error: %s", appErr.Message)
		case ErrorTypeInternalInvariant:
			return fmt.Sprintf("Internal error (please report this): %s", appErr.Message)
		case ErrorTypeRender:
			return fmt.Sprintf("Rendering error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrUnsupportedRoot) {
		return "Error: The JSON root must be an object or an array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
