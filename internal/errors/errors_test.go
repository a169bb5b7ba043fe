package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t,
		"parsing: unexpected end of JSON input: invalid JSON format",
		NewParsingError("unexpected end of JSON input", ErrInvalidJSON).Error(),
	)
	assert.Equal(t,
		"unsupported_root: root value is a number, expected an object or an array: root JSON value must be an object or an array",
		NewUnsupportedRootError("root value is a number, expected an object or an array").Error(),
	)
	assert.Equal(t, "render: no declarations", NewRenderError("no declarations", nil).Error())
}

func TestAppError_UnwrapReachesSentinel(t *testing.T) {
	cause := errors.New("disk full")
	err := NewOutputError("failed to write to file 'types.bal'", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, NewNameConflictError("User"), ErrNameConflict)
	assert.ErrorIs(t, NewInternalInvariantError("dangling reference", ErrMissingReference), ErrMissingReference)
	assert.NotErrorIs(t, NewConfigError("bad style", nil), ErrNameConflict)
}

func TestAppError_IsComparesType(t *testing.T) {
	conflict := NewNameConflictError("Order")

	assert.True(t, conflict.Is(&AppError{Type: ErrorTypeNameConflict, Message: "other"}))
	assert.False(t, conflict.Is(&AppError{Type: ErrorTypeRender}))
	assert.False(t, conflict.Is(ErrNameConflict))
}

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantErr  error
	}{
		{name: "input", err: NewInputError("msg", cause), wantType: ErrorTypeInput, wantErr: cause},
		{name: "parsing", err: NewParsingError("msg", cause), wantType: ErrorTypeParsing, wantErr: cause},
		{name: "unsupported root", err: NewUnsupportedRootError("msg"), wantType: ErrorTypeUnsupportedRoot, wantErr: ErrUnsupportedRoot},
		{name: "internal invariant", err: NewInternalInvariantError("msg", cause), wantType: ErrorTypeInternalInvariant, wantErr: cause},
		{name: "render", err: NewRenderError("msg", cause), wantType: ErrorTypeRender, wantErr: cause},
		{name: "config", err: NewConfigError("msg", cause), wantType: ErrorTypeConfig, wantErr: cause},
		{name: "output", err: NewOutputError("msg", cause), wantType: ErrorTypeOutput, wantErr: cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, "msg", tt.err.Message)
			assert.Equal(t, tt.wantErr, tt.err.Err)
		})
	}
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid JSON syntax", nil),
			expected: "JSON parsing error: invalid JSON syntax",
		},
		{
			name:     "unsupported root",
			err:      NewUnsupportedRootError("got a string"),
			expected: "Unsupported input: got a string",
		},
		{
			name:     "name conflict",
			err:      NewNameConflictError("User"),
			expected: "Naming error: type name 'User' is already in use",
		},
		{
			name:     "internal invariant",
			err:      NewInternalInvariantError("reference 'Foo' has no entry", ErrMissingReference),
			expected: "Internal error (please report this): reference 'Foo' has no entry",
		},
		{
			name:     "render error",
			err:      NewRenderError("failed to render", nil),
			expected: "Rendering error: failed to render",
		},
		{
			name:     "config error",
			err:      NewConfigError("bad config", nil),
			expected: "Configuration error: bad config",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - unsupported root",
			err:      ErrUnsupportedRoot,
			expected: "Error: The JSON root must be an object or an array.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("converting: %w", NewNameConflictError("User"))

	assert.Equal(t, ErrorTypeNameConflict, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.True(t, errors.Is(wrapped, ErrNameConflict))
	assert.True(t, errors.Is(wrapped, &AppError{Type: ErrorTypeNameConflict}))
}
