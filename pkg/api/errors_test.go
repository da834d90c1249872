package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
)

func TestNewError(t *testing.T) {
	err := NewError(ErrCodeInvalidParam, "test error", nil)

	assert.Equal(t, ErrCodeInvalidParam, err.Code)
	assert.Equal(t, "test error", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "[INVALID_PARAM] test error", err.Error())
}

func TestWrapError(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := WrapError(originalErr, ErrCodeInternal, "wrapped message")

	assert.Equal(t, ErrCodeInternal, wrappedErr.Code)
	assert.Equal(t, originalErr, errors.Unwrap(wrappedErr))
	assert.Equal(t, "[INTERNAL] wrapped message: original error", wrappedErr.Error())
	assert.Nil(t, WrapError(nil, ErrCodeInternal, "nothing"))
}

func TestWrapError_KeepsStack(t *testing.T) {
	inner := NewError(ErrCodeClosed, "db closed", nil)
	outer := WrapError(fmt.Errorf("query: %w", inner), ErrCodeQuery, "run query")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Equal(t, ErrCodeQuery, GetErrorCode(outer))
	assert.True(t, errors.Is(outer, inner))
}

func TestError_StackTrace(t *testing.T) {
	stack := NewError(ErrCodeInvalidParam, "test error", nil).StackTrace()

	require.NotEmpty(t, stack)
	assert.Contains(t, stack[0], "TestError_StackTrace")
	for _, line := range stack {
		assert.Contains(t, line, ":")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{"nil error", nil, ErrCodeInternal, false},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"matching", NewError(ErrCodeLimit, "x", nil), ErrCodeLimit, true},
		{"different", NewError(ErrCodeLimit, "x", nil), ErrCodeSyntax, false},
		{"wrapped by fmt", fmt.Errorf("outer: %w", NewError(ErrCodeConfig, "x", nil)), ErrCodeConfig, true},
		{"empty code", errors.New("x"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestFromParseError(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{"POINT(1 2", ErrCodeSyntax},
		{"POINT(1 # 2)", ErrCodeSyntax},
		{"LINESTRING(1 1)", ErrCodeSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, perr := ewkt.Parse(tt.input)
			require.Error(t, perr)

			err := FromParseError(perr, "parse geometry")
			assert.Equal(t, tt.code, err.Code)
			assert.True(t, errors.Is(err, ewkt.ErrSyntax) || errors.Is(err, ewkt.ErrLexical))
		})
	}

	_, perr := ewkt.ParseWithOptions("LINESTRING(0 0,1 1,2 2)", ewkt.Options{MaxCoordinates: 2})
	assert.Equal(t, ErrCodeLimit, FromParseError(perr, "parse").Code)

	_, perr = ewkt.ParseWithOptions("POLYGON((0 0,1 0,1 1,0 1))", ewkt.Options{RequireClosedRings: true})
	assert.Equal(t, ErrCodeInvalidGeometry, FromParseError(perr, "parse").Code)

	assert.Equal(t, ErrCodeInternal, FromParseError(errors.New("io"), "parse").Code)
	assert.Nil(t, FromParseError(nil, "parse"))
}
