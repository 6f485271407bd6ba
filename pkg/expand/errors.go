package expand

import (
	"errors"
	"fmt"

	"github.com/hexlit-dev/hexlit/pkg/token"
)

// Error is the base interface for all expansion errors.
type Error interface {
	error
	Position() token.Position
	Message() string
}

// baseError provides common error functionality.
type baseError struct {
	pos token.Position
	msg string
}

func (e *baseError) Position() token.Position { return e.pos }
func (e *baseError) Message() string          { return e.msg }
func (e *baseError) Error() string {
	if e.pos.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.pos.File, e.pos.Line, e.pos.Column, e.msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

// ParseError represents a failure to read a tagged literal.
type ParseError struct {
	baseError
}

// NewParseError creates a new parse error.
func NewParseError(pos token.Position, msg string) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, msg: msg}}
}

// NewParseErrorf creates a new parse error with formatting.
func NewParseErrorf(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

// GenerationError represents a failure to construct a replacement expression.
type GenerationError struct {
	baseError
}

// NewGenerationError creates a new generation error.
func NewGenerationError(pos token.Position, msg string) *GenerationError {
	return &GenerationError{baseError: baseError{pos: pos, msg: msg}}
}

// NewGenerationErrorf creates a new generation error with formatting.
func NewGenerationErrorf(pos token.Position, format string, args ...any) *GenerationError {
	return &GenerationError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

// TransformError is the error surfaced by a failed transformation. Parse and
// generation failures convert into it with their position and message kept,
// and the original error stays reachable through Unwrap.
type TransformError struct {
	baseError
	Cause error
}

// NewTransformError creates a new transform error.
func NewTransformError(pos token.Position, msg string) *TransformError {
	return &TransformError{baseError: baseError{pos: pos, msg: msg}}
}

// NewTransformErrorf creates a new transform error with formatting.
func NewTransformErrorf(pos token.Position, format string, args ...any) *TransformError {
	return &TransformError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

func (e *TransformError) Unwrap() error {
	return e.Cause
}

// AsTransformError converts any expansion error into a TransformError. An
// error that is not an expansion Error is wrapped with an invalid position.
func AsTransformError(err error) *TransformError {
	var terr *TransformError
	if errors.As(err, &terr) {
		return terr
	}
	var inner Error
	if errors.As(err, &inner) {
		return &TransformError{
			baseError: baseError{pos: inner.Position(), msg: inner.Message()},
			Cause:     err,
		}
	}
	return &TransformError{
		baseError: baseError{msg: err.Error()},
		Cause:     err,
	}
}
