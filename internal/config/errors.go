package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidConfig indicates the configuration could not be decoded.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidationFailed indicates a setting fails validation.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation, e.g. "engine.accept".
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
	// Code categorizes the validation error.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is reports ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeInvalid is a validation failure without a more specific code.
	ErrCodeInvalid ValidationErrorCode = iota
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
	// ErrCodeInvalidEnum indicates the value is not in the allowed enum.
	ErrCodeInvalidEnum
	// ErrCodePatternInvalid indicates a word pattern does not compile.
	ErrCodePatternInvalid
	// ErrCodeRequiredMissing indicates a required setting is missing.
	ErrCodeRequiredMissing
	// ErrCodeConflict indicates mutually exclusive settings are both set.
	ErrCodeConflict
	// ErrCodeFileUnreadable indicates a referenced file cannot be read.
	ErrCodeFileUnreadable
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeInvalid:
		return "invalid"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	case ErrCodePatternInvalid:
		return "pattern_invalid"
	case ErrCodeRequiredMissing:
		return "required_missing"
	case ErrCodeConflict:
		return "conflict"
	case ErrCodeFileUnreadable:
		return "file_unreadable"
	default:
		return "unknown"
	}
}
