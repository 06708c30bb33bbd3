package dictionary

import "errors"

var (
	// ErrInvalidArgument is returned when Listen receives mismatched matcher
	// and callback lists or a nil callback.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidPattern is returned when a pattern source cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// PatternError describes a pattern that failed to compile.
// It matches both ErrInvalidPattern and ErrInvalidArgument.
type PatternError struct {
	// Source is the pattern source as given.
	Source string

	// Err is the underlying compile error, nil for an empty source.
	Err error
}

func (e *PatternError) Error() string {
	msg := "invalid pattern " + quote(e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the sentinels and the compile error to errors.Is/As.
func (e *PatternError) Unwrap() []error {
	errs := []error{ErrInvalidPattern, ErrInvalidArgument}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func quote(s string) string {
	return "/" + s + "/"
}
