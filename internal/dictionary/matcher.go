package dictionary

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

// Matcher identifies a dictionary entry: either an exact word or a pattern.
// The zero value is the exact matcher for the empty word.
type Matcher struct {
	source string
	re     *regexp2.Regexp
}

// Exact returns a matcher for the literal word.
func Exact(word string) Matcher {
	return Matcher{source: word}
}

// Pattern compiles an ECMAScript regular expression into a matcher.
// The source is given without delimiters, e.g. `^a+$`.
func Pattern(source string) (Matcher, error) {
	if source == "" {
		return Matcher{}, &PatternError{Source: source}
	}
	re, err := regexp2.Compile(source, regexp2.ECMAScript)
	if err != nil {
		return Matcher{}, &PatternError{Source: source, Err: err}
	}
	re.MatchTimeout = DefaultMatchTimeout
	return Matcher{source: source, re: re}, nil
}

// MustPattern is like Pattern but panics on an invalid source.
// Use only for known-valid patterns in initialization code.
func MustPattern(source string) Matcher {
	m, err := Pattern(source)
	if err != nil {
		panic(err)
	}
	return m
}

// IsPattern reports whether m is a pattern matcher.
func (m Matcher) IsPattern() bool {
	return m.re != nil
}

// Key returns the table key: the literal word or the pattern source.
func (m Matcher) Key() string {
	return m.source
}

// String renders exact matchers quoted and patterns between slashes.
func (m Matcher) String() string {
	if m.IsPattern() {
		return quote(m.source)
	}
	return fmt.Sprintf("%q", m.source)
}

// Match reports whether word satisfies the matcher. Exact matchers compare
// the whole word; patterns report whether they match anywhere in it.
func (m Matcher) Match(word string) (bool, error) {
	if !m.IsPattern() {
		return word == m.source, nil
	}
	ok, err := m.re.MatchString(word)
	if err != nil {
		return false, fmt.Errorf("matching %s against %q: %w", m, word, err)
	}
	return ok, nil
}
