package domain

import (
	"errors"
	"fmt"
)

// ErrRecursionLimit is matched (via errors.Is) by every RecursionError.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// ErrGrammarNotFound is returned when a grammar name cannot be found in a store.
var ErrGrammarNotFound = errors.New("grammar not found")

// ErrInvalidRule is returned when a rule value is neither a string nor a non-empty list of strings.
var ErrInvalidRule = errors.New("invalid rule")

// ErrInvalidGrammar is returned when grammar data cannot be decoded.
var ErrInvalidGrammar = errors.New("invalid grammar")

// ErrInvalidName is returned when a store cannot hold a grammar under the given name.
var ErrInvalidName = errors.New("invalid grammar name")

// RecursionError reports that evaluation nested deeper than the engine allows.
// This happens when a symbol transitively expands to itself.
type RecursionError struct {
	// Symbol is the key being resolved when the bound was crossed (may be empty
	// when the overflow happened while evaluating an action payload).
	Symbol string
	// Depth is the nesting depth that was reached.
	Depth int
	// Limit is the configured bound.
	Limit int
}

func (e *RecursionError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s (depth %d > limit %d)", ErrRecursionLimit, e.Depth, e.Limit)
	}
	return fmt.Sprintf("%s while expanding %q (depth %d > limit %d)", ErrRecursionLimit, e.Symbol, e.Depth, e.Limit)
}

// Is makes errors.Is(err, ErrRecursionLimit) true for any RecursionError.
func (e *RecursionError) Is(target error) bool {
	return target == ErrRecursionLimit
}

// IsRecursionError returns true if err (or anything it wraps) is a RecursionError.
func IsRecursionError(err error) bool {
	var re *RecursionError
	return errors.As(err, &re)
}
