// Package guard holds the result type shared by the pure domain guards and
// the error kinds they map onto.
package guard

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Wrap with %w and test with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Kind classifies a rejected guard.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
)

// Result represents the outcome of a guard evaluation.
type Result struct {
	Allowed bool
	Reason  string
	Kind    Kind
}

// Allow returns a passing result.
func Allow() Result {
	return Result{Allowed: true}
}

// Deny returns a rejected result of the given kind.
func Deny(kind Kind, format string, args ...any) Result {
	return Result{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Error converts the guard result to an error if not allowed.
func (r Result) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", r.sentinel(), r.Reason)
}

func (r Result) sentinel() error {
	switch r.Kind {
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrValidation
	}
}
