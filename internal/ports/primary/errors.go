// Package primary defines the primary ports (driving adapters) of the application.
package primary

import "github.com/example/atelier/internal/core/guard"

// Error kinds returned by every service. Test with errors.Is.
var (
	ErrNotFound   = guard.ErrNotFound
	ErrValidation = guard.ErrValidation
	ErrConflict   = guard.ErrConflict
)
