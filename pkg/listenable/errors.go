package listenable

import "github.com/randalmurphal/listenable/pkg/listenable/event"

// Re-exported registry errors, so callers can match with errors.Is without
// importing the event package.
var (
	// ErrInvalidCategory is returned when binding to an undeclared category.
	ErrInvalidCategory = event.ErrInvalidCategory

	// ErrInvalidCallback is returned when a bind or unbind is missing its listener.
	ErrInvalidCallback = event.ErrInvalidCallback
)
