package event

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry misuse.
var (
	// ErrInvalidCategory indicates a category that was not declared at construction.
	ErrInvalidCategory = errors.New("invalid event category")

	// ErrInvalidCallback indicates a nil or non-callable listener.
	ErrInvalidCallback = errors.New("listener must be a non-nil function")
)

// CategoryError reports an undeclared category along with the allowed ones.
type CategoryError struct {
	// Category is the rejected category.
	Category string
	// Allowed lists the categories declared at construction.
	Allowed []string
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	return fmt.Sprintf("event type %q must be one of: %s", e.Category, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrInvalidCategory for errors.Is support.
func (e *CategoryError) Unwrap() error {
	return ErrInvalidCategory
}

// ListenerError wraps an error returned by a listener during dispatch.
type ListenerError struct {
	// Category is the category being dispatched.
	Category string
	// SubscriptionID identifies the failing listener.
	SubscriptionID string
	// Err is the listener's error.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s on %s: %v", e.SubscriptionID, e.Category, e.Err)
}

// Unwrap returns the listener's error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}
