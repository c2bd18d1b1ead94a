package event

import (
	"slices"

	"github.com/google/uuid"
)

// Typed is implemented by every payload dispatched through a Registry.
// EventType names the category the payload belongs to.
type Typed interface {
	EventType() string
}

// Listener receives dispatched events.
// Returning an error stops the remaining listeners for the same event.
type Listener[E Typed] func(evt E) error

// Subscription identifies a bound listener.
// Go functions are not comparable, so the handle stands in for the listener
// when unbinding.
type Subscription struct {
	id      string
	release func(*Subscription)
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Unsubscribe removes the subscription from every category of its registry.
// Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.release == nil {
		return
	}
	s.release(s)
}

type binding[E Typed] struct {
	sub *Subscription
	fn  Listener[E]
}

// Registry is a fixed-category publish/subscribe hub with synchronous delivery.
type Registry[E Typed] struct {
	categories  []string
	subscribers map[string][]binding[E]
}

// NewRegistry creates a registry declaring the given categories.
// Each category starts with no subscribers. Duplicates are collapsed.
func NewRegistry[E Typed](categories ...string) *Registry[E] {
	r := &Registry[E]{
		categories:  make([]string, 0, len(categories)),
		subscribers: make(map[string][]binding[E], len(categories)),
	}
	for _, c := range categories {
		if _, ok := r.subscribers[c]; ok {
			continue
		}
		r.categories = append(r.categories, c)
		r.subscribers[c] = nil
	}
	return r
}

// Dispatch invokes every listener bound to evt's category in registration order.
// The listener list is snapshotted first, so binds and unbinds made by a
// listener take effect from the next dispatch.
func (r *Registry[E]) Dispatch(evt E) error {
	category := evt.EventType()
	bindings, ok := r.subscribers[category]
	if !ok {
		return r.categoryError(category)
	}

	for _, b := range slices.Clone(bindings) {
		if err := b.fn(evt); err != nil {
			return &ListenerError{
				Category:       category,
				SubscriptionID: b.sub.id,
				Err:            err,
			}
		}
	}
	return nil
}

// BindAll registers fn against every declared category.
func (r *Registry[E]) BindAll(fn Listener[E]) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidCallback
	}
	sub := r.newSubscription()
	for _, c := range r.categories {
		r.subscribers[c] = append(r.subscribers[c], binding[E]{sub: sub, fn: fn})
	}
	return sub, nil
}

// Bind registers fn against a single category.
func (r *Registry[E]) Bind(category string, fn Listener[E]) (*Subscription, error) {
	if fn == nil {
		return nil, ErrInvalidCallback
	}
	if !r.HasCategory(category) {
		return nil, r.categoryError(category)
	}
	sub := r.newSubscription()
	r.subscribers[category] = append(r.subscribers[category], binding[E]{sub: sub, fn: fn})
	return sub, nil
}

// Unbind removes sub from every category. Unknown subscriptions are ignored.
func (r *Registry[E]) Unbind(sub *Subscription) {
	if sub == nil {
		return
	}
	for _, c := range r.categories {
		r.remove(c, sub)
	}
}

// UnbindFrom removes sub from one category.
// The category must be declared; an absent subscription is a no-op.
func (r *Registry[E]) UnbindFrom(category string, sub *Subscription) error {
	if !r.HasCategory(category) {
		return r.categoryError(category)
	}
	if sub != nil {
		r.remove(category, sub)
	}
	return nil
}

// HasCategory reports whether name was declared at construction.
func (r *Registry[E]) HasCategory(name string) bool {
	_, ok := r.subscribers[name]
	return ok
}

// Categories returns the declared categories in declaration order.
func (r *Registry[E]) Categories() []string {
	return slices.Clone(r.categories)
}

// Len returns the number of subscriptions bound to category.
func (r *Registry[E]) Len(category string) int {
	return len(r.subscribers[category])
}

func (r *Registry[E]) remove(category string, sub *Subscription) {
	r.subscribers[category] = slices.DeleteFunc(r.subscribers[category], func(b binding[E]) bool {
		return b.sub == sub
	})
}

func (r *Registry[E]) newSubscription() *Subscription {
	return &Subscription{
		id:      uuid.New().String(),
		release: r.Unbind,
	}
}

func (r *Registry[E]) categoryError(category string) error {
	return &CategoryError{
		Category: category,
		Allowed:  r.Categories(),
	}
}
