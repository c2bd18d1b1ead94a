// Package event provides a typed, synchronous publish/subscribe registry.
//
// # Overview
//
// A Registry is created with a fixed set of categories. Each category holds an
// ordered list of subscriptions, and dispatching an event invokes every listener
// bound to the event's category, in the order they were bound, before Dispatch
// returns.
//
//	type Ping struct{ Kind string }
//
//	func (p Ping) EventType() string { return p.Kind }
//
//	reg := event.NewRegistry[Ping]("ping", "pong")
//
//	sub, err := reg.Bind("ping", func(p Ping) error {
//	    fmt.Println("got", p.Kind)
//	    return nil
//	})
//
//	err = reg.Dispatch(Ping{Kind: "ping"})
//
// # Binding Forms
//
// BindAll registers a listener against every declared category. Bind registers
// it against exactly one. Both return a *Subscription, which is the listener's
// identity: Unbind removes it from every category, UnbindFrom from one.
//
// # Errors
//
// Referencing a category that was not declared returns a *CategoryError, which
// matches ErrInvalidCategory with errors.Is. Binding a nil listener returns
// ErrInvalidCallback. A listener error stops the remaining listeners for that
// event and is returned from Dispatch wrapped in a *ListenerError.
//
// # Concurrency
//
// Registry is not safe for concurrent use. Listeners may bind, unbind and
// dispatch re-entrantly; changes made during a dispatch apply from the next one.
package event
