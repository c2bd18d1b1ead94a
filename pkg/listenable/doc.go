/*
Package listenable wraps a key-value container so that every access is
filtered by an admission policy and announced to subscribers.

# Overview

A Proxy sits in front of a target.Target. Reads, writes and deletes go
through the proxy, which checks the key against its policy, performs the
operation on the target and dispatches an Event describing the outcome:

	p := listenable.New(target.NewOrdered(), listenable.WithPolicy(policy.AllowList("host", "port")))

	sub, err := p.Bind(listenable.EventUpdate, func(evt listenable.Event) error {
	    fmt.Printf("%s: %v -> %v\n", evt.Key, evt.StartValue, evt.Value)
	    return nil
	})
	if err != nil {
	    return err
	}
	defer sub.Unsubscribe()

	p.Write("host", "localhost") // create, then set
	p.Write("host", "example")   // update, then set
	p.Write("user", "root")      // set with Success false

# Events

Five categories are declared: get, set, delete, create and update. A write
that adds a key dispatches create before set; a write that changes an
existing value dispatches update before set; a write of an equal value
dispatches set alone. Denied reads and writes, and deletes of absent keys,
are reported through Event.Success and the return values rather than errors.

Delete does not consult the policy. Only the key's absence makes it fail.

# Subscriptions

Bind and BindAll return a *event.Subscription that identifies the listener
for Unbind and UnbindFrom. Invoke offers the same operations through a single
variadic call:

	sub, _ := p.Invoke(func(evt listenable.Event) { log.Println(evt.Type, evt.Key) })
	p.Invoke(listenable.UnbindCommand, sub)

Listeners run synchronously in registration order. A listener error stops
the remaining listeners and is returned from the operation that dispatched
the event, after the operation has been applied to the target.

# Policies

See package policy. policy.AllowExisting is snapshotted from the target's
keys when the proxy is built.

# Observability

WithLogger, WithMetrics and WithTracing enable slog logging, OpenTelemetry
metrics and one span per operation. All three are off by default.

# Configuration

NewFromConfig builds a proxy from a config.Config; see Settings.

# Thread Safety

A Proxy is not safe for concurrent use. Listeners may call back into the
proxy; changes they make are visible to later operations, and bindings they
add or remove take effect from the next dispatch.
*/
package listenable
