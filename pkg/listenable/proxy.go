package listenable

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/listenable/pkg/listenable/event"
	"github.com/randalmurphal/listenable/pkg/listenable/observability"
	"github.com/randalmurphal/listenable/pkg/listenable/policy"
	"github.com/randalmurphal/listenable/pkg/listenable/target"
)

// Operation names used in logs, metrics and span names.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpDelete = "delete"
)

// Container is the accessor half of a Proxy.
//
// Every method that can dispatch returns the operation's outcome together with
// the first listener error, if any. A listener error does not undo a mutation
// that was already applied.
type Container interface {
	// Read returns the value under key when key is admitted and present.
	Read(key string) (value any, ok bool, err error)

	// Write stores value under key when key is admitted.
	Write(key string, value any) (bool, error)

	// Delete removes key when present. The admission policy is not consulted.
	Delete(key string) (bool, error)

	// HasKey reports whether the target holds key. No event is dispatched.
	HasKey(key string) bool

	// ListKeys returns the target's keys. No event is dispatched.
	ListKeys() []string
}

// EventSource is the subscription half of a Proxy.
type EventSource interface {
	// BindAll subscribes fn to every category.
	BindAll(fn Listener) (*event.Subscription, error)

	// Bind subscribes fn to one category.
	Bind(category string, fn Listener) (*event.Subscription, error)

	// Unbind removes sub from every category.
	Unbind(sub *event.Subscription)

	// UnbindFrom removes sub from one category.
	UnbindFrom(category string, sub *event.Subscription) error
}

// Proxy mediates access to a target container and dispatches an Event for
// every read, write and delete.
//
// Proxy is not safe for concurrent use. Listeners run synchronously on the
// caller's goroutine and may use the proxy re-entrantly.
type Proxy struct {
	target target.Target
	policy policy.Policy
	events *event.Registry[Event]
	cfg    proxyConfig
}

var (
	_ Container   = (*Proxy)(nil)
	_ EventSource = (*Proxy)(nil)
)

// New wraps t. The proxy keeps a reference to t, so direct changes to t are
// visible through the proxy. t must not be nil.
func New(t target.Target, opts ...Option) *Proxy {
	cfg := defaultProxyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	keys := t.Keys()
	p := &Proxy{
		target: t,
		policy: cfg.policy.Snapshot(keys),
		events: event.NewRegistry[Event](Categories()...),
		cfg:    cfg,
	}

	observability.LogProxyCreated(cfg.logger, p.policy.String(), len(keys))
	return p
}

// Read builds a get event carrying the stored value. A key rejected by the
// policy dispatches the event with Success false and yields no value.
func (p *Proxy) Read(key string) (any, bool, error) {
	ctx, finish := p.begin(OpRead, key)

	value, present := p.target.Get(key)
	evt := newEvent(EventGet, key, value)

	if !p.IsKeyAllowed(key) {
		observability.LogAccessDenied(p.cfg.logger, OpRead, key)
		err := p.dispatch(ctx, evt)
		finish(false, err)
		return nil, false, err
	}

	evt.Success = true
	err := p.dispatch(ctx, evt)
	finish(true, err)
	return value, present, err
}

// Write stores value under key and dispatches create or update, then set.
//
// A new key dispatches create; an existing key whose value changed dispatches
// update; an unchanged value dispatches neither. The set event always follows
// an applied write. A key rejected by the policy, or refused by the target,
// dispatches set alone with Success false and leaves the target untouched.
func (p *Proxy) Write(key string, value any) (bool, error) {
	ctx, finish := p.begin(OpWrite, key)

	start, existed := p.target.Get(key)
	evt := newEvent(EventSet, key, value)
	evt.StartValue = start
	evt.HadStartValue = existed

	if !p.IsKeyAllowed(key) {
		observability.LogAccessDenied(p.cfg.logger, OpWrite, key)
		err := p.dispatch(ctx, evt)
		finish(false, err)
		return false, err
	}

	changed := !p.cfg.equal(start, value)
	if !p.target.Set(key, value) {
		err := p.dispatch(ctx, evt)
		finish(false, err)
		return false, err
	}
	evt.Success = true

	var err error
	switch {
	case !existed:
		err = p.dispatch(ctx, evt.derive(EventCreate))
	case changed:
		err = p.dispatch(ctx, evt.derive(EventUpdate))
	}
	if err == nil {
		err = p.dispatch(ctx, evt)
	}

	finish(true, err)
	return true, err
}

// Delete removes key from the target. Only absence makes it fail; the
// admission policy is not consulted. The event's Success mirrors whether the
// target reported the removal.
func (p *Proxy) Delete(key string) (bool, error) {
	ctx, finish := p.begin(OpDelete, key)

	value, present := p.target.Get(key)
	evt := newEvent(EventDelete, key, value)

	if !present {
		err := p.dispatch(ctx, evt)
		finish(false, err)
		return false, err
	}

	evt.Success = p.target.Delete(key)
	err := p.dispatch(ctx, evt)
	finish(evt.Success, err)
	return evt.Success, err
}

// HasKey reports whether the target holds key.
func (p *Proxy) HasKey(key string) bool {
	return p.target.Has(key)
}

// ListKeys returns the target's current keys.
func (p *Proxy) ListKeys() []string {
	return p.target.Keys()
}

// IsKeyAllowed reports whether the admission policy admits key.
func (p *Proxy) IsKeyAllowed(key string) bool {
	return p.policy.Allows(key)
}

// Policy returns the effective admission policy, snapshotted if it was
// built with policy.AllowExisting.
func (p *Proxy) Policy() policy.Policy {
	return p.policy
}

// BindAll implements EventSource.
func (p *Proxy) BindAll(fn Listener) (*event.Subscription, error) {
	return p.events.BindAll(fn)
}

// Bind implements EventSource.
func (p *Proxy) Bind(category string, fn Listener) (*event.Subscription, error) {
	return p.events.Bind(category, fn)
}

// Unbind implements EventSource.
func (p *Proxy) Unbind(sub *event.Subscription) {
	p.events.Unbind(sub)
}

// UnbindFrom implements EventSource.
func (p *Proxy) UnbindFrom(category string, sub *event.Subscription) error {
	return p.events.UnbindFrom(category, sub)
}

// begin opens the span for one operation and returns the function that
// closes it and records metrics.
func (p *Proxy) begin(op, key string) (context.Context, func(success bool, err error)) {
	elapsed := observability.TimedOperation()
	ctx, span := p.cfg.spans.StartOperationSpan(p.cfg.ctx, op, key)

	return ctx, func(success bool, err error) {
		p.cfg.metrics.RecordOperation(ctx, op, success, elapsed())
		p.cfg.spans.EndSpanWithError(span, err)
		observability.LogAccess(p.cfg.logger, op, key, success)
	}
}

func (p *Proxy) dispatch(ctx context.Context, evt Event) error {
	listeners := p.events.Len(evt.Type)
	p.cfg.spans.AddSpanEvent(ctx, "listenable.dispatch",
		attribute.String("category", evt.Type),
		attribute.Bool("success", evt.Success),
		attribute.Int("listeners", listeners),
	)

	err := p.events.Dispatch(evt)
	p.cfg.metrics.RecordDispatch(ctx, evt.Type, listeners, err)
	if err != nil {
		observability.LogDispatchError(p.cfg.logger, evt.Type, evt.Key, err)
	}
	return err
}
