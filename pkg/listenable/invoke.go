package listenable

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/randalmurphal/listenable/pkg/listenable/event"
)

// UnbindCommand is the first Invoke argument that selects unsubscription.
const UnbindCommand = "unbind"

// Invoke is the overloaded call interface over the proxy's subscriptions:
//
//	p.Invoke(fn)                      // subscribe fn to every category
//	p.Invoke("set", fn)               // subscribe fn to "set"
//	p.Invoke("unbind", sub)           // remove sub from every category
//	p.Invoke("unbind", "set", sub)    // remove sub from "set"
//
// fn may be a Listener, a func(Event) error or a func(Event). Categories may be
// any value that stringifies, such as a fmt.Stringer. Bind forms return the new
// subscription; unbind forms return nil.
func (p *Proxy) Invoke(args ...any) (*event.Subscription, error) {
	if len(args) > 0 {
		if cmd, ok := args[0].(string); ok && cmd == UnbindCommand {
			return nil, p.invokeUnbind(args[1:])
		}
	}
	return p.invokeBind(args)
}

func (p *Proxy) invokeBind(args []any) (*event.Subscription, error) {
	if len(args) == 0 {
		return nil, event.ErrInvalidCallback
	}
	if fn, ok := asListener(args[0]); ok {
		return p.BindAll(fn)
	}
	if len(args) < 2 {
		return nil, event.ErrInvalidCallback
	}

	fn, ok := asListener(args[1])
	if !ok {
		return nil, fmt.Errorf("bind %v: %w", args[0], event.ErrInvalidCallback)
	}
	return p.Bind(categoryOf(args[0]), fn)
}

func (p *Proxy) invokeUnbind(args []any) error {
	if len(args) > 0 {
		if sub, ok := args[0].(*event.Subscription); ok {
			p.Unbind(sub)
			return nil
		}
		if _, ok := asListener(args[0]); ok {
			return fmt.Errorf("unbind takes a *event.Subscription: %w", event.ErrInvalidCallback)
		}
	}

	var category string
	if len(args) > 0 {
		category = categoryOf(args[0])
	}

	var sub *event.Subscription
	if len(args) > 1 {
		s, ok := args[1].(*event.Subscription)
		if !ok {
			return fmt.Errorf("unbind %s: %w", category, event.ErrInvalidCallback)
		}
		sub = s
	}
	return p.UnbindFrom(category, sub)
}

// asListener normalizes the callback shapes Invoke accepts.
func asListener(v any) (Listener, bool) {
	switch fn := v.(type) {
	case Listener:
		return fn, fn != nil
	case func(Event) error:
		return fn, fn != nil
	case func(Event):
		if fn == nil {
			return nil, false
		}
		return func(evt Event) error {
			fn(evt)
			return nil
		}, true
	}
	return nil, false
}

func categoryOf(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
