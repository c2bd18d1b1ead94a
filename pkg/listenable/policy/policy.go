// Package policy decides which container keys a proxy admits.
//
// A Policy is one of a closed set of forms, chosen explicitly at construction:
//
//	policy.AllowAll()                    // every key
//	policy.AllowExisting()               // keys present when the proxy is built
//	policy.AllowList("a", "b", 3)        // a fixed list, stringified
//	policy.AllowPattern(`^user\.`)       // ECMAScript regular expression
//	policy.AllowPredicate(fn)            // fn(key) decides
//
// AllowExpression and AllowNamed build predicate policies from config-friendly
// inputs. And conjoins an extra predicate that is evaluated before the list or
// pattern check.
package policy

import (
	"fmt"
	"slices"

	"github.com/dlclark/regexp2"
	"github.com/spf13/cast"

	"github.com/randalmurphal/listenable/pkg/listenable/keyexpr"
)

// Kind identifies the form of a Policy.
type Kind int

const (
	// KindAll admits every key.
	KindAll Kind = iota
	// KindExisting admits the keys present when the policy is snapshotted.
	KindExisting
	// KindList admits a fixed list of keys.
	KindList
	// KindPattern admits keys matching a regular expression.
	KindPattern
	// KindPredicate admits keys accepted by a function.
	KindPredicate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindExisting:
		return "existing"
	case KindList:
		return "list"
	case KindPattern:
		return "pattern"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Predicate reports whether a key is admitted.
type Predicate func(key string) bool

// Policy is an immutable key-admission rule. The zero value admits every key.
type Policy struct {
	kind      Kind
	predicate Predicate
	keys      []string
	index     map[string]struct{}
	pattern   *regexp2.Regexp
}

// AllowAll admits every key.
func AllowAll() Policy {
	return Policy{kind: KindAll}
}

// AllowExisting admits only the keys present in the target when the proxy is
// constructed. Until Snapshot is called it admits nothing.
func AllowExisting() Policy {
	return Policy{kind: KindExisting, index: map[string]struct{}{}}
}

// AllowList admits exactly the given keys. Keys are stringified once, here.
func AllowList(keys ...any) Policy {
	list := make([]string, 0, len(keys))
	for _, k := range keys {
		s, err := cast.ToStringE(k)
		if err != nil {
			s = fmt.Sprint(k)
		}
		list = append(list, s)
	}
	return newListPolicy(KindList, list)
}

// AllowPattern admits keys matching expr, compiled with ECMAScript semantics.
func AllowPattern(expr string) (Policy, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return Policy{}, fmt.Errorf("compile key pattern: %w", err)
	}
	return AllowRegexp(re), nil
}

// MustAllowPattern is like AllowPattern but panics on an invalid expression.
func MustAllowPattern(expr string) Policy {
	p, err := AllowPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// AllowRegexp admits keys matching a precompiled expression.
// A nil re admits every key.
func AllowRegexp(re *regexp2.Regexp) Policy {
	if re == nil {
		return AllowAll()
	}
	return Policy{kind: KindPattern, pattern: re}
}

// AllowPredicate admits keys for which fn returns true.
// A nil fn admits every key.
func AllowPredicate(fn Predicate) Policy {
	if fn == nil {
		return AllowAll()
	}
	return Policy{kind: KindPredicate, predicate: fn}
}

// AllowExpression admits keys matching a keyexpr condition.
func AllowExpression(src string) (Policy, error) {
	e, err := keyexpr.Compile(src)
	if err != nil {
		return Policy{}, err
	}
	return AllowPredicate(e.Match), nil
}

func newListPolicy(kind Kind, keys []string) Policy {
	index := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		index[k] = struct{}{}
	}
	return Policy{kind: kind, keys: keys, index: index}
}

// And returns a copy of p that also requires fn.
// fn runs first and can reject on its own; the list or pattern check follows.
func (p Policy) And(fn Predicate) Policy {
	if fn == nil {
		return p
	}
	if prev := p.predicate; prev != nil {
		p.predicate = func(key string) bool { return prev(key) && fn(key) }
	} else {
		p.predicate = fn
	}
	return p
}

// Snapshot fixes the admitted set of an AllowExisting policy to keys.
// Other kinds are returned unchanged.
func (p Policy) Snapshot(keys []string) Policy {
	if p.kind != KindExisting {
		return p
	}
	snap := newListPolicy(KindExisting, slices.Clone(keys))
	snap.predicate = p.predicate
	return snap
}

// Allows reports whether key is admitted.
func (p Policy) Allows(key string) bool {
	if p.predicate != nil && !p.predicate(key) {
		return false
	}

	switch p.kind {
	case KindExisting, KindList:
		_, ok := p.index[key]
		return ok
	case KindPattern:
		ok, err := p.pattern.MatchString(key)
		return err == nil && ok
	}
	return true
}

// Kind returns the policy form.
func (p Policy) Kind() Kind {
	return p.kind
}

// Keys returns the admitted keys of a list or snapshotted policy, in the order given.
func (p Policy) Keys() []string {
	return slices.Clone(p.keys)
}

// String describes the policy for logs.
func (p Policy) String() string {
	switch p.kind {
	case KindList, KindExisting:
		return fmt.Sprintf("%s%v", p.kind, p.keys)
	case KindPattern:
		return fmt.Sprintf("pattern(%s)", p.pattern.String())
	}
	return p.kind.String()
}
