package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/listenable/pkg/listenable/registry"
)

// Sentinel errors for building policies from config.
var (
	// ErrUnknownMode indicates a Spec.Mode that names no policy form.
	ErrUnknownMode = errors.New("unknown policy mode")

	// ErrUnknownPredicate indicates a predicate name that was never registered.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrMissingField indicates a mode whose required field is empty.
	ErrMissingField = errors.New("missing policy field")
)

var predicates = registry.New[string, Predicate]()

// RegisterPredicate makes fn available to config files under name.
// Registering the same name again replaces the previous predicate.
func RegisterPredicate(name string, fn Predicate) {
	predicates.Register(name, fn)
}

// Predicates returns the registered predicate names, sorted.
func Predicates() []string {
	return predicates.Keys(strings.Compare)
}

// AllowNamed admits keys accepted by the predicate registered under name.
func AllowNamed(name string) (Policy, error) {
	fn, ok := predicates.Get(name)
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrUnknownPredicate, name)
	}
	return AllowPredicate(fn), nil
}

// Spec is the serializable description of a Policy.
//
// Mode selects the form: "all" (or empty), "existing", "list", "pattern",
// "expression" or "predicate". For the other modes, a non-empty Predicate
// names a registered predicate that is conjoined with And.
type Spec struct {
	Mode       string   `mapstructure:"mode"`
	Keys       []string `mapstructure:"keys"`
	Pattern    string   `mapstructure:"pattern"`
	Expression string   `mapstructure:"expression"`
	Predicate  string   `mapstructure:"predicate"`
}

// FromSpec builds the Policy described by s.
func FromSpec(s Spec) (Policy, error) {
	var (
		p   Policy
		err error
	)

	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case "", "all":
		p = AllowAll()
	case "existing":
		p = AllowExisting()
	case "list":
		keys := make([]any, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = k
		}
		p = AllowList(keys...)
	case "pattern":
		if s.Pattern == "" {
			return Policy{}, fmt.Errorf("%w: pattern", ErrMissingField)
		}
		p, err = AllowPattern(s.Pattern)
	case "expression":
		if s.Expression == "" {
			return Policy{}, fmt.Errorf("%w: expression", ErrMissingField)
		}
		p, err = AllowExpression(s.Expression)
	case "predicate":
		if s.Predicate == "" {
			return Policy{}, fmt.Errorf("%w: predicate", ErrMissingField)
		}
		return AllowNamed(s.Predicate)
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownMode, s.Mode)
	}
	if err != nil {
		return Policy{}, err
	}

	if s.Predicate != "" {
		fn, ok := predicates.Get(s.Predicate)
		if !ok {
			return Policy{}, fmt.Errorf("%w: %s", ErrUnknownPredicate, s.Predicate)
		}
		p = p.And(fn)
	}
	return p, nil
}
