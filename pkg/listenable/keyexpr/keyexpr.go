package keyexpr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
)

// Sentinel errors for expression compilation.
var (
	// ErrEmptyExpression indicates an empty expression or operand.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrUnknownIdentifier indicates a bare identifier other than key or len.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// SyntaxError wraps a compile failure with the offending source.
type SyntaxError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("keyexpr %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Expr is a compiled key condition.
type Expr struct {
	src  string
	root node
}

// Compile parses src into an Expr.
func Compile(src string) (*Expr, error) {
	root, err := parse(src)
	if err != nil {
		return nil, &SyntaxError{Source: src, Err: err}
	}
	return &Expr{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval compiles src and matches it against key.
func Eval(src, key string) (bool, error) {
	e, err := Compile(src)
	if err != nil {
		return false, err
	}
	return e.Match(key), nil
}

// Match reports whether key satisfies the expression.
func (e *Expr) Match(key string) bool {
	return e.root.eval(vars{key: key})
}

// String returns the source text.
func (e *Expr) String() string {
	return e.src
}

type vars struct {
	key string
}

func (v vars) lookup(name string) any {
	if name == "len" {
		return utf8.RuneCountInString(v.key)
	}
	return v.key
}

type node interface {
	eval(v vars) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(v vars) bool { return n.left.eval(v) || n.right.eval(v) }

type andNode struct{ left, right node }

func (n andNode) eval(v vars) bool { return n.left.eval(v) && n.right.eval(v) }

type notNode struct{ inner node }

func (n notNode) eval(v vars) bool { return !n.inner.eval(v) }

type compareNode struct {
	left, right operand
	cmp         comparator
}

func (n compareNode) eval(v vars) bool {
	return n.cmp(n.left.resolve(v), n.right.resolve(v))
}

type truthyNode struct{ value operand }

func (n truthyNode) eval(v vars) bool { return isTruthy(n.value.resolve(v)) }

// operand is either a literal or one of the key variables.
type operand struct {
	literal any
	ident   string
}

func (o operand) resolve(v vars) any {
	if o.ident != "" {
		return v.lookup(o.ident)
	}
	return o.literal
}

func parse(src string) (node, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, ErrEmptyExpression
	}

	if l, r, ok := splitTop(s, " or "); ok {
		return parseBinary(l, r, func(a, b node) node { return orNode{a, b} })
	}
	if l, r, ok := splitTop(s, " and "); ok {
		return parseBinary(l, r, func(a, b node) node { return andNode{a, b} })
	}

	switch {
	case strings.HasPrefix(s, "not "):
		inner, err := parse(strings.TrimPrefix(s, "not "))
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	case strings.HasPrefix(s, "!") && !strings.HasPrefix(s, "!="):
		inner, err := parse(strings.TrimPrefix(s, "!"))
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && balanced(s[1:len(s)-1]):
		return parse(s[1 : len(s)-1])
	}

	for _, op := range comparators {
		if l, r, ok := splitTop(s, op.token); ok {
			left, err := parseOperand(l)
			if err != nil {
				return nil, err
			}
			right, err := parseOperand(r)
			if err != nil {
				return nil, err
			}
			return compareNode{left: left, right: right, cmp: op.cmp}, nil
		}
	}

	value, err := parseOperand(s)
	if err != nil {
		return nil, err
	}
	return truthyNode{value}, nil
}

func parseBinary(l, r string, join func(a, b node) node) (node, error) {
	left, err := parse(l)
	if err != nil {
		return nil, err
	}
	right, err := parse(r)
	if err != nil {
		return nil, err
	}
	return join(left, right), nil
}

func parseOperand(s string) (operand, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return operand{}, ErrEmptyExpression
	}

	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return operand{literal: s[1 : len(s)-1]}, nil
	}

	switch strings.ToLower(s) {
	case "true":
		return operand{literal: true}, nil
	case "false":
		return operand{literal: false}, nil
	case "key", "len":
		return operand{ident: strings.ToLower(s)}, nil
	}

	if f, err := cast.ToFloat64E(s); err == nil {
		return operand{literal: f}, nil
	}

	return operand{}, fmt.Errorf("%w: %s", ErrUnknownIdentifier, s)
}

// splitTop splits s around the first sep that is outside quotes and parentheses.
func splitTop(s, sep string) (string, string, bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			return s[:i], s[i+len(sep):], true
		}
	}
	return "", "", false
}

// balanced reports whether parentheses in s (outside quotes) never close
// more than they open and end balanced.
func balanced(s string) bool {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
