/*
Package keyexpr implements a tiny condition language over container keys.

# Overview

Expressions are compiled once and matched against many keys. They are used by
policy.AllowExpression so that admission rules can live in config files,
where Go predicates cannot.

	e, err := keyexpr.Compile("key startswith 'user.' and len <= 32")
	if err != nil {
	    return err
	}
	e.Match("user.name") // true
	e.Match("admin")     // false

# Syntax

	<expr>    := <expr> 'or' <expr>
	           | <expr> 'and' <expr>
	           | 'not' <expr> | '!' <expr>
	           | '(' <expr> ')'
	           | <operand> <op> <operand>
	           | <operand>
	<op>      := '==' | '!=' | '<' | '>' | '<=' | '>='
	           | 'contains' | 'startswith' | 'endswith'
	<operand> := 'string' | "string" | number | true | false | key | len

'or' binds loosest, then 'and', then 'not'. Separators inside quotes are
ignored. A lone operand is true when it is truthy: a non-empty string, a
non-zero number, or true.

# Variables

	key   the key being tested
	len   the key's length in characters (runes)

Any other bare identifier is a compile error.
*/
package keyexpr
