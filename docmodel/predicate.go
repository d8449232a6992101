package docmodel

import (
	"fmt"
	"strings"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// A Predicate is one parsed (field, operator, value) filter triple.
type Predicate struct {
	Field string
	Op    string
	Value any
}

// ParsePredicate converts a compact filter expression into a Predicate.
//
// The expression holds one, two or three whitespace-separated tokens:
//   - "field"            -> equality against the supplied value
//   - "field op"         -> op against the supplied value
//   - "field op literal" -> op against the literal embedded in the string
//
// Any other token count fails with ErrMalformedPredicate naming the offending
// expression. Field and operator names cannot contain spaces; there is no
// escaping and no support for compound expressions.
func ParsePredicate(expr string, value ...any) (Predicate, error) {
	tokens := strings.Fields(expr)

	var supplied any
	if len(value) > 0 {
		supplied = value[0]
	}

	switch len(tokens) {
	case 1:
		return Predicate{Field: tokens[0], Op: driver.OpEqual, Value: supplied}, nil

	case 2:
		return Predicate{Field: tokens[0], Op: normalizeOperator(tokens[1]), Value: supplied}, nil

	case 3:
		return Predicate{Field: tokens[0], Op: normalizeOperator(tokens[1]), Value: tokens[2]}, nil

	default:
		return Predicate{}, fmt.Errorf("%w: %q", ErrMalformedPredicate, expr)
	}
}

// normalizeOperator maps the single-equals spelling onto the canonical
// equality operator; everything else is passed through for the engine to
// accept or reject.
func normalizeOperator(op string) string {
	if op == "=" {
		return driver.OpEqual
	}

	return op
}
