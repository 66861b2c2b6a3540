package ast

import (
	"strings"

	"kindcheck/internal/source"
)

// KindContext records the innermost syntactic position a kind
// annotation appeared in. The checker uses it to pick an expected kind
// when the annotation itself is not explicit.
type KindContext uint8

const (
	// ContextNone means no special enclosing position applies.
	ContextNone KindContext = iota
	// ContextMappedType marks the value position of a mapped member.
	ContextMappedType
	// ContextExtendsConstraint marks a type-parameter constraint.
	ContextExtendsConstraint
)

func (c KindContext) String() string {
	switch c {
	case ContextMappedType:
		return "mapped-type"
	case ContextExtendsConstraint:
		return "extends-constraint"
	default:
		return "none"
	}
}

// KindExprForm discriminates kind expression shapes.
type KindExprForm uint8

const (
	// KindFormInvalid is produced only for recovered wreckage.
	KindFormInvalid KindExprForm = iota
	// KindFormLeaf is the arity-0 leaf 'Type'.
	KindFormLeaf
	// KindFormApplied is Kind<arg, ...> with zero or more arguments.
	KindFormApplied
	// KindFormAlias is a reference to a named alias (Functor, Free, ...).
	KindFormAlias
)

// KindExpr is the syntax-level kind annotation. A recovered node may
// carry fewer or more arguments than any registered shape expects; the
// factory and checker deal with that, not the parser.
type KindExpr struct {
	Form      KindExprForm
	Alias     string      // set for KindFormAlias
	Args      []*KindExpr // set for KindFormApplied
	Context   KindContext
	Recovered bool
	Sp        source.Span
}

func (e *KindExpr) Kind() NodeKind    { return NodeKindExpr }
func (e *KindExpr) Span() source.Span { return e.Sp }
func (e *KindExpr) isMemberValue()    {}

// Arity returns the argument count the expression syntactically
// declares: 0 for leaves and aliases, len(Args) for applied forms.
func (e *KindExpr) Arity() int {
	if e == nil || e.Form != KindFormApplied {
		return 0
	}
	return len(e.Args)
}

// String renders the expression in source syntax, for diagnostics and
// hover text.
func (e *KindExpr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Form {
	case KindFormLeaf:
		return "Type"
	case KindFormAlias:
		return e.Alias
	case KindFormApplied:
		var sb strings.Builder
		sb.WriteString("Kind<")
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteString(">")
		return sb.String()
	default:
		return "<error>"
	}
}
