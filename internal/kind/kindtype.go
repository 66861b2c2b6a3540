package kind

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/source"
)

// KindType is the kind resolved for one type-constructor usage,
// attached to its symbol. Values are immutable once built; the factory
// guarantees Params is never nil and Arity is never negative, so
// consumers never null-check.
type KindType struct {
	Symbol    string
	Arity     int
	Params    []*Metadata
	Variances []ast.Variance // declared variance per parameter, may be empty
	AliasRef  string         // set when the usage was a bare alias name, resolved by the checker
	HasErrors bool
	Sp        source.Span
}

// NewKindType builds a KindType, clamping a negative arity to zero and
// normalizing Params to exactly Arity entries (missing slots become the
// leaf shape, extras are dropped).
func NewKindType(symbol string, arity int, params []*Metadata, hasErrors bool) KindType {
	if arity < 0 {
		arity = 0
	}
	normalized := make([]*Metadata, arity)
	for i := range normalized {
		if i < len(params) && params[i] != nil {
			normalized[i] = params[i]
		} else {
			normalized[i] = Leaf()
		}
	}
	return KindType{
		Symbol:    symbol,
		Arity:     arity,
		Params:    normalized,
		HasErrors: hasErrors,
	}
}

// NewErrorKindType returns the arity-0 error kind for a symbol whose
// resolution failed. The checker degrades gracefully with it instead of
// aborting the pass.
func NewErrorKindType(symbol string) KindType {
	return NewKindType(symbol, 0, nil, true)
}

// NewAliasKindType returns a KindType standing for a bare alias
// reference; the compatibility checker resolves it through the registry
// before comparing.
func NewAliasKindType(alias string, sp source.Span) KindType {
	kt := NewKindType(alias, 0, nil, false)
	kt.AliasRef = alias
	kt.Sp = sp
	return kt
}

// FromMetadata converts a registered shape into a KindType for
// comparison purposes.
func FromMetadata(symbol string, meta *Metadata) KindType {
	if meta == nil {
		return NewErrorKindType(symbol)
	}
	kt := NewKindType(symbol, meta.Arity, meta.Params, false)
	kt.Variances = meta.ParamVariance
	return kt
}

// FromNode derives a KindType from a syntax node: the arity is the
// node's argument count (zero when absent). Recovered nodes yield an
// error-flagged value.
func FromNode(symbol string, node *ast.KindExpr) KindType {
	if node == nil {
		return NewErrorKindType(symbol)
	}
	if node.Recovered || node.Form == ast.KindFormInvalid {
		kt := NewErrorKindType(symbol)
		kt.Sp = node.Sp
		return kt
	}
	if node.Form == ast.KindFormAlias {
		return NewAliasKindType(node.Alias, node.Sp)
	}
	params := make([]*Metadata, 0, len(node.Args))
	for _, arg := range node.Args {
		params = append(params, MetadataFromNode(arg))
	}
	kt := NewKindType(symbol, len(node.Args), params, false)
	kt.Sp = node.Sp
	return kt
}

// MetadataFromNode converts a kind expression into a shape, treating
// unresolvable pieces as leaves. Alias forms stay unresolved here; the
// checker resolves them against its registry.
func MetadataFromNode(node *ast.KindExpr) *Metadata {
	if node == nil || node.Recovered {
		return Leaf()
	}
	switch node.Form {
	case ast.KindFormLeaf:
		return Leaf()
	case ast.KindFormApplied:
		params := make([]*Metadata, 0, len(node.Args))
		for _, arg := range node.Args {
			params = append(params, MetadataFromNode(arg))
		}
		return NewMetadata(len(node.Args), params...)
	case ast.KindFormAlias:
		m := Leaf()
		m.ConstraintTag = node.Alias
		return m
	default:
		return Leaf()
	}
}

// Shape projects the KindType onto a Metadata tree for structural
// comparison.
func (kt KindType) Shape() *Metadata {
	return &Metadata{
		Arity:         kt.Arity,
		Params:        kt.Params,
		ParamVariance: kt.Variances,
	}
}
