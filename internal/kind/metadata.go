// Package kind models the arity and parameter shape a type constructor
// must satisfy, and implements the structural compatibility check over
// those shapes.
package kind

import (
	"strings"

	"kindcheck/internal/ast"
)

// Metadata describes one kind shape. The zero-arity shape with no
// parameters is the leaf 'Type'. Shapes nest: Free constrains its first
// argument to itself be a unary constructor.
//
// Invariant: len(Params) == Arity. Constructors enforce it.
type Metadata struct {
	Arity         int
	Params        []*Metadata
	ParamVariance []ast.Variance // empty when no variance is expected
	ConstraintTag string
	BuiltinAlias  bool
	FPPattern     bool
}

// NewMetadata builds a shape from an arity and parameter kinds. A
// negative arity clamps to zero. Missing parameter slots fill with the
// leaf shape; extras are dropped, keeping the length invariant.
func NewMetadata(arity int, params ...*Metadata) *Metadata {
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
	return &Metadata{Arity: arity, Params: normalized}
}

// Leaf returns the arity-0 'Type' shape.
func Leaf() *Metadata {
	return &Metadata{Arity: 0, Params: []*Metadata{}}
}

// Unary returns the plain unary-constructor shape Kind<Type, Type>.
func Unary() *Metadata {
	return NewMetadata(1)
}

// IsLeaf reports whether the shape is the 'Type' leaf.
func (m *Metadata) IsLeaf() bool {
	return m != nil && m.Arity == 0
}

// Equal reports deep structural equality, including variance
// expectations and flags. Used for idempotent re-registration.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Arity != other.Arity ||
		m.ConstraintTag != other.ConstraintTag ||
		m.BuiltinAlias != other.BuiltinAlias ||
		m.FPPattern != other.FPPattern {
		return false
	}
	if len(m.ParamVariance) != len(other.ParamVariance) {
		return false
	}
	for i, v := range m.ParamVariance {
		if v != other.ParamVariance[i] {
			return false
		}
	}
	for i, p := range m.Params {
		if !p.Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

// StructurallyEqual compares only arity and parameter shapes, ignoring
// flags and tags. Compatibility is purely structural: a constructor
// satisfying a shape passes without declaring the alias.
func (m *Metadata) StructurallyEqual(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Arity != other.Arity {
		return false
	}
	for i, p := range m.Params {
		if !p.StructurallyEqual(other.Params[i]) {
			return false
		}
	}
	return true
}

// Depth returns the nesting depth of the shape; the leaf is depth 1.
// All built-ins stay within depth 3.
func (m *Metadata) Depth() int {
	if m == nil {
		return 0
	}
	max := 0
	for _, p := range m.Params {
		if d := p.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// String renders the shape in source syntax: Type, Kind<Type>,
// Kind<Kind<Type, Type>, Type>, ...
func (m *Metadata) String() string {
	if m == nil {
		return "<nil>"
	}
	if m.IsLeaf() {
		return "Type"
	}
	var sb strings.Builder
	sb.WriteString("Kind<")
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	// The trailing result position is implied; the source syntax closes
	// after the parameters.
	sb.WriteString(">")
	return sb.String()
}

// WithVariance returns a copy expecting the given variance per
// parameter position.
func (m *Metadata) WithVariance(vs ...ast.Variance) *Metadata {
	cp := *m
	cp.ParamVariance = append([]ast.Variance(nil), vs...)
	return &cp
}

// WithTag returns a copy carrying a constraint tag name.
func (m *Metadata) WithTag(tag string) *Metadata {
	cp := *m
	cp.ConstraintTag = tag
	return &cp
}
