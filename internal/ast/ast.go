// Package ast defines the syntax tree for kind-annotation declaration
// files. Every node is a tagged variant: consumers switch exhaustively
// on NodeKind (or the concrete type) instead of probing optional fields.
package ast

import (
	"kindcheck/internal/source"
)

// NodeKind discriminates syntax shapes. It participates in node
// identity keys, so existing values keep their positions.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeFile
	NodeAliasDecl
	NodeTypeDecl
	NodeTypeParam
	NodeHeritage
	NodeFieldMember
	NodeMappedMember
	NodeTypeRef
	NodeKindExpr
)

func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeAliasDecl:
		return "alias-decl"
	case NodeTypeDecl:
		return "type-decl"
	case NodeTypeParam:
		return "type-param"
	case NodeHeritage:
		return "heritage"
	case NodeFieldMember:
		return "field-member"
	case NodeMappedMember:
		return "mapped-member"
	case NodeTypeRef:
		return "type-ref"
	case NodeKindExpr:
		return "kind-expr"
	default:
		return "invalid"
	}
}

// Node is implemented by every syntax node.
type Node interface {
	Kind() NodeKind
	Span() source.Span
}

// Key identifies a node by position rather than object identity, so the
// same node reached through different analysis paths dedups correctly.
type Key struct {
	File source.FileID
	Pos  uint32
	Kind NodeKind
}

// KeyOf derives the identity key for a node.
func KeyOf(n Node) Key {
	sp := n.Span()
	return Key{File: sp.File, Pos: sp.Start, Kind: n.Kind()}
}

// File is the root node for one parsed source file.
type File struct {
	FileID source.FileID
	Decls  []Decl
	Sp     source.Span
}

func (f *File) Kind() NodeKind    { return NodeFile }
func (f *File) Span() source.Span { return f.Sp }

// Decl is a top-level declaration: alias or type.
type Decl interface {
	Node
	DeclName() string
	isDecl()
}

// AliasDecl declares a named kind alias: alias F = Kind<Type, Type>;
type AliasDecl struct {
	Name     string
	NameSpan source.Span
	Target   *KindExpr
	Sp       source.Span
}

func (d *AliasDecl) Kind() NodeKind    { return NodeAliasDecl }
func (d *AliasDecl) Span() source.Span { return d.Sp }
func (d *AliasDecl) DeclName() string  { return d.Name }
func (d *AliasDecl) isDecl()           {}

// TypeDecl declares a type constructor with optional parameters,
// heritage clause, and body members.
type TypeDecl struct {
	Name     string
	NameSpan source.Span
	Params   []*TypeParam
	Heritage *Heritage
	Members  []Member
	Sp       source.Span
}

func (d *TypeDecl) Kind() NodeKind    { return NodeTypeDecl }
func (d *TypeDecl) Span() source.Span { return d.Sp }
func (d *TypeDecl) DeclName() string  { return d.Name }
func (d *TypeDecl) isDecl()           {}

// Variance classifies a type-parameter position.
type Variance uint8

const (
	VarianceNone Variance = iota
	VarianceCovariant
	VarianceContravariant
)

func (v Variance) String() string {
	switch v {
	case VarianceCovariant:
		return "out"
	case VarianceContravariant:
		return "in"
	default:
		return "invariant"
	}
}

// TypeParam is one declared type parameter, possibly constrained to a
// kind: type Box<out F: Kind<Type, Type>>.
type TypeParam struct {
	Name       string
	NameSpan   source.Span
	Variance   Variance
	Constraint *KindExpr // nil when unconstrained
	Sp         source.Span
}

func (p *TypeParam) Kind() NodeKind    { return NodeTypeParam }
func (p *TypeParam) Span() source.Span { return p.Sp }

// Heritage is an extends clause: type Child extends Base<Args>.
type Heritage struct {
	Base *TypeRef
	Sp   source.Span
}

func (h *Heritage) Kind() NodeKind    { return NodeHeritage }
func (h *Heritage) Span() source.Span { return h.Sp }

// Member is a body member of a type declaration.
type Member interface {
	Node
	isMember()
}

// MemberValue is the value position of a member: either a type
// reference or an inline kind annotation.
type MemberValue interface {
	Node
	isMemberValue()
}

// FieldMember is a plain member: name: F<Type>;
type FieldMember struct {
	Name     string
	NameSpan source.Span
	Value    MemberValue
	Sp       source.Span
}

func (m *FieldMember) Kind() NodeKind    { return NodeFieldMember }
func (m *FieldMember) Span() source.Span { return m.Sp }
func (m *FieldMember) isMember()         {}

// MappedMember is a mapped member: [K in Keys]: F<K>;
// Its value position carries the mapped-type context flag.
type MappedMember struct {
	KeyName string
	KeySpan source.Span
	Source  *TypeRef
	Value   MemberValue
	Sp      source.Span
}

func (m *MappedMember) Kind() NodeKind    { return NodeMappedMember }
func (m *MappedMember) Span() source.Span { return m.Sp }
func (m *MappedMember) isMember()         {}

// TypeRef is a reference to a named type constructor, possibly applied
// to type arguments: List<Type>, Free<F>.
type TypeRef struct {
	Name     string
	NameSpan source.Span
	Args     []*TypeRef
	Sp       source.Span
}

func (r *TypeRef) Kind() NodeKind    { return NodeTypeRef }
func (r *TypeRef) Span() source.Span { return r.Sp }
func (r *TypeRef) isMemberValue()    {}
