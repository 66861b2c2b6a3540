package sema

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/kind"
)

// checkTypeRef resolves a type reference, checks its application, and
// compares the resulting kind against expected (nil means no
// expectation). It returns the kind of the whole reference so parents
// can keep checking; error kinds flow through without cascading.
func (c *checker) checkTypeRef(ref *ast.TypeRef, expected *kind.Metadata) kind.KindType {
	if ref == nil {
		return kind.NewErrorKindType("")
	}

	nameKind := c.resolveRefName(ref)

	// Recurse into arguments first, each against the declared
	// parameter shape. A violation inside an argument can resurface
	// below through the enclosing check at the same span; the dedup
	// reporter collapses those repeats.
	for i, arg := range ref.Args {
		var argExpected *kind.Metadata
		if i < len(nameKind.Params) {
			argExpected = nameKind.Params[i]
		}
		c.checkTypeRef(arg, argExpected)
	}

	result := nameKind
	if len(ref.Args) > 0 {
		if !nameKind.HasErrors {
			// Per-argument incompatibilities were reported above; the
			// usage shape reuses the declared parameters so this check
			// catches only a wrong argument count.
			usage := kind.NewKindType(ref.Name, len(ref.Args), nameKind.Params, false)
			usage.Sp = ref.Sp
			c.emitViolations(c.kinds.Check(usage, nameKind.Shape()))
		}
		// A (fully) applied constructor denotes a plain type.
		applied := kind.NewKindType(ref.Name, 0, nil, nameKind.HasErrors)
		applied.Sp = ref.Sp
		result = applied
	}

	if expected != nil && !result.HasErrors {
		c.emitViolations(c.kinds.Check(result, expected))
	}
	return result
}

// resolveRefName resolves the referenced name to its kind: the leaf for
// 'Type', the symbol's shape when declared in this file, the registry
// shape for built-ins, the error kind otherwise. Resolved kinds are
// cached for the lifetime of the pass.
func (c *checker) resolveRefName(ref *ast.TypeRef) kind.KindType {
	if ref.Name == "Type" {
		kt := kind.NewKindType("Type", 0, nil, false)
		kt.Sp = ref.NameSpan
		return kt
	}

	if cached, ok := c.result.KindCache[ref.Name]; ok {
		cached.Sp = ref.NameSpan
		return cached
	}

	var kt kind.KindType
	switch {
	case c.symbolShape(ref, &kt):
	case c.registryShape(ref, &kt):
	default:
		c.report(diag.KndUnknownTypeName, ref.NameSpan,
			"unknown type name '"+ref.Name+"'")
		kt = kind.NewErrorKindType(ref.Name)
	}
	kt.Sp = ref.NameSpan

	// Type parameters are scoped; caching them would leak across
	// declarations, so only file-level names land in the cache.
	if sym, ok := c.result.Symbols.Resolve(ref.Name); !ok || sym.Kind != SymbolTypeParam {
		cached := kt
		c.result.KindCache[ref.Name] = cached
	}
	return kt
}

func (c *checker) symbolShape(ref *ast.TypeRef, out *kind.KindType) bool {
	sym, ok := c.result.Symbols.Resolve(ref.Name)
	if !ok {
		return false
	}
	*out = kind.FromMetadata(ref.Name, c.resolveShape(sym.Meta))
	return true
}

// resolveShape replaces an alias-tagged leaf (a constraint written as a
// bare alias name) with the registered shape it names, following alias
// chains up to a fixed depth.
func (c *checker) resolveShape(m *kind.Metadata) *kind.Metadata {
	for depth := 0; depth < 32; depth++ {
		if m == nil || m.ConstraintTag == "" || !m.IsLeaf() {
			return m
		}
		if m.ConstraintTag == "Type" {
			return kind.Leaf()
		}
		res := c.registry().Lookup(m.ConstraintTag)
		if !res.Ok() {
			return m
		}
		m = res.Meta
	}
	return m
}

func (c *checker) registryShape(ref *ast.TypeRef, out *kind.KindType) bool {
	res := c.registry().Lookup(ref.Name)
	if !res.Ok() {
		return false
	}
	*out = kind.FromMetadata(ref.Name, res.Meta)
	return true
}
