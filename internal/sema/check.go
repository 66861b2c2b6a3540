// Package sema resolves declarations to kinds and checks every usage
// site for kind compatibility. One Check call is one pass: it owns its
// diagnostics and its per-symbol kind cache, both discarded with it.
package sema

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/kind"
	"kindcheck/internal/source"
)

// Options configure a semantic pass over one file.
type Options struct {
	Reporter diag.Reporter
	// Registry is the session's kind registry. When nil a fresh
	// built-in registry is used. The pass registers file-local aliases
	// into it.
	Registry *kind.Registry
}

// Result stores semantic artefacts produced by the pass.
type Result struct {
	Registry *kind.Registry
	Symbols  *Table
	// KindCache holds the KindType resolved per symbol name during this
	// pass. It dies with the pass.
	KindCache map[string]kind.KindType
}

// Check runs the kind-checking pass. Violations surface only as
// diagnostics: one bad declaration never halts checking the rest of the
// file. Diagnostics repeat-discovered through several propagation paths
// are collapsed by the dedup reporter.
func Check(file *ast.File, opts Options) Result {
	registry := opts.Registry
	if registry == nil {
		registry = kind.NewBuiltinRegistry()
	}

	res := Result{
		Registry:  registry,
		Symbols:   NewTable(),
		KindCache: make(map[string]kind.KindType),
	}
	if file == nil {
		return res
	}

	c := &checker{
		file:     file,
		reporter: diag.NewDedupReporter(opts.Reporter),
		kinds:    kind.NewChecker(registry),
		result:   &res,
	}
	c.collectDecls()
	c.checkDecls()
	return res
}

type checker struct {
	file     *ast.File
	reporter diag.Reporter
	kinds    *kind.Checker
	result   *Result
}

func (c *checker) registry() *kind.Registry {
	return c.result.Registry
}

// collectDecls is the first pass: declare every top-level name, derive
// constructor kinds, and register aliases, so later declarations can
// reference earlier and later siblings alike.
func (c *checker) collectDecls() {
	for _, decl := range c.file.Decls {
		switch d := decl.(type) {
		case *ast.AliasDecl:
			c.collectAlias(d)
		case *ast.TypeDecl:
			c.collectType(d)
		}
	}
}

func (c *checker) collectAlias(d *ast.AliasDecl) {
	meta := kind.MetadataFromNode(d.Target)

	sym := &Symbol{
		Name: d.Name,
		Kind: SymbolAlias,
		Span: d.NameSpan,
		Meta: meta,
		Decl: d,
	}
	if !c.result.Symbols.Declare(sym) {
		c.report(diag.KndDuplicateDecl, d.NameSpan,
			"duplicate declaration of '"+d.Name+"'")
		return
	}

	if err := c.registry().Register(d.Name, meta); err != nil {
		// A source-level clash with an existing registration is a
		// diagnostic, not an abort; only init-time conflicts are fatal.
		c.report(diag.RegConflict, d.NameSpan, err.Error())
	}
}

func (c *checker) collectType(d *ast.TypeDecl) {
	meta := c.constructorShape(d)

	sym := &Symbol{
		Name: d.Name,
		Kind: SymbolType,
		Span: d.NameSpan,
		Meta: meta,
		Decl: d,
	}
	if !c.result.Symbols.Declare(sym) {
		c.report(diag.KndDuplicateDecl, d.NameSpan,
			"duplicate declaration of '"+d.Name+"'")
		return
	}

	kt := kind.FromMetadata(d.Name, meta)
	kt.Variances = paramVariances(d)
	kt.Sp = d.NameSpan
	c.result.KindCache[d.Name] = kt
}

// constructorShape derives the kind of the declared constructor: arity
// = parameter count, each parameter's shape from its constraint (leaf
// when unconstrained).
func (c *checker) constructorShape(d *ast.TypeDecl) *kind.Metadata {
	params := make([]*kind.Metadata, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Constraint != nil {
			params = append(params, kind.MetadataFromNode(p.Constraint))
		} else {
			params = append(params, kind.Leaf())
		}
	}
	meta := kind.NewMetadata(len(d.Params), params...)
	meta.ParamVariance = paramVariances(d)
	return meta
}

func paramVariances(d *ast.TypeDecl) []ast.Variance {
	vs := make([]ast.Variance, len(d.Params))
	declared := false
	for i, p := range d.Params {
		vs[i] = p.Variance
		if p.Variance != ast.VarianceNone {
			declared = true
		}
	}
	if !declared {
		return nil
	}
	return vs
}

// checkDecls is the second pass: validate every annotation and usage.
func (c *checker) checkDecls() {
	for _, decl := range c.file.Decls {
		switch d := decl.(type) {
		case *ast.AliasDecl:
			c.validateKindExpr(d.Target)
		case *ast.TypeDecl:
			c.checkTypeDecl(d)
		}
	}
}

func (c *checker) checkTypeDecl(d *ast.TypeDecl) {
	c.result.Symbols.PushScope()
	defer c.result.Symbols.PopScope()

	for _, p := range d.Params {
		var meta *kind.Metadata
		if p.Constraint != nil {
			c.validateKindExpr(p.Constraint)
			meta = kind.MetadataFromNode(p.Constraint)
		} else {
			meta = kind.Leaf()
		}
		c.result.Symbols.DeclareLocal(&Symbol{
			Name: p.Name,
			Kind: SymbolTypeParam,
			Span: p.NameSpan,
			Meta: meta,
			Decl: p,
		})
	}

	if d.Heritage != nil && d.Heritage.Base != nil {
		c.checkTypeRef(d.Heritage.Base, nil)
	}

	for _, m := range d.Members {
		switch member := m.(type) {
		case *ast.FieldMember:
			c.checkMemberValue(member.Value)
		case *ast.MappedMember:
			if member.Source != nil {
				c.checkTypeRef(member.Source, nil)
			}
			c.checkMemberValue(member.Value)
		}
	}
}

func (c *checker) checkMemberValue(v ast.MemberValue) {
	switch value := v.(type) {
	case *ast.TypeRef:
		// A member value must be a fully applied type.
		c.checkTypeRef(value, kind.Leaf())
	case *ast.KindExpr:
		c.validateKindExpr(value)
		c.checkKindExprInContext(value)
	case nil:
	}
}

// checkKindExprInContext applies the context-derived expectation when
// the annotation has no explicit one: a bare alias in a mapped value
// position must denote a fully applied type.
func (c *checker) checkKindExprInContext(e *ast.KindExpr) {
	if e == nil || e.Recovered {
		return
	}
	expected := expectedFromContext(e.Context)
	if expected == nil {
		return
	}
	if e.Form != ast.KindFormAlias {
		return
	}
	actual := kind.NewAliasKindType(e.Alias, e.Sp)
	c.emitViolations(c.kinds.Check(actual, expected))
}

// expectedFromContext resolves an expected kind from the node's
// syntactic position when none is explicit.
func expectedFromContext(ctx ast.KindContext) *kind.Metadata {
	switch ctx {
	case ast.ContextMappedType:
		return kind.Leaf()
	default:
		// Extends-constraint positions declare kinds rather than
		// satisfy them; no expectation applies.
		return nil
	}
}

// validateKindExpr checks that every alias referenced inside an
// annotation resolves. Recovered wreckage is skipped: its syntax error
// was already reported.
func (c *checker) validateKindExpr(e *ast.KindExpr) {
	if e == nil || e.Form == ast.KindFormInvalid {
		return
	}
	if e.Form == ast.KindFormAlias && e.Alias != "Type" {
		if sym, ok := c.result.Symbols.Resolve(e.Alias); ok && sym.Kind == SymbolTypeParam {
			return
		}
		if res := c.registry().Lookup(e.Alias); !res.Ok() {
			c.report(diag.KndUnresolvedAlias, e.Sp,
				"unresolved kind alias '"+e.Alias+"'")
		}
	}
	for _, arg := range e.Args {
		c.validateKindExpr(arg)
	}
}

func (c *checker) emitViolations(violations []kind.Violation) {
	for _, v := range violations {
		c.reporter.Report(v.Kind.DiagCode(), diag.SevError, v.Span, v.Message(), nil, nil)
	}
}

func (c *checker) report(code diag.Code, sp source.Span, msg string) {
	c.reporter.Report(code, diag.SevError, sp, msg, nil, nil)
}
