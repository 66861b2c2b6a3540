package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"kindcheck/internal/ast"
	"kindcheck/internal/kind"
	"kindcheck/internal/sema"
	"kindcheck/internal/source"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	ctx := s.ctx()
	_, fa := s.snapshotFor(ctx, uri)
	if fa == nil || fa.result.File == nil {
		return s.sendResponse(msg.ID, nil)
	}
	offset := uint32(offsetForPosition(fa.text, params.Position))
	content, span, ok := hoverAt(fa, offset)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	rng := rangeForSpan(fa.text, span)
	return s.sendResponse(msg.ID, hover{
		Contents: markupContent{Kind: "markdown", Value: content},
		Range:    &rng,
	})
}

// hoverAt renders kind information for the name under the cursor.
func hoverAt(fa *fileAnalysis, offset uint32) (string, source.Span, bool) {
	for _, decl := range fa.result.File.Decls {
		switch d := decl.(type) {
		case *ast.AliasDecl:
			if containsOffset(d.NameSpan, offset) {
				return renderAlias(fa, d), d.NameSpan, true
			}
			if d.Target != nil && containsOffset(d.Target.Sp, offset) {
				if text, sp, ok := hoverKindExpr(fa, d.Target, offset); ok {
					return text, sp, true
				}
			}
		case *ast.TypeDecl:
			if containsOffset(d.NameSpan, offset) {
				return renderTypeDecl(fa, d), d.NameSpan, true
			}
			for _, p := range d.Params {
				if containsOffset(p.NameSpan, offset) {
					return renderTypeParam(p), p.NameSpan, true
				}
				if p.Constraint != nil && containsOffset(p.Constraint.Sp, offset) {
					if text, sp, ok := hoverKindExpr(fa, p.Constraint, offset); ok {
						return text, sp, true
					}
				}
			}
		}
	}
	if fa.suggester != nil {
		if ref, _, ok := fa.suggester.ReferenceAt(offset); ok && containsOffset(ref.NameSpan, offset) {
			if text, ok := renderName(fa, ref.Name); ok {
				return text, ref.NameSpan, true
			}
		}
	}
	return "", source.Span{}, false
}

// hoverKindExpr descends into a kind annotation looking for the
// innermost alias reference under the cursor.
func hoverKindExpr(fa *fileAnalysis, e *ast.KindExpr, offset uint32) (string, source.Span, bool) {
	for _, arg := range e.Args {
		if containsOffset(arg.Sp, offset) {
			return hoverKindExpr(fa, arg, offset)
		}
	}
	switch e.Form {
	case ast.KindFormLeaf:
		return renderShape("Type", kind.Leaf(), kind.BuiltinDoc("Type")), e.Sp, true
	case ast.KindFormAlias:
		if text, ok := renderName(fa, e.Alias); ok {
			return text, e.Sp, true
		}
	}
	return "", source.Span{}, false
}

// renderName resolves a name through the session and renders it.
func renderName(fa *fileAnalysis, name string) (string, bool) {
	if name == "Type" {
		return renderShape("Type", kind.Leaf(), kind.BuiltinDoc("Type")), true
	}
	res := fa.result.Sema
	if res == nil {
		return "", false
	}
	if res.Symbols != nil {
		if sym, ok := res.Symbols.Resolve(name); ok && sym.Kind != sema.SymbolTypeParam {
			return renderShape(name, sym.Meta, ""), true
		}
	}
	if res.Registry != nil {
		if lr := res.Registry.Lookup(name); lr.Ok() {
			return renderShape(name, lr.Meta, kind.BuiltinDoc(name)), true
		}
	}
	return "", false
}

func renderAlias(fa *fileAnalysis, d *ast.AliasDecl) string {
	var shape *kind.Metadata
	if res := fa.result.Sema; res != nil && res.Registry != nil {
		if lr := res.Registry.Lookup(d.Name); lr.Ok() {
			shape = lr.Meta
		}
	}
	if shape == nil && d.Target != nil {
		shape = kind.MetadataFromNode(d.Target)
	}
	return renderShape(d.Name, shape, "")
}

func renderTypeDecl(fa *fileAnalysis, d *ast.TypeDecl) string {
	var shape *kind.Metadata
	if res := fa.result.Sema; res != nil {
		if kt, ok := res.KindCache[d.Name]; ok {
			shape = kt.Shape()
		} else if sym, found := res.Symbols.Resolve(d.Name); found {
			shape = sym.Meta
		}
	}
	return renderShape(d.Name, shape, "")
}

func renderTypeParam(p *ast.TypeParam) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "```kd\n%s", p.Name)
	if p.Constraint != nil {
		fmt.Fprintf(&sb, ": %s", p.Constraint.String())
	}
	sb.WriteString("\n```")
	if p.Variance != ast.VarianceNone {
		fmt.Fprintf(&sb, "\n\n%s type parameter", p.Variance)
	} else {
		sb.WriteString("\n\ntype parameter")
	}
	return sb.String()
}

func renderShape(name string, shape *kind.Metadata, doc string) string {
	var sb strings.Builder
	sb.WriteString("```kd\n")
	sb.WriteString(name)
	if shape != nil {
		fmt.Fprintf(&sb, " : %s", shape)
	}
	sb.WriteString("\n```")
	if doc != "" {
		sb.WriteString("\n\n")
		sb.WriteString(doc)
	}
	return sb.String()
}

func containsOffset(sp source.Span, offset uint32) bool {
	return offset >= sp.Start && offset < sp.End
}
