package parser

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/token"
)

// parseTypeRef parses: Ident ('<' typeRef (',' typeRef)* '>')?
func (p *Parser) parseTypeRef() (*ast.TypeRef, bool) {
	// 'Type' names the leaf shape, but in value position it also reads
	// as a type reference; accept it directly.
	if tok, ok := p.eat(token.KwTypeLeaf); ok {
		return &ast.TypeRef{Name: tok.Text, NameSpan: tok.Span, Sp: tok.Span}, true
	}

	name, ok := p.expect(token.Ident, diag.SynExpectTypeRef, "expected type reference")
	if !ok {
		return nil, false
	}

	ref := &ast.TypeRef{
		Name:     name.Text,
		NameSpan: name.Span,
		Sp:       name.Span,
	}

	if _, ok := p.eat(token.Lt); !ok {
		return ref, true
	}

	for !p.atAny(token.Gt, token.Semicolon, token.EOF) {
		arg, ok := p.parseTypeRef()
		if !ok {
			p.resyncList()
			if _, skipped := p.eat(token.Comma); skipped {
				continue
			}
			break
		}
		ref.Args = append(ref.Args, arg)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}

	p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close type arguments")
	ref.Sp = name.Span.Cover(p.lastSpan)
	return ref, true
}
