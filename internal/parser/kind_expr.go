package parser

import (
	"strings"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/source"
	"kindcheck/internal/token"
)

// parseKindExpr parses one kind annotation:
//
//	kindExpr := 'Kind' '<' (kindExpr (',' kindExpr)*)? '>'
//	          | 'Type'
//	          | Ident            // alias reference
//
// Malformed input never aborts the enclosing declaration. The worst
// outcome is a node with Recovered set and one locally scoped
// diagnostic; the caller continues as if the annotation were fine.
func (p *Parser) parseKindExpr() *ast.KindExpr {
	tok := p.lx.Peek()

	switch tok.Kind {
	case token.KwTypeLeaf:
		p.bump()
		return p.newKindExpr(ast.KindExpr{Form: ast.KindFormLeaf, Sp: tok.Span})

	case token.KwKind:
		p.bump()
		return p.parseKindArgs(tok.Span, false)

	case token.Ident:
		// Wrong keyword casing ('kind', 'KIND', 'type', ...) recovers
		// into the intended form, marked recovered.
		if strings.EqualFold(tok.Text, "Kind") {
			p.bump()
			p.report(diag.SynMisspelledKindKeyword, tok.Span,
				"'"+tok.Text+"' is not a kind keyword; did you mean 'Kind'?")
			return p.parseKindArgs(tok.Span, true)
		}
		if strings.EqualFold(tok.Text, "Type") {
			p.bump()
			p.report(diag.SynMisspelledKindKeyword, tok.Span,
				"'"+tok.Text+"' is not a kind keyword; did you mean 'Type'?")
			node := p.newKindExpr(ast.KindExpr{Form: ast.KindFormLeaf, Sp: tok.Span})
			node.Recovered = true
			return node
		}
		p.bump()
		return p.newKindExpr(ast.KindExpr{Form: ast.KindFormAlias, Alias: tok.Text, Sp: tok.Span})

	default:
		p.report(diag.SynMalformedKind, tok.Span,
			"expected a kind annotation ('Kind<...>', 'Type', or an alias name)")
		return p.newKindExpr(ast.KindExpr{Form: ast.KindFormInvalid, Recovered: true, Sp: tok.Span})
	}
}

// parseKindArgs parses the '<...>' tail of a Kind form. recovered marks
// nodes that already hit a casing problem upstream.
func (p *Parser) parseKindArgs(start source.Span, recovered bool) *ast.KindExpr {
	node := ast.KindExpr{Form: ast.KindFormApplied, Recovered: recovered}

	if _, ok := p.eat(token.Lt); !ok {
		// 'Kind' without an argument list: an arity-0 application. The
		// factory derives arity from the argument count, the checker
		// reports the mismatch if one exists.
		node.Sp = start
		return p.newKindExpr(node)
	}

	for !p.atAny(token.Gt, token.Semicolon, token.EOF) {
		arg := p.parseKindArg()
		if arg == nil {
			node.Recovered = true
			p.resyncList()
			if _, ok := p.eat(token.Comma); ok {
				continue
			}
			break
		}
		node.Args = append(node.Args, arg)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}

	if _, ok := p.eat(token.Gt); !ok {
		p.report(diag.SynUnterminatedKindArgs, endOfSpan(p.lastSpan),
			"unterminated kind argument list; expected '>'")
		node.Recovered = true
	}

	node.Sp = start.Cover(p.lastSpan)
	return p.newKindExpr(node)
}

// parseKindArg parses one argument inside 'Kind<...>'. A nil result
// means the caller should resynchronize at the next list boundary.
func (p *Parser) parseKindArg() *ast.KindExpr {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwTypeLeaf, token.KwKind, token.Ident:
		return p.parseKindExpr()
	default:
		p.report(diag.SynMalformedKind, tok.Span,
			"expected 'Type', 'Kind<...>', or an alias name in kind arguments")
		return nil
	}
}

// equalFoldKind reports whether text is a miscased 'Kind'.
func equalFoldKind(text string) bool {
	return strings.EqualFold(text, "Kind")
}

// newKindExpr finalizes a node, stamping the topmost context flag at
// creation time.
func (p *Parser) newKindExpr(node ast.KindExpr) *ast.KindExpr {
	node.Context = p.currentContext()
	return &node
}
