package parser

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/token"
)

// parseAliasDecl parses: alias Name = kindExpr ;
func (p *Parser) parseAliasDecl() (ast.Decl, bool) {
	kw := p.bump() // 'alias'

	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected alias name")
	if !ok {
		return nil, false
	}

	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after alias name"); !ok {
		return nil, false
	}

	target := p.parseKindExpr()

	decl := &ast.AliasDecl{
		Name:     name.Text,
		NameSpan: name.Span,
		Target:   target,
		Sp:       kw.Span.Cover(p.lastSpan),
	}
	p.expectSemicolon()
	return decl, true
}

// parseTypeDecl parses: type Name <params>? extends Base? { members }? ;
func (p *Parser) parseTypeDecl() (ast.Decl, bool) {
	kw := p.bump() // 'type'

	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected type name")
	if !ok {
		return nil, false
	}

	decl := &ast.TypeDecl{
		Name:     name.Text,
		NameSpan: name.Span,
	}

	if p.at(token.Lt) {
		decl.Params = p.parseTypeParams()
	}
	if p.at(token.KwExtends) {
		decl.Heritage = p.parseHeritage()
	}
	if p.at(token.LBrace) {
		decl.Members = p.parseBody()
	}

	decl.Sp = kw.Span.Cover(p.lastSpan)
	p.expectSemicolon()
	return decl, true
}

// parseTypeParams parses < param (, param)* >. Constraints live in the
// extends-constraint context.
func (p *Parser) parseTypeParams() []*ast.TypeParam {
	p.bump() // '<'
	params := make([]*ast.TypeParam, 0, 2)
	seen := make(map[string]struct{})

	for !p.atAny(token.Gt, token.EOF, token.Semicolon) {
		param, ok := p.parseTypeParam()
		if !ok {
			p.resyncList()
			if _, skipped := p.eat(token.Comma); skipped {
				continue
			}
			break
		}
		if _, dup := seen[param.Name]; dup {
			p.report(diag.SynDuplicateTypeParameter, param.NameSpan,
				"duplicate type parameter '"+param.Name+"'")
		} else {
			seen[param.Name] = struct{}{}
			params = append(params, param)
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}

	p.expect(token.Gt, diag.SynUnexpectedToken, "expected '>' to close type parameters")
	return params
}

func (p *Parser) parseTypeParam() (*ast.TypeParam, bool) {
	variance := ast.VarianceNone
	start := p.lx.Peek().Span

	switch p.lx.Peek().Kind {
	case token.KwOut:
		p.bump()
		variance = ast.VarianceCovariant
	case token.KwIn:
		p.bump()
		variance = ast.VarianceContravariant
	}

	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected type parameter name")
	if !ok {
		return nil, false
	}

	param := &ast.TypeParam{
		Name:     name.Text,
		NameSpan: name.Span,
		Variance: variance,
	}

	if _, ok := p.eat(token.Colon); ok {
		p.pushContext(ast.ContextExtendsConstraint)
		param.Constraint = p.parseKindExpr()
		p.popContext()
	}

	param.Sp = start.Cover(p.lastSpan)
	return param, true
}

func (p *Parser) parseHeritage() *ast.Heritage {
	kw := p.bump() // 'extends'
	base, ok := p.parseTypeRef()
	if !ok {
		return &ast.Heritage{Sp: kw.Span}
	}
	return &ast.Heritage{Base: base, Sp: kw.Span.Cover(p.lastSpan)}
}

// parseBody parses { member* }.
func (p *Parser) parseBody() []ast.Member {
	p.bump() // '{'
	members := make([]ast.Member, 0, 4)

	for !p.atAny(token.RBrace, token.EOF) {
		member, ok := p.parseMember()
		if !ok {
			p.resyncMember()
			continue
		}
		members = append(members, member)
	}

	p.expect(token.RBrace, diag.SynUnexpectedToken, "expected '}' to close type body")
	return members
}

func (p *Parser) parseMember() (ast.Member, bool) {
	if p.at(token.LBracket) {
		return p.parseMappedMember()
	}

	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected member name")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after member name"); !ok {
		return nil, false
	}
	value, ok := p.parseMemberValue()
	if !ok {
		return nil, false
	}
	member := &ast.FieldMember{
		Name:     name.Text,
		NameSpan: name.Span,
		Value:    value,
		Sp:       name.Span.Cover(p.lastSpan),
	}
	p.expectSemicolon()
	return member, true
}

// parseMappedMember parses [ Key in Source ] : Value ;. The value
// position is the mapped-type context.
func (p *Parser) parseMappedMember() (ast.Member, bool) {
	open := p.bump() // '['

	key, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected mapped key name")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.KwIn, diag.SynMappedMemberMissingIn, "expected 'in' in mapped member"); !ok {
		return nil, false
	}
	src, ok := p.parseTypeRef()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after mapped source"); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after mapped key"); !ok {
		return nil, false
	}

	p.pushContext(ast.ContextMappedType)
	value, ok := p.parseMemberValue()
	p.popContext()
	if !ok {
		return nil, false
	}

	member := &ast.MappedMember{
		KeyName: key.Text,
		KeySpan: key.Span,
		Source:  src,
		Value:   value,
		Sp:      open.Span.Cover(p.lastSpan),
	}
	p.expectSemicolon()
	return member, true
}

// parseMemberValue parses the value position of a member: an inline
// kind annotation when it starts with a kind keyword (or a misspelling
// of 'Kind'), otherwise a type reference.
func (p *Parser) parseMemberValue() (ast.MemberValue, bool) {
	tok := p.lx.Peek()
	if tok.Kind == token.KwKind || tok.Kind == token.KwTypeLeaf {
		return p.parseKindExpr(), true
	}
	if tok.Kind == token.Ident && equalFoldKind(tok.Text) {
		return p.parseKindExpr(), true
	}
	return p.parseTypeRef()
}

// resyncList recovers inside <...> lists: skip to ',', '>', ';' or EOF
// without consuming the boundary.
func (p *Parser) resyncList() {
	for !p.atAny(token.Comma, token.Gt, token.Semicolon, token.EOF) {
		p.bump()
	}
}

// resyncMember recovers inside a body: skip past the next ';' or stop
// at '}'.
func (p *Parser) resyncMember() {
	for {
		tok := p.lx.Peek()
		if tok.Kind == token.EOF || tok.Kind == token.RBrace {
			return
		}
		p.bump()
		if tok.Kind == token.Semicolon {
			return
		}
	}
}
