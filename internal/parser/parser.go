// Package parser turns tokens into the declaration AST. Malformed kind
// syntax recovers locally: the parser stamps the node recovered, emits a
// diagnostic scoped to that node, and keeps the enclosing declaration
// and its siblings intact.
package parser

import (
	"slices"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/lexer"
	"kindcheck/internal/source"
	"kindcheck/internal/token"
)

// Options configure one parse pass.
type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
}

// Result carries the parsed file and, when the reporter was a
// BagReporter, its bag.
type Result struct {
	File *ast.File
	Bag  *diag.Bag
}

// Parser holds per-file parse state.
type Parser struct {
	lx     *lexer.Lexer
	fileID source.FileID
	opts   Options
	// counter sits between the parser/lexer and the caller's reporter,
	// so MaxErrors covers lexical errors too.
	counter  diag.CountingReporter
	ctx      []ast.KindContext // innermost applicable syntactic position on top
	lastSpan source.Span
}

// ParseFile is the entry point for one file. The lexer must be created
// over the same file.
func ParseFile(fs *source.FileSet, fileID source.FileID, opts Options) Result {
	file := fs.Get(fileID)
	p := Parser{
		fileID:  fileID,
		opts:    opts,
		counter: diag.CountingReporter{Next: opts.Reporter},
	}
	p.lx = lexer.New(file, &p.counter)
	p.lastSpan = p.lx.EmptySpan()

	root := p.parseDecls()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{File: root, Bag: bag}
}

func (p *Parser) parseDecls() *ast.File {
	start := p.lx.Peek().Span
	root := &ast.File{FileID: p.fileID}

	for !p.at(token.EOF) {
		decl, ok := p.parseDecl()
		if !ok {
			p.resyncTop()
			continue
		}
		root.Decls = append(root.Decls, decl)
	}
	root.Sp = start.Cover(p.lastSpan)
	return root
}

func (p *Parser) parseDecl() (ast.Decl, bool) {
	switch p.lx.Peek().Kind {
	case token.KwAlias:
		return p.parseAliasDecl()
	case token.KwType:
		return p.parseTypeDecl()
	default:
		tok := p.lx.Peek()
		p.report(diag.SynUnexpectedTopLevel, tok.Span,
			"expected 'alias' or 'type' declaration")
		return nil, false
	}
}

// resyncTop skips ahead to the next declaration starter or past the
// next semicolon, whichever comes first.
func (p *Parser) resyncTop() {
	for {
		tok := p.lx.Peek()
		if tok.Kind == token.EOF || tok.StartsDecl() {
			return
		}
		p.bump()
		if tok.Kind == token.Semicolon {
			return
		}
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) bump() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// eat consumes the next token iff it has the wanted kind.
func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.bump(), true
	}
	return p.lx.Peek(), false
}

// expect consumes the wanted kind or reports code at the current token.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if tok, ok := p.eat(k); ok {
		return tok, true
	}
	tok := p.lx.Peek()
	p.report(code, tok.Span, msg)
	return tok, false
}

// expectSemicolon closes a declaration, tolerating a missing ';' at a
// clean boundary so the error stays local.
func (p *Parser) expectSemicolon() {
	if _, ok := p.eat(token.Semicolon); ok {
		return
	}
	// Do not consume: the next token may start the next declaration.
	p.report(diag.SynExpectSemicolon, endOfSpan(p.lastSpan), "expected ';' to end declaration")
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	if p.opts.MaxErrors != 0 && p.counter.Errors >= p.opts.MaxErrors {
		return
	}
	p.counter.Report(code, diag.SevError, sp, msg, nil, nil)
}

// pushContext records the innermost syntactic position while parsing a
// subtree; kind nodes created inside are stamped with the top flag.
func (p *Parser) pushContext(c ast.KindContext) {
	p.ctx = append(p.ctx, c)
}

func (p *Parser) popContext() {
	if len(p.ctx) > 0 {
		p.ctx = p.ctx[:len(p.ctx)-1]
	}
}

func (p *Parser) currentContext() ast.KindContext {
	if len(p.ctx) == 0 {
		return ast.ContextNone
	}
	return p.ctx[len(p.ctx)-1]
}

func endOfSpan(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}
