package lexer

import (
	"kindcheck/internal/diag"
	"kindcheck/internal/source"
	"kindcheck/internal/token"
)

// Lexer produces tokens for one declaration file. Comments (// and /* */)
// and whitespace are skipped; malformed input yields Invalid tokens plus a
// locally scoped diagnostic, never an abort.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *token.Token // one-token lookahead buffer
}

// New creates a lexer over the file. The reporter may be nil.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{
		file:     file,
		cursor:   NewCursor(file),
		reporter: reporter,
	}
}

// EmptySpan returns a zero-length span at the current position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// Peek returns the next significant token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	start := lx.cursor.Off
	ch := lx.cursor.Peek()

	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()

	default:
		return lx.scanPunct(start, ch)
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Off
	for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	text := lx.cursor.Slice(start, lx.cursor.Off)
	return token.Token{
		Kind: token.LookupIdent(text),
		Span: source.Span{File: lx.file.ID, Start: start, End: lx.cursor.Off},
		Text: text,
	}
}

func (lx *Lexer) scanPunct(start uint32, ch byte) token.Token {
	lx.cursor.Bump()
	span := source.Span{File: lx.file.ID, Start: start, End: lx.cursor.Off}

	var kind token.Kind
	switch ch {
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case '=':
		kind = token.Assign
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	default:
		if lx.reporter != nil {
			lx.reporter.Report(diag.LexUnknownChar, diag.SevError, span,
				"unknown character "+quoteByte(ch), nil, nil)
		}
		kind = token.Invalid
	}
	return token.Token{Kind: kind, Span: span, Text: lx.cursor.Slice(start, lx.cursor.Off)}
}

// skipTrivia consumes whitespace and comments. An unterminated block
// comment is reported once and consumes the rest of the file.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.cursor.Bump()

		case ch == '/' && lx.peekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}

		case ch == '/' && lx.peekAt(1) == '*':
			start := lx.cursor.Off
			lx.cursor.Bump()
			lx.cursor.Bump()
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '*' && lx.peekAt(1) == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed && lx.reporter != nil {
				span := source.Span{File: lx.file.ID, Start: start, End: lx.cursor.Off}
				lx.reporter.Report(diag.LexUnterminatedComment, diag.SevError, span,
					"unterminated block comment", nil, nil)
			}

		default:
			return
		}
	}
}

func (lx *Lexer) peekAt(n uint32) byte {
	off := lx.cursor.Off + n
	if off >= uint32(len(lx.file.Content)) {
		return 0
	}
	return lx.file.Content[off]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || ('0' <= ch && ch <= '9')
}

func quoteByte(ch byte) string {
	return "'" + string(rune(ch)) + "'"
}
