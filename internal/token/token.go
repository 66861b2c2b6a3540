package token

import (
	"kindcheck/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsKeyword reports whether the token is a declaration-level keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwAlias, KwType, KwExtends, KwIn, KwOut, KwKind, KwTypeLeaf:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// StartsDecl reports whether the token can begin a top-level declaration.
// The parser resynchronizes on these after an unrecoverable error.
func (t Token) StartsDecl() bool {
	return t.Kind == KwAlias || t.Kind == KwType
}
