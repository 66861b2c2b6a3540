package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// KwAlias represents the 'alias' keyword.
	KwAlias // alias
	// KwType represents the 'type' declaration keyword.
	KwType // type
	// KwExtends represents the 'extends' keyword.
	KwExtends // extends
	// KwIn represents the 'in' keyword (mapped members, contravariance).
	KwIn // in
	// KwOut represents the 'out' variance keyword.
	KwOut // out
	// KwKind represents the 'Kind' keyword of the kind sub-grammar.
	// Case-sensitive: 'kind' lexes as Ident and is recovered by the parser.
	KwKind // Kind
	// KwTypeLeaf represents the 'Type' keyword, the arity-0 kind leaf.
	KwTypeLeaf // Type

	// Lt represents '<'.
	Lt
	// Gt represents '>'.
	Gt
	Comma
	Colon
	Semicolon
	Assign
	LBrace
	RBrace
	LBracket
	RBracket
)

var kindNames = map[Kind]string{
	Invalid:    "invalid",
	EOF:        "eof",
	Ident:      "identifier",
	KwAlias:    "'alias'",
	KwType:     "'type'",
	KwExtends:  "'extends'",
	KwIn:       "'in'",
	KwOut:      "'out'",
	KwKind:     "'Kind'",
	KwTypeLeaf: "'Type'",
	Lt:         "'<'",
	Gt:         "'>'",
	Comma:      "','",
	Colon:      "':'",
	Semicolon:  "';'",
	Assign:     "'='",
	LBrace:     "'{'",
	RBrace:     "'}'",
	LBracket:   "'['",
	RBracket:   "']'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}
