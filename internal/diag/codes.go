package diag

import (
	"fmt"
)

// Code identifies one diagnostic kind. Codes are part of the editor
// protocol contract: the fix engine registers against them and clients
// key settings on them, so existing values are never renumbered.
type Code uint16

const (
	// UnknownCode is the zero value for unclassified diagnostics.
	UnknownCode Code = 0

	// Lexical.
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnterminatedComment Code = 1002

	// Kind-syntax recovery. Each one is locally scoped: the parser marks
	// the node recovered and keeps going, it never cascades to siblings.
	SynInfo                   Code = 2000
	SynMalformedKind          Code = 2001
	SynUnterminatedKindArgs   Code = 2002
	SynMisspelledKindKeyword  Code = 2003
	SynExpectIdentifier       Code = 2004
	SynUnexpectedToken        Code = 2005
	SynExpectSemicolon        Code = 2006
	SynExpectTypeRef          Code = 2007
	SynMappedMemberMissingIn  Code = 2008
	SynUnexpectedTopLevel     Code = 2009
	SynDuplicateTypeParameter Code = 2010

	// Kind violations (semantic). One code per violation kind.
	KndInfo              Code = 3000
	KndArityMismatch     Code = 3001
	KndParamKindMismatch Code = 3002
	KndVarianceMismatch  Code = 3003
	KndUnresolvedAlias   Code = 3004
	KndUnknownTypeName   Code = 3005
	KndDuplicateDecl     Code = 3006

	// Registry and configuration, fatal only at initialization time.
	RegConflict      Code = 3901
	RegInvalidConfig Code = 3902

	// I/O.
	IOLoadFileError Code = 4000
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	LexInfo:                "Lexer information",
	LexUnknownChar:         "Unknown character",
	LexUnterminatedComment: "Unterminated block comment",

	SynInfo:                   "Parser information",
	SynMalformedKind:          "Malformed kind annotation",
	SynUnterminatedKindArgs:   "Unterminated kind argument list",
	SynMisspelledKindKeyword:  "Misspelled 'Kind' keyword",
	SynExpectIdentifier:       "Expected identifier",
	SynUnexpectedToken:        "Unexpected token",
	SynExpectSemicolon:        "Expected ';'",
	SynExpectTypeRef:          "Expected type reference",
	SynMappedMemberMissingIn:  "Mapped member is missing 'in'",
	SynUnexpectedTopLevel:     "Unexpected top-level construct",
	SynDuplicateTypeParameter: "Duplicate type parameter",

	KndInfo:              "Kind information",
	KndArityMismatch:     "Kind arity mismatch",
	KndParamKindMismatch: "Parameter kind mismatch",
	KndVarianceMismatch:  "Variance mismatch",
	KndUnresolvedAlias:   "Unresolved kind alias",
	KndUnknownTypeName:   "Unknown type name",
	KndDuplicateDecl:     "Duplicate declaration",

	RegConflict:      "Kind registry conflict",
	RegInvalidConfig: "Invalid configuration",

	IOLoadFileError: "I/O load file error",
}

// ID returns the stable textual identifier, e.g. "KND3001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("KND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
