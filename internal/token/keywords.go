package token

// keywords maps source text to keyword kinds. Lookup is case-sensitive:
// the kind sub-grammar distinguishes 'Kind' from 'kind', and the parser
// wants the miscased form as a plain identifier so it can recover.
var keywords = map[string]Kind{
	"alias":   KwAlias,
	"type":    KwType,
	"extends": KwExtends,
	"in":      KwIn,
	"out":     KwOut,
	"Kind":    KwKind,
	"Type":    KwTypeLeaf,
}

// LookupIdent returns the keyword kind for text, or Ident.
func LookupIdent(text string) Kind {
	if k, ok := keywords[text]; ok {
		return k
	}
	return Ident
}
