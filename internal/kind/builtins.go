package kind

// Builtin pairs a built-in alias name with its shape.
type Builtin struct {
	Name string
	Meta *Metadata
	Doc  string
}

// Builtins returns the built-in alias table in its canonical order.
// Every checking session gets the same immutable shapes; the slice is
// rebuilt per call so callers can extend their copy freely.
func Builtins() []Builtin {
	functorShape := Unary()

	return []Builtin{
		{
			Name: "Type",
			Meta: &Metadata{Arity: 0, Params: []*Metadata{}, BuiltinAlias: true},
			Doc:  "The kind of fully applied types.",
		},
		{
			Name: "Functor",
			Meta: &Metadata{
				Arity:        1,
				Params:       []*Metadata{Leaf()},
				BuiltinAlias: true,
				FPPattern:    true,
			},
			Doc: "Unary type constructor with a mapping capability.",
		},
		{
			Name: "Bifunctor",
			Meta: &Metadata{
				Arity:        2,
				Params:       []*Metadata{Leaf(), Leaf()},
				BuiltinAlias: true,
				FPPattern:    true,
			},
			Doc: "Binary type constructor mapping over both arguments.",
		},
		{
			Name: "Monad",
			Meta: &Metadata{
				Arity:        1,
				Params:       []*Metadata{Leaf()},
				BuiltinAlias: true,
				FPPattern:    true,
			},
			Doc: "Unary type constructor supporting sequencing.",
		},
		{
			Name: "Free",
			Meta: &Metadata{
				Arity:        2,
				Params:       []*Metadata{functorShape, Leaf()},
				BuiltinAlias: true,
				FPPattern:    true,
			},
			Doc: "Free monad: the first argument must itself be a unary constructor.",
		},
		{
			Name: "Fix",
			Meta: &Metadata{
				Arity:        1,
				Params:       []*Metadata{functorShape},
				BuiltinAlias: true,
				FPPattern:    true,
			},
			Doc: "Fixed point of a unary constructor.",
		},
	}
}

// BuiltinDoc returns the documentation line for a built-in alias name,
// or an empty string.
func BuiltinDoc(name string) string {
	for _, b := range Builtins() {
		if b.Name == name {
			return b.Doc
		}
	}
	return ""
}
