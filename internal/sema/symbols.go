package sema

import (
	"kindcheck/internal/ast"
	"kindcheck/internal/kind"
	"kindcheck/internal/source"
)

// SymbolKind classifies a resolved name.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolAlias
	SymbolType
	SymbolTypeParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolAlias:
		return "alias"
	case SymbolType:
		return "type"
	case SymbolTypeParam:
		return "type-param"
	default:
		return "invalid"
	}
}

// Symbol is one named entity visible to the checker.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Span  source.Span
	Order int // declaration order, the fix engine's tie-breaker

	// Meta is the kind shape: the registered shape for aliases, the
	// constructor's own kind for types, the constraint for parameters.
	Meta *kind.Metadata

	Decl ast.Node
}

type scopeFrame struct {
	byName map[string]*Symbol
	order  []*Symbol
}

// Table is the symbol table for one file pass: file-level declarations
// plus per-declaration type-parameter scopes. Iteration order is always
// declaration order, which the fix engine relies on for reproducible
// tie-breaks.
type Table struct {
	byName map[string]*Symbol
	order  []*Symbol
	scopes []scopeFrame
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Declare adds a file-level symbol. Returns false when the name is
// already taken (first declaration wins).
func (t *Table) Declare(sym *Symbol) bool {
	if _, exists := t.byName[sym.Name]; exists {
		return false
	}
	sym.Order = len(t.order)
	t.byName[sym.Name] = sym
	t.order = append(t.order, sym)
	return true
}

// PushScope opens a type-parameter scope.
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, scopeFrame{byName: make(map[string]*Symbol)})
}

// PopScope closes the innermost scope.
func (t *Table) PopScope() {
	if len(t.scopes) > 0 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// DeclareLocal adds a symbol to the innermost scope.
func (t *Table) DeclareLocal(sym *Symbol) bool {
	if len(t.scopes) == 0 {
		return t.Declare(sym)
	}
	frame := &t.scopes[len(t.scopes)-1]
	if _, exists := frame.byName[sym.Name]; exists {
		return false
	}
	sym.Order = len(t.order) + len(frame.order)
	frame.byName[sym.Name] = sym
	frame.order = append(frame.order, sym)
	return true
}

// Resolve looks a name up, innermost scope first.
func (t *Table) Resolve(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].byName[name]; ok {
			return sym, true
		}
	}
	sym, ok := t.byName[name]
	return sym, ok
}

// Visible returns all symbols visible at the current position in
// declaration order: file scope first, then open scopes outermost to
// innermost. The fix engine's candidate scan iterates this.
func (t *Table) Visible() []*Symbol {
	out := make([]*Symbol, 0, len(t.order)+4)
	out = append(out, t.order...)
	for _, frame := range t.scopes {
		out = append(out, frame.order...)
	}
	return out
}
