package lsp

import (
	"encoding/json"
	"fmt"

	"kindcheck/internal/kind"
	"kindcheck/internal/sema"
)

// Completion item kinds from the protocol tables.
const (
	ciKindClass     = 7
	ciKindInterface = 8
	ciKindKeyword   = 14
	ciKindSnippet   = 15
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	_, fa := s.snapshotFor(s.ctx(), uri)
	if fa == nil || fa.result.File == nil {
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}
	offset := uint32(offsetForPosition(fa.text, params.Position))
	items := s.completionsAt(fa, offset)
	return s.sendResponse(msg.ID, completionList{Items: items})
}

// completionsAt builds kind-aware completions. When the cursor sits in
// a position with a known expected shape, compatible names rank first;
// otherwise the full palette is offered: built-in aliases, then
// functional-pattern aliases, then generic Kind<...> forms.
func (s *Server) completionsAt(fa *fileAnalysis, offset uint32) []completionItem {
	expected := s.expectationAt(fa, offset)
	if expected != nil {
		return s.rankedCompletions(fa, expected)
	}
	return s.paletteCompletions(fa)
}

// expectationAt probes the cursor position and, for a cursor sitting
// just past an identifier, the position before it.
func (s *Server) expectationAt(fa *fileAnalysis, offset uint32) *kind.Metadata {
	if fa.suggester == nil {
		return nil
	}
	if _, expected, ok := fa.suggester.ReferenceAt(offset); ok {
		return resolveTagged(fa, expected)
	}
	if offset > 0 {
		if _, expected, ok := fa.suggester.ReferenceAt(offset - 1); ok {
			return resolveTagged(fa, expected)
		}
	}
	return nil
}

// resolveTagged chases alias-tagged leaves through the registry so the
// expectation reflects the aliased shape, not the tag placeholder.
func resolveTagged(fa *fileAnalysis, m *kind.Metadata) *kind.Metadata {
	res := fa.result.Sema
	if res == nil || res.Registry == nil {
		return m
	}
	for depth := 0; depth < 32; depth++ {
		if m == nil || m.ConstraintTag == "" || m.Arity != 0 {
			return m
		}
		lr := res.Registry.Lookup(m.ConstraintTag)
		if !lr.Ok() {
			return m
		}
		m = lr.Meta
	}
	return m
}

func (s *Server) rankedCompletions(fa *fileAnalysis, expected *kind.Metadata) []completionItem {
	cands := fa.suggester.Ranker().RankReplacements(s.ctx(), expected, "")
	items := make([]completionItem, 0, len(cands)+1)
	if expected.IsLeaf() {
		items = append(items, completionItem{
			Label:     "Type",
			Kind:      ciKindKeyword,
			Detail:    "Type",
			Preselect: true,
		})
	}
	for _, cand := range cands {
		item := completionItem{
			Label:  cand.Name,
			Kind:   ciKindClass,
			Detail: cand.Meta.String(),
		}
		if cand.Builtin {
			item.Kind = ciKindInterface
			if doc := kind.BuiltinDoc(cand.Name); doc != "" {
				item.Documentation = &markupContent{Kind: "markdown", Value: doc}
			}
		}
		if len(items) == 0 {
			item.Preselect = true
		}
		items = append(items, item)
	}
	return withSortText(items)
}

func (s *Server) paletteCompletions(fa *fileAnalysis) []completionItem {
	var builtins, patterns, user []completionItem
	if res := fa.result.Sema; res != nil && res.Registry != nil {
		for _, e := range res.Registry.Entries() {
			item := completionItem{
				Label:  e.Name,
				Kind:   ciKindInterface,
				Detail: e.Meta.String(),
			}
			if doc := kind.BuiltinDoc(e.Name); doc != "" {
				item.Documentation = &markupContent{Kind: "markdown", Value: doc}
			}
			switch {
			case e.Meta != nil && e.Meta.BuiltinAlias && e.Meta.FPPattern:
				patterns = append(patterns, item)
			case e.Meta != nil && e.Meta.BuiltinAlias:
				builtins = append(builtins, item)
			default:
				// Manifest and file aliases sort with user names.
				user = append(user, item)
			}
		}
	}
	if res := fa.result.Sema; res != nil && res.Symbols != nil {
		for _, sym := range res.Symbols.Visible() {
			if sym.Kind == sema.SymbolTypeParam {
				continue
			}
			user = append(user, completionItem{
				Label:  sym.Name,
				Kind:   ciKindClass,
				Detail: sym.Meta.String(),
			})
		}
	}
	generic := []completionItem{
		{Label: "Kind<Type>", Kind: ciKindSnippet, Detail: "unary constructor kind"},
		{Label: "Kind<Type, Type>", Kind: ciKindSnippet, Detail: "binary constructor kind"},
	}

	items := make([]completionItem, 0, len(builtins)+len(patterns)+len(user)+len(generic))
	items = append(items, builtins...)
	items = append(items, patterns...)
	items = append(items, user...)
	items = append(items, generic...)
	return withSortText(items)
}

func withSortText(items []completionItem) []completionItem {
	for i := range items {
		items[i].SortText = fmt.Sprintf("%03d", i)
	}
	return items
}
