package fix

import (
	"context"
	"fmt"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/kind"
	"kindcheck/internal/sema"
	"kindcheck/internal/source"
)

// maxFixesPerDiagnostic caps how many ranked replacements one
// diagnostic carries.
const maxFixesPerDiagnostic = 3

// site is one type-reference usage with the kind expected there.
// References used where nothing is expected (a heritage base, a mapped
// source) carry a nil expectation and get no replacement fixes.
type site struct {
	ref      *ast.TypeRef
	expected *kind.Metadata
}

// Suggester attaches ranked replacement fixes to kind diagnostics. It
// re-walks the syntax tree once to recover the expectation at each
// usage site, then matches diagnostics to sites by span.
type Suggester struct {
	ranker  *Ranker
	session sema.Result
	bySpan  map[source.Span]site
}

// NewSuggester builds a suggester for one checked file.
func NewSuggester(file *ast.File, res sema.Result) *Suggester {
	s := &Suggester{
		ranker:  NewRanker(res.Registry, res.Symbols),
		session: res,
		bySpan:  make(map[source.Span]site),
	}
	s.collect(file)
	return s
}

// Enrich returns the diagnostics with replacement fixes attached where
// a compatible alternative name exists. The input order is preserved;
// diagnostics without a matching site pass through untouched.
func (s *Suggester) Enrich(ctx context.Context, items []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(items))
	for i, d := range items {
		out[i] = d
		if !fixableCode(d.Code) {
			continue
		}
		st, ok := s.siteFor(d.Primary)
		if !ok || st.expected == nil {
			continue
		}
		cands := s.ranker.RankReplacements(ctx, st.expected, st.ref.Name)
		if len(cands) > maxFixesPerDiagnostic {
			cands = cands[:maxFixesPerDiagnostic]
		}
		for rank, cand := range cands {
			out[i].Fixes = append(out[i].Fixes, s.replacementFix(st, cand, rank == 0))
		}
	}
	return out
}

// FixAll folds every diagnostic's best replacement into one aggregate
// fix. A node reached through several diagnostics contributes exactly
// one edit (identity is file, position and syntax kind); an edit
// overlapping an already selected one is dropped.
func (s *Suggester) FixAll(ctx context.Context, items []diag.Diagnostic) (diag.Fix, bool) {
	all := diag.Fix{
		ID:            "kind-replace-all",
		Title:         "replace all incompatible type references",
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilitySafeWithHeuristics,
	}
	visited := make(map[ast.Key]struct{})

	for _, d := range items {
		if err := ctx.Err(); err != nil {
			break
		}
		if !fixableCode(d.Code) {
			continue
		}
		st, ok := s.siteFor(d.Primary)
		if !ok || st.expected == nil {
			continue
		}
		key := ast.KeyOf(st.ref)
		if _, dup := visited[key]; dup {
			continue
		}
		visited[key] = struct{}{}

		cands := s.ranker.RankReplacements(ctx, st.expected, st.ref.Name)
		if len(cands) == 0 {
			continue
		}
		edit := diag.TextEdit{
			Span:    st.ref.NameSpan,
			NewText: cands[0].Name,
			OldText: st.ref.Name,
		}
		if overlapsAny(all.Edits, edit) {
			continue
		}
		all.Edits = append(all.Edits, edit)
	}
	return all, len(all.Edits) > 0
}

func (s *Suggester) replacementFix(st site, cand Candidate, preferred bool) diag.Fix {
	title := fmt.Sprintf("change '%s' to '%s'", st.ref.Name, cand.Name)
	opts := []Option{
		WithID(fmt.Sprintf("kind-replace-%d-%d-%s",
			st.ref.NameSpan.File, st.ref.NameSpan.Start, cand.Name)),
	}
	if preferred {
		opts = append(opts, Preferred())
	}
	// Only the name is replaced; type arguments stay as written.
	return ReplaceSpan(title, st.ref.NameSpan, cand.Name, st.ref.Name, opts...)
}

func (s *Suggester) siteFor(sp source.Span) (site, bool) {
	st, ok := s.bySpan[sp]
	return st, ok
}

// ReferenceAt returns the innermost recorded reference covering the
// byte offset, with the kind expected at that position. The expectation
// is nil for positions where any shape is acceptable.
func (s *Suggester) ReferenceAt(offset uint32) (*ast.TypeRef, *kind.Metadata, bool) {
	var best site
	var bestSize uint32
	found := false
	for sp, st := range s.bySpan {
		if offset < sp.Start || offset >= sp.End {
			continue
		}
		if size := sp.End - sp.Start; !found || size < bestSize {
			best = st
			bestSize = size
			found = true
		}
	}
	if !found {
		return nil, nil, false
	}
	return best.ref, best.expected, true
}

// Ranker exposes the suggester's candidate ranking for reuse outside
// diagnostic enrichment.
func (s *Suggester) Ranker() *Ranker {
	return s.ranker
}

func fixableCode(code diag.Code) bool {
	switch code {
	case diag.KndArityMismatch, diag.KndParamKindMismatch,
		diag.KndVarianceMismatch, diag.KndUnknownTypeName:
		return true
	}
	return false
}

func overlapsAny(edits []diag.TextEdit, edit diag.TextEdit) bool {
	for _, e := range edits {
		if spansConflict(e, edit) {
			return true
		}
	}
	return false
}

// collect walks the file and records the expectation at every
// reference, mirroring how the checker derives them.
func (s *Suggester) collect(file *ast.File) {
	if file == nil {
		return
	}
	for _, decl := range file.Decls {
		d, ok := decl.(*ast.TypeDecl)
		if !ok {
			continue
		}
		if d.Heritage != nil && d.Heritage.Base != nil {
			s.walkRef(d.Heritage.Base, nil)
		}
		for _, m := range d.Members {
			switch member := m.(type) {
			case *ast.FieldMember:
				s.walkValue(member.Value)
			case *ast.MappedMember:
				if member.Source != nil {
					s.walkRef(member.Source, nil)
				}
				s.walkValue(member.Value)
			}
		}
	}
}

func (s *Suggester) walkValue(v ast.MemberValue) {
	if ref, ok := v.(*ast.TypeRef); ok {
		s.walkRef(ref, kind.Leaf())
	}
}

func (s *Suggester) walkRef(ref *ast.TypeRef, expected *kind.Metadata) {
	st := site{ref: ref, expected: expected}
	s.bySpan[ref.Sp] = st
	if ref.NameSpan != ref.Sp {
		s.bySpan[ref.NameSpan] = st
	}

	shape := s.shapeOf(ref.Name)
	for i, arg := range ref.Args {
		var argExpected *kind.Metadata
		if shape != nil && i < len(shape.Params) {
			argExpected = shape.Params[i]
		}
		s.walkRef(arg, argExpected)
	}
}

// shapeOf resolves a name's constructor shape the way the checker did,
// preferring the session's cache.
func (s *Suggester) shapeOf(name string) *kind.Metadata {
	if name == "Type" {
		return kind.Leaf()
	}
	if kt, ok := s.session.KindCache[name]; ok {
		return kt.Shape()
	}
	if s.session.Symbols != nil {
		if sym, ok := s.session.Symbols.Resolve(name); ok {
			return sym.Meta
		}
	}
	if s.session.Registry != nil {
		if res := s.session.Registry.Lookup(name); res.Ok() {
			return res.Meta
		}
	}
	return nil
}
