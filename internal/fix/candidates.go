package fix

import (
	"context"
	"sort"

	"kindcheck/internal/kind"
	"kindcheck/internal/sema"
)

// Candidate is one replacement name with its ranking score. Higher
// scores rank first; ties fall back to declaration order.
type Candidate struct {
	Name      string
	Meta      *kind.Metadata
	Score     int
	Order     int
	Builtin   bool
	FPPattern bool
}

// Score tiers. A candidate whose arity disagrees with the expectation
// is excluded outright rather than scored low: renaming to it would
// swap one arity error for another.
const (
	scoreExactMatch    = 100
	scoreSameArity     = 40
	scoreFPBonus       = 10
	symbolOrderBase    = 1 << 16
	maxRankedCandidate = 64
)

// Ranker scans the names visible at a usage site and ranks them by
// compatibility with an expected kind shape.
type Ranker struct {
	registry *kind.Registry
	symbols  *sema.Table
	kinds    *kind.Checker
}

// NewRanker builds a ranker over one checking session's registry and
// symbol table. Either may be nil; the corresponding pool is skipped.
func NewRanker(registry *kind.Registry, symbols *sema.Table) *Ranker {
	if registry == nil {
		registry = kind.NewRegistry()
	}
	return &Ranker{
		registry: registry,
		symbols:  symbols,
		kinds:    kind.NewChecker(registry),
	}
}

// RankReplacements returns candidate names satisfying expected, best
// first. The current (offending) name is excluded. Ranking, in order:
// exact structural matches above same-arity partial matches, functional
// pattern aliases above plain names within a tier, declaration order
// last. Cancelling ctx returns the candidates ranked so far.
func (r *Ranker) RankReplacements(ctx context.Context, expected *kind.Metadata, current string) []Candidate {
	if expected == nil {
		return nil
	}

	out := make([]Candidate, 0, 8)
	seen := make(map[string]struct{})
	seen[current] = struct{}{}
	seen["Type"] = struct{}{}

	pool := r.pool()
	for _, cand := range pool {
		if err := ctx.Err(); err != nil {
			break
		}
		if _, dup := seen[cand.Name]; dup {
			continue
		}
		seen[cand.Name] = struct{}{}

		score, ok := r.score(cand.Meta, expected)
		if !ok {
			continue
		}
		cand.Score = score
		if cand.FPPattern {
			cand.Score += scoreFPBonus
		}
		out = append(out, cand)
		if len(out) >= maxRankedCandidate {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// pool lists every candidate name in a stable order: registered aliases
// first (built-ins lead by registration order), then file-level symbols
// in declaration order.
func (r *Ranker) pool() []Candidate {
	out := make([]Candidate, 0, r.registry.Len())
	for _, e := range r.registry.Entries() {
		if e.Meta == nil {
			continue
		}
		out = append(out, Candidate{
			Name:      e.Name,
			Meta:      e.Meta,
			Order:     e.Order,
			Builtin:   e.Meta.BuiltinAlias,
			FPPattern: e.Meta.FPPattern,
		})
	}
	if r.symbols != nil {
		for _, sym := range r.symbols.Visible() {
			if sym.Meta == nil || sym.Kind == sema.SymbolTypeParam {
				continue
			}
			out = append(out, Candidate{
				Name:  sym.Name,
				Meta:  sym.Meta,
				Order: symbolOrderBase + sym.Order,
			})
		}
	}
	return out
}

// score rates one candidate shape against the expectation. The second
// return is false when the candidate must be excluded. Alias chains on
// either side resolve before comparing.
func (r *Ranker) score(meta, expected *kind.Metadata) (int, bool) {
	resolved := r.resolve(meta)
	want := r.resolve(expected)
	if r.kinds.Compatible(kind.FromMetadata("", resolved), want) {
		return scoreExactMatch, true
	}
	if resolved.Arity != want.Arity {
		return 0, false
	}
	return scoreSameArity, true
}

func (r *Ranker) resolve(m *kind.Metadata) *kind.Metadata {
	if m == nil {
		return kind.Leaf()
	}
	if m.ConstraintTag == "" || !m.IsLeaf() {
		return m
	}
	if res := r.registry.Lookup(m.ConstraintTag); res.Ok() {
		return r.resolve(res.Meta)
	}
	return m
}
