package fix

import (
	"context"
	"testing"

	"kindcheck/internal/kind"
	"kindcheck/internal/sema"
)

func rankerWithUserTypes(t *testing.T) *Ranker {
	t.Helper()
	reg := kind.NewBuiltinRegistry()
	tbl := sema.NewTable()
	tbl.Declare(&sema.Symbol{Name: "List", Kind: sema.SymbolType, Meta: kind.NewMetadata(1)})
	tbl.Declare(&sema.Symbol{Name: "Pair", Kind: sema.SymbolType, Meta: kind.NewMetadata(2)})
	return NewRanker(reg, tbl)
}

func names(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func TestRankReplacementsForUnaryExpectation(t *testing.T) {
	r := rankerWithUserTypes(t)

	got := r.RankReplacements(context.Background(), kind.Unary(), "Either")

	want := []string{"Functor", "Monad", "List", "Fix"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", names(got), want)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("candidates = %v, want %v", names(got), want)
		}
	}

	// Exact matches outrank the same-arity partial match.
	if got[2].Score <= got[3].Score {
		t.Fatalf("List score %d should exceed Fix score %d", got[2].Score, got[3].Score)
	}
	for _, c := range got {
		if c.Name == "Bifunctor" || c.Name == "Pair" || c.Name == "Free" {
			t.Fatalf("wrong-arity candidate %q not excluded", c.Name)
		}
	}
}

func TestRankReplacementsFPBonusOrdersBuiltinsFirst(t *testing.T) {
	r := rankerWithUserTypes(t)

	got := r.RankReplacements(context.Background(), kind.NewMetadata(2), "Broken")

	// Bifunctor is an exact functional-pattern match, Pair an exact
	// plain match, Free same arity with a mismatched first parameter.
	want := []string{"Bifunctor", "Pair", "Free"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", names(got), want)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("candidates = %v, want %v", names(got), want)
		}
	}
}

func TestRankReplacementsExcludesCurrentName(t *testing.T) {
	r := rankerWithUserTypes(t)

	for _, c := range r.RankReplacements(context.Background(), kind.Unary(), "List") {
		if c.Name == "List" {
			t.Fatalf("offending name must not be its own replacement")
		}
	}
}

func TestRankReplacementsCancellation(t *testing.T) {
	r := rankerWithUserTypes(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := r.RankReplacements(ctx, kind.Unary(), "Either"); len(got) != 0 {
		t.Fatalf("cancelled ranking returned %v", names(got))
	}
}

func TestRankReplacementsNilExpectation(t *testing.T) {
	r := rankerWithUserTypes(t)
	if got := r.RankReplacements(context.Background(), nil, "X"); got != nil {
		t.Fatalf("want nil for nil expectation, got %v", names(got))
	}
}
