package kind

import (
	"testing"

	"kindcheck/internal/ast"
	"kindcheck/internal/source"
)

func TestFactoryClampsNegativeArity(t *testing.T) {
	kt := NewKindType("Broken", -3, nil, false)
	if kt.Arity != 0 {
		t.Fatalf("expected arity 0, got %d", kt.Arity)
	}
	if kt.Params == nil || len(kt.Params) != 0 {
		t.Fatalf("params must be non-nil and empty, got %#v", kt.Params)
	}
}

func TestErrorKindType(t *testing.T) {
	kt := NewErrorKindType("Unresolvable")
	if !kt.HasErrors || kt.Arity != 0 || kt.Params == nil {
		t.Fatalf("unexpected error kind %+v", kt)
	}
}

func TestArityMismatchScenario(t *testing.T) {
	// Expected arity 1, actual arity 2: exactly one ArityMismatch.
	c := NewChecker(NewBuiltinRegistry())
	actual := NewKindType("Either", 2, []*Metadata{Leaf(), Leaf()}, false)

	violations := c.Check(actual, Unary())
	if len(violations) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d: %+v", len(violations), violations)
	}
	v := violations[0]
	if v.Kind != ArityMismatch {
		t.Fatalf("expected ArityMismatch, got %v", v.Kind)
	}
	if v.Expected.Arity != 1 || v.Actual.Arity != 2 {
		t.Fatalf("expected {expected:1, actual:2}, got {%d, %d}", v.Expected.Arity, v.Actual.Arity)
	}
}

func TestCompatibleUnaryConstructor(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	actual := NewKindType("List", 1, []*Metadata{Leaf()}, false)
	if !c.Compatible(actual, Unary()) {
		t.Fatalf("List should satisfy the unary shape")
	}
}

func TestStructuralPassWithoutDeclaringAlias(t *testing.T) {
	// A constructor that structurally matches Functor passes even
	// though it never declared the alias.
	c := NewChecker(NewBuiltinRegistry())
	functor := c.Registry().Lookup("Functor")
	actual := NewKindType("MyContainer", 1, []*Metadata{Leaf()}, false)
	if !c.Compatible(actual, functor.Meta) {
		t.Fatalf("structural match should pass without alias declaration")
	}
}

func TestParameterKindMismatchReportsFirstIndex(t *testing.T) {
	// Free expects its first argument to be a unary constructor.
	c := NewChecker(NewBuiltinRegistry())
	free := c.Registry().Lookup("Free").Meta

	// Arity matches (2) but the first parameter is a plain Type.
	actual := NewKindType("Wrong", 2, []*Metadata{Leaf(), Leaf()}, false)
	violations := c.Check(actual, free)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(violations), violations)
	}
	if violations[0].Kind != ParameterKindMismatch || violations[0].Index != 0 {
		t.Fatalf("expected ParameterKindMismatch at index 0, got %+v", violations[0])
	}
}

func TestNestedParameterKindMatch(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	free := c.Registry().Lookup("Free").Meta

	actual := NewKindType("MyFree", 2, []*Metadata{Unary(), Leaf()}, false)
	if !c.Compatible(actual, free) {
		t.Fatalf("nested unary parameter should satisfy Free")
	}
}

func TestAliasArgumentResolvesThroughRegistry(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	free := c.Registry().Lookup("Free").Meta

	// The first parameter is written as the alias 'Functor'; it must
	// resolve to the unary shape before comparison.
	tagged := Leaf()
	tagged.ConstraintTag = "Functor"
	actual := NewKindType("MyFree", 2, []*Metadata{tagged, Leaf()}, false)
	if !c.Compatible(actual, free) {
		t.Fatalf("alias parameter should resolve and match")
	}
}

func TestUnresolvedAliasReference(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	actual := NewAliasKindType("NotRegistered", testSpan())

	violations := c.Check(actual, Unary())
	foundAlias := false
	for _, v := range violations {
		if v.Kind == AliasMismatch {
			foundAlias = true
			if v.Alias != "NotRegistered" {
				t.Fatalf("unexpected alias %q", v.Alias)
			}
		}
	}
	if !foundAlias {
		t.Fatalf("expected AliasMismatch, got %+v", violations)
	}
}

func TestResolvedAliasReferenceChecksShape(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())

	// 'Bifunctor' as a bare alias where a unary shape is expected:
	// resolution succeeds, then arity mismatches.
	actual := NewAliasKindType("Bifunctor", testSpan())
	violations := c.Check(actual, Unary())
	if len(violations) != 1 || violations[0].Kind != ArityMismatch {
		t.Fatalf("expected single ArityMismatch, got %+v", violations)
	}

	ok := NewAliasKindType("Functor", testSpan())
	if !c.Compatible(ok, Unary()) {
		t.Fatalf("Functor alias should satisfy the unary shape")
	}
}

func TestVarianceMismatch(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	expected := Unary().WithVariance(ast.VarianceCovariant)

	actual := NewKindType("Sink", 1, []*Metadata{Leaf()}, false)
	actual.Variances = []ast.Variance{ast.VarianceContravariant}

	violations := c.Check(actual, expected)
	if len(violations) != 1 || violations[0].Kind != VarianceMismatch {
		t.Fatalf("expected single VarianceMismatch, got %+v", violations)
	}

	// Undeclared variance carries no expectation.
	silent := NewKindType("Box", 1, []*Metadata{Leaf()}, false)
	if !c.Compatible(silent, expected) {
		t.Fatalf("undeclared variance should not violate")
	}
}

func TestAllStepsEvaluatedNotShortCircuited(t *testing.T) {
	c := NewChecker(NewBuiltinRegistry())
	expected := NewMetadata(2, Unary(), Leaf()).WithVariance(ast.VarianceCovariant, ast.VarianceNone)

	// Arity matches, first parameter shape wrong AND variance wrong:
	// both violations are reported from one call.
	actual := NewKindType("Messy", 2, []*Metadata{Leaf(), Leaf()}, false)
	actual.Variances = []ast.Variance{ast.VarianceContravariant, ast.VarianceNone}

	violations := c.Check(actual, expected)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %+v", len(violations), violations)
	}
	if violations[0].Kind != ParameterKindMismatch || violations[1].Kind != VarianceMismatch {
		t.Fatalf("unexpected violation order %+v", violations)
	}
}

func TestFromNodeArityFollowsArgumentCount(t *testing.T) {
	node := &ast.KindExpr{
		Form: ast.KindFormApplied,
		Args: []*ast.KindExpr{
			{Form: ast.KindFormLeaf},
			{Form: ast.KindFormLeaf},
		},
	}
	kt := FromNode("Pair", node)
	if kt.Arity != 2 {
		t.Fatalf("expected arity 2, got %d", kt.Arity)
	}

	kt = FromNode("Empty", &ast.KindExpr{Form: ast.KindFormApplied})
	if kt.Arity != 0 {
		t.Fatalf("expected arity 0 for absent args, got %d", kt.Arity)
	}

	recovered := &ast.KindExpr{Form: ast.KindFormApplied, Recovered: true}
	kt = FromNode("Broken", recovered)
	if !kt.HasErrors {
		t.Fatalf("recovered node should produce error kind")
	}
}

func testSpan() source.Span {
	return source.Span{File: 0, Start: 0, End: 4}
}
