package kind

// Checker compares an actual kind against an expected shape. It is the
// structural core: a tree equality over kind shapes, not a flat arity
// comparison, because patterns like Free and Fix constrain an argument
// to itself be a specific kind of kind.
type Checker struct {
	registry *Registry
}

// NewChecker builds a checker over the given registry. The registry is
// injected per session; the checker holds no other state.
func NewChecker(registry *Registry) *Checker {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Checker{registry: registry}
}

// Registry exposes the injected registry for collaborators (fix engine,
// language service).
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Check compares actual against expected and returns all violations in
// step order; an empty slice means compatible. Every step is evaluated
// (no short-circuiting) and each contributes at most one violation:
//
//  1. alias resolution: a bare alias reference resolves through the
//     registry first; failure yields AliasMismatch and the comparison
//     continues against the error kind.
//  2. arity.
//  3. parameter kinds, recursively, when arities match; the first
//     mismatching index is reported.
//  4. variance, when both sides declare one.
//
// The same usage site may be re-checked via several propagation paths;
// the diagnostic deduplicator downstream collapses the repeats, so this
// function stays pure and repeat-safe.
func (c *Checker) Check(actual KindType, expected *Metadata) []Violation {
	violations := make([]Violation, 0, 2)
	if expected == nil {
		return violations
	}
	expected = c.resolveTag(expected)

	if actual.AliasRef != "" {
		res := c.registry.Lookup(actual.AliasRef)
		if res.Ok() {
			resolved := FromMetadata(actual.AliasRef, res.Meta)
			resolved.Sp = actual.Sp
			actual = resolved
		} else {
			violations = append(violations, Violation{
				Kind:     AliasMismatch,
				Expected: expected,
				Actual:   actual,
				Alias:    actual.AliasRef,
				Span:     actual.Sp,
			})
			errKind := NewErrorKindType(actual.Symbol)
			errKind.Sp = actual.Sp
			actual = errKind
		}
	}

	if actual.Arity != expected.Arity {
		violations = append(violations, Violation{
			Kind:     ArityMismatch,
			Expected: expected,
			Actual:   actual,
			Span:     actual.Sp,
		})
	}

	if actual.Arity == expected.Arity {
		if idx, ok := c.firstParamMismatch(actual.Params, expected.Params); ok {
			violations = append(violations, Violation{
				Kind:     ParameterKindMismatch,
				Expected: expected,
				Actual:   actual,
				Index:    idx,
				Span:     actual.Sp,
			})
		}
	}

	if idx, ok := firstVarianceMismatch(actual, expected); ok {
		violations = append(violations, Violation{
			Kind:     VarianceMismatch,
			Expected: expected,
			Actual:   actual,
			Index:    idx,
			Span:     actual.Sp,
		})
	}

	return violations
}

// Compatible reports whether actual satisfies expected with no
// violations. Comparison is purely structural: declaring the alias is
// not required.
func (c *Checker) Compatible(actual KindType, expected *Metadata) bool {
	return len(c.Check(actual, expected)) == 0
}

// firstParamMismatch walks parameter shapes pairwise and returns the
// first index whose shapes disagree, resolving alias tags through the
// registry along the way.
func (c *Checker) firstParamMismatch(actual, expected []*Metadata) (int, bool) {
	for i := range expected {
		if i >= len(actual) {
			return i, true
		}
		if !c.shapesMatch(actual[i], expected[i]) {
			return i, true
		}
	}
	return 0, false
}

// shapesMatch is the recursive structural comparison. A shape carrying
// an alias tag resolves first; an unresolvable tag never matches a
// non-leaf expectation.
func (c *Checker) shapesMatch(actual, expected *Metadata) bool {
	actual = c.resolveTag(actual)
	expected = c.resolveTag(expected)
	if actual == nil || expected == nil {
		return actual == expected
	}
	if actual.Arity != expected.Arity {
		return false
	}
	for i := range expected.Params {
		if !c.shapesMatch(actual.Params[i], expected.Params[i]) {
			return false
		}
	}
	return true
}

// resolveTag replaces a tagged leaf (an alias reference embedded in a
// larger annotation) with the registered shape, when one exists.
// Aliases of aliases resolve transitively; the depth cap breaks
// registration cycles.
func (c *Checker) resolveTag(m *Metadata) *Metadata {
	for depth := 0; depth < maxAliasDepth; depth++ {
		if m == nil || m.ConstraintTag == "" || !m.IsLeaf() {
			return m
		}
		if m.ConstraintTag == "Type" {
			return Leaf()
		}
		res := c.registry.Lookup(m.ConstraintTag)
		if !res.Ok() {
			return m
		}
		m = res.Meta
	}
	return m
}

const maxAliasDepth = 32

// firstVarianceMismatch finds the first parameter where both sides
// declare a variance and the declarations differ. Positions where
// either side is silent carry no expectation.
func firstVarianceMismatch(actual KindType, expected *Metadata) (int, bool) {
	if len(expected.ParamVariance) == 0 || len(actual.Variances) == 0 {
		return 0, false
	}
	n := len(expected.ParamVariance)
	if len(actual.Variances) < n {
		n = len(actual.Variances)
	}
	for i := 0; i < n; i++ {
		want := expected.ParamVariance[i]
		got := actual.Variances[i]
		if want == 0 || got == 0 {
			continue
		}
		if want != got {
			return i, true
		}
	}
	return 0, false
}
