package kind

import (
	"errors"
	"testing"
)

func TestRegisterIdempotentForIdenticalShape(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Functor", NewMetadata(1)); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := r.Register("Functor", NewMetadata(1)); err != nil {
		t.Fatalf("identical re-register should be a no-op, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestRegisterConflictOnDifferentShape(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Functor", NewMetadata(1)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	err := r.Register("Functor", NewMetadata(2))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Name != "Functor" {
		t.Fatalf("unexpected conflict name %q", conflict.Name)
	}
	// The original entry survives.
	res := r.Lookup("Functor")
	if !res.Ok() || res.Meta.Arity != 1 {
		t.Fatalf("original entry should be untouched, got %+v", res)
	}
}

func TestLookupNotFoundIsExplicit(t *testing.T) {
	r := NewRegistry()
	res := r.Lookup("Nope")
	if res.State != LookupNotFound {
		t.Fatalf("expected LookupNotFound, got %v", res.State)
	}
	if res.Ok() {
		t.Fatalf("NotFound must not read as ok")
	}
}

func TestBuiltinRegistryShapes(t *testing.T) {
	r := NewBuiltinRegistry()

	cases := []struct {
		name  string
		arity int
		fp    bool
	}{
		{"Type", 0, false},
		{"Functor", 1, true},
		{"Bifunctor", 2, true},
		{"Monad", 1, true},
		{"Free", 2, true},
		{"Fix", 1, true},
	}
	for _, tc := range cases {
		res := r.Lookup(tc.name)
		if !res.Ok() {
			t.Fatalf("builtin %q missing", tc.name)
		}
		if res.Meta.Arity != tc.arity {
			t.Fatalf("%s: expected arity %d, got %d", tc.name, tc.arity, res.Meta.Arity)
		}
		if res.Meta.FPPattern != tc.fp {
			t.Fatalf("%s: expected FPPattern=%v", tc.name, tc.fp)
		}
		if !res.Meta.BuiltinAlias {
			t.Fatalf("%s: expected BuiltinAlias", tc.name)
		}
	}
}

func TestBuiltinDepthBounded(t *testing.T) {
	for _, b := range Builtins() {
		if d := b.Meta.Depth(); d > 3 {
			t.Fatalf("builtin %q exceeds depth 3: %d", b.Name, d)
		}
	}
}

func TestFreeConstrainsFirstParamToUnaryShape(t *testing.T) {
	r := NewBuiltinRegistry()
	free := r.Lookup("Free")
	if !free.Ok() {
		t.Fatalf("Free missing")
	}
	first := free.Meta.Params[0]
	if first.Arity != 1 || !first.Params[0].IsLeaf() {
		t.Fatalf("Free's first parameter should be the unary shape, got %s", first)
	}
}

func TestMetadataInvariantArityEqualsParams(t *testing.T) {
	m := NewMetadata(3, Leaf()) // two slots missing
	if len(m.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(m.Params))
	}
	m = NewMetadata(1, Leaf(), Leaf(), Leaf()) // extras dropped
	if len(m.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(m.Params))
	}
	m = NewMetadata(-2)
	if m.Arity != 0 || len(m.Params) != 0 {
		t.Fatalf("negative arity should clamp, got %+v", m)
	}
}
