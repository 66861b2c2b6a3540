package parser

import (
	"testing"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.kd", []byte(src))
	bag := diag.NewBag(64)
	res := ParseFile(fs, fileID, Options{Reporter: diag.BagReporter{Bag: bag}})
	if res.File == nil {
		t.Fatalf("expected a file node")
	}
	return res.File, bag
}

func TestParseAliasDecl(t *testing.T) {
	file, bag := parseSource(t, "alias Functor = Kind<Type, Type>;")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
	alias, ok := file.Decls[0].(*ast.AliasDecl)
	if !ok {
		t.Fatalf("expected AliasDecl, got %T", file.Decls[0])
	}
	if alias.Name != "Functor" {
		t.Fatalf("unexpected name %q", alias.Name)
	}
	if alias.Target.Form != ast.KindFormApplied || len(alias.Target.Args) != 2 {
		t.Fatalf("unexpected target %+v", alias.Target)
	}
	if alias.Target.Recovered {
		t.Fatalf("well-formed node must not be marked recovered")
	}
}

func TestParseTypeDeclWithConstraintAndHeritage(t *testing.T) {
	file, bag := parseSource(t,
		"type Box<out F: Kind<Type>, in G: Functor> extends Base<F> { value: F<Type>; };")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	decl := file.Decls[0].(*ast.TypeDecl)
	if len(decl.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(decl.Params))
	}
	if decl.Params[0].Variance != ast.VarianceCovariant {
		t.Fatalf("expected covariant first param")
	}
	if decl.Params[1].Variance != ast.VarianceContravariant {
		t.Fatalf("expected contravariant second param")
	}
	if decl.Heritage == nil || decl.Heritage.Base.Name != "Base" {
		t.Fatalf("expected heritage Base, got %+v", decl.Heritage)
	}
	if len(decl.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(decl.Members))
	}
}

func TestConstraintContextStamped(t *testing.T) {
	file, _ := parseSource(t, "type Box<F: Kind<Type, Type>>;")
	decl := file.Decls[0].(*ast.TypeDecl)
	constraint := decl.Params[0].Constraint
	if constraint == nil {
		t.Fatalf("expected constraint")
	}
	if constraint.Context != ast.ContextExtendsConstraint {
		t.Fatalf("expected extends-constraint context, got %v", constraint.Context)
	}
	for _, arg := range constraint.Args {
		if arg.Context != ast.ContextExtendsConstraint {
			t.Fatalf("nested args inherit context, got %v", arg.Context)
		}
	}
}

func TestMappedContextStamped(t *testing.T) {
	file, bag := parseSource(t, "type M<F: Functor> { [K in Keys]: Kind<Type>; };")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	decl := file.Decls[0].(*ast.TypeDecl)
	mapped := decl.Members[0].(*ast.MappedMember)
	value, ok := mapped.Value.(*ast.KindExpr)
	if !ok {
		t.Fatalf("expected kind expression value, got %T", mapped.Value)
	}
	if value.Context != ast.ContextMappedType {
		t.Fatalf("expected mapped-type context, got %v", value.Context)
	}
}

func TestNoContextOutsideSpecialPositions(t *testing.T) {
	file, _ := parseSource(t, "alias F = Kind<Type>;")
	alias := file.Decls[0].(*ast.AliasDecl)
	if alias.Target.Context != ast.ContextNone {
		t.Fatalf("alias target should have no context, got %v", alias.Target.Context)
	}
}

func TestMisspelledKindRecoversLocally(t *testing.T) {
	file, bag := parseSource(t, "alias Bad = kind<Type, Type>;")
	if len(file.Decls) != 1 {
		t.Fatalf("declaration should survive recovery, got %d decls", len(file.Decls))
	}
	alias := file.Decls[0].(*ast.AliasDecl)
	if !alias.Target.Recovered {
		t.Fatalf("expected recovered node")
	}
	if alias.Target.Form != ast.KindFormApplied || len(alias.Target.Args) != 2 {
		t.Fatalf("recovery should keep the parsed arguments, got %+v", alias.Target)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d: %+v", bag.Len(), bag.Items())
	}
	if bag.Items()[0].Code != diag.SynMisspelledKindKeyword {
		t.Fatalf("unexpected code %v", bag.Items()[0].Code)
	}
}

func TestMalformedKindDoesNotCascade(t *testing.T) {
	// One malformed annotation amid five declarations: diagnostics
	// attach only to the bad node, the other four stay clean.
	src := `alias A = Kind<Type>;
alias Bad = kind<Type, Type>;
alias B = Kind<Type, Type>;
type C<F: Functor>;
type D<G: Kind<Type>> extends Base<G>;
`
	file, bag := parseSource(t, src)
	if len(file.Decls) != 5 {
		t.Fatalf("expected all 5 decls to parse, got %d", len(file.Decls))
	}

	badSpan := file.Decls[1].(*ast.AliasDecl).Target.Sp
	for _, d := range bag.Items() {
		if d.Primary.Start < badSpan.Start || d.Primary.Start > badSpan.End {
			t.Fatalf("diagnostic leaked outside the malformed node: %+v", d)
		}
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", bag.Len(), bag.Items())
	}
}

func TestUnterminatedKindArgsRecover(t *testing.T) {
	file, bag := parseSource(t, "alias F = Kind<Type, Type;\nalias G = Kind<Type>;")
	if len(file.Decls) != 2 {
		t.Fatalf("expected both decls, got %d", len(file.Decls))
	}
	first := file.Decls[0].(*ast.AliasDecl)
	if !first.Target.Recovered {
		t.Fatalf("expected recovered node for unterminated args")
	}
	if len(first.Target.Args) != 2 {
		t.Fatalf("partial node should keep parsed args, got %d", len(first.Target.Args))
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynUnterminatedKindArgs {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SynUnterminatedKindArgs, got %+v", bag.Items())
	}
	// The second declaration is untouched.
	second := file.Decls[1].(*ast.AliasDecl)
	if second.Target.Recovered {
		t.Fatalf("sibling declaration must not be poisoned")
	}
}

func TestKindWithoutArgumentList(t *testing.T) {
	file, _ := parseSource(t, "alias Z = Kind;")
	alias := file.Decls[0].(*ast.AliasDecl)
	if alias.Target.Form != ast.KindFormApplied || alias.Target.Arity() != 0 {
		t.Fatalf("bare Kind should parse as an empty application, got %+v", alias.Target)
	}
}

func TestDuplicateTypeParameter(t *testing.T) {
	_, bag := parseSource(t, "type T<F: Functor, F: Functor>;")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynDuplicateTypeParameter {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate parameter diagnostic, got %+v", bag.Items())
	}
}

func TestResyncAfterGarbageTopLevel(t *testing.T) {
	file, bag := parseSource(t, "???;\nalias F = Kind<Type>;")
	if len(file.Decls) != 1 {
		t.Fatalf("expected recovery to reach the alias, got %d decls", len(file.Decls))
	}
	if bag.Len() == 0 {
		t.Fatalf("expected diagnostics for garbage prefix")
	}
}

func TestMaxErrorsCountsLexicalErrors(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.kd", []byte("? junk;"))

	unlimited := diag.NewBag(64)
	ParseFile(fs, fileID, Options{Reporter: diag.BagReporter{Bag: unlimited}})
	if unlimited.Len() != 2 {
		t.Fatalf("expected lex + syntax diagnostics, got %+v", unlimited.Items())
	}

	// The limit spans both sources: one lexical error exhausts it, so
	// the follow-up syntax error is suppressed.
	capped := diag.NewBag(64)
	ParseFile(fs, fileID, Options{MaxErrors: 1, Reporter: diag.BagReporter{Bag: capped}})
	if capped.Len() != 1 {
		t.Fatalf("expected the limit to hold one diagnostic, got %+v", capped.Items())
	}
	if capped.Items()[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected the lexical error to survive, got %s", capped.Items()[0].Code.ID())
	}
}
