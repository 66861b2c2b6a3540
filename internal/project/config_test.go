package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeManifest(t, `
[project]
name = "demo"
max_diagnostics = 50

[aliases]
Mapper = { arity = 1 }
Chain = { arity = 2, params = ["Functor", "Type"] }
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.Name != "demo" || cfg.Project.MaxDiagnostics != 50 {
		t.Fatalf("project section = %+v", cfg.Project)
	}
	if len(cfg.Aliases) != 2 {
		t.Fatalf("aliases = %+v", cfg.Aliases)
	}
	if cfg.Aliases["Chain"].Params[0] != "Functor" {
		t.Fatalf("Chain = %+v", cfg.Aliases["Chain"])
	}
}

func TestLoadConfigDefaultsMaxDiagnostics(t *testing.T) {
	path := writeManifest(t, `[project]
name = "d"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.MaxDiagnostics != DefaultMaxDiagnostics {
		t.Fatalf("max diagnostics = %d", cfg.Project.MaxDiagnostics)
	}
}

func TestBuildRegistryRegistersAliases(t *testing.T) {
	cfg := Config{Aliases: map[string]AliasSpec{
		"Mapper": {Arity: 1},
		"Chain":  {Arity: 2, Params: []string{"Functor"}},
	}}
	registry, issues := BuildRegistry(cfg)
	if len(issues) != 0 {
		t.Fatalf("issues = %+v", issues)
	}

	res := registry.Lookup("Mapper")
	if !res.Ok() || res.Meta.Arity != 1 {
		t.Fatalf("Mapper = %+v", res)
	}
	chain := registry.Lookup("Chain")
	if !chain.Ok() || chain.Meta.Params[0].ConstraintTag != "Functor" {
		t.Fatalf("Chain = %+v", chain)
	}
	// Built-ins survive alongside manifest aliases.
	if !registry.Lookup("Functor").Ok() {
		t.Fatalf("built-in Functor lost")
	}
}

func TestBuildRegistryReportsIssues(t *testing.T) {
	cfg := Config{Aliases: map[string]AliasSpec{
		"Functor":  {Arity: 2},                                // clashes with built-in
		"Negative": {Arity: -1},                               // invalid
		"TooMany":  {Arity: 1, Params: []string{"A", "B"}},    // params exceed arity
		"Fine":     {Arity: 1, Params: []string{"Bifunctor"}}, // registers
	}}
	registry, issues := BuildRegistry(cfg)
	if len(issues) != 3 {
		t.Fatalf("issues = %+v", issues)
	}
	if !registry.Lookup("Fine").Ok() {
		t.Fatalf("valid alias dropped because a sibling failed")
	}
	if res := registry.Lookup("Functor"); !res.Ok() || res.Meta.Arity != 1 {
		t.Fatalf("built-in Functor overwritten: %+v", res)
	}
	if registry.Lookup("Negative").Ok() {
		t.Fatalf("invalid alias registered")
	}
}

func TestSpecShapeClampAndPad(t *testing.T) {
	meta := specShape(AliasSpec{Arity: 2, Params: []string{"Type"}})
	if meta.Arity != 2 || len(meta.Params) != 2 {
		t.Fatalf("meta = %+v", meta)
	}
	if !meta.Params[0].IsLeaf() || !meta.Params[1].IsLeaf() {
		t.Fatalf("params = %+v", meta.Params)
	}
	if meta.Params[0].ConstraintTag != "" {
		t.Fatalf("explicit Type should stay untagged: %+v", meta.Params[0])
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, ManifestName)
	if err := os.WriteFile(want, []byte("[project]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}

	dir, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || dir != root {
		t.Fatalf("root = %q ok=%v err=%v", dir, ok, err)
	}
}
