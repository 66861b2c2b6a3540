package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kindcheck/internal/diag"
	"kindcheck/internal/project"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

const cleanSource = `
type List<T> { head: T; }
type Use { items: List<Type>; }
`

const brokenSource = `
type Either<A, B> { left: A; right: B; }
type Wrap<F: Functor> { tag: Type; }
type Use { pair: Wrap<Either>; }
`

func TestCheckDirOrder(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.kd":        cleanSource,
		"a.kd":        cleanSource,
		"sub/c.kd":    cleanSource,
		"ignored.txt": "not a source file",
	})

	_, results, err := CheckDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	want := []string{
		filepath.Join(dir, "a.kd"),
		filepath.Join(dir, "b.kd"),
		filepath.Join(dir, "sub", "c.kd"),
	}
	for i, res := range results {
		if res.Path != want[i] {
			t.Fatalf("results[%d].Path = %q, want %q", i, res.Path, want[i])
		}
		if res.Bag.Len() != 0 {
			t.Fatalf("%s: unexpected diagnostics %+v", res.Path, res.Bag.Items())
		}
	}
}

func TestCheckDirSkipsHiddenDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.kd":          cleanSource,
		".cache/b.kd":   brokenSource,
		".hidden/c2.kd": brokenSource,
	})

	_, results, err := CheckDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
}

func TestCheckDirReportsViolations(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.kd": brokenSource})

	_, results, err := CheckDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	bag := results[0].Bag
	if bag.Len() != 1 || bag.Items()[0].Code != diag.KndArityMismatch {
		t.Fatalf("want one arity diagnostic, got %+v", bag.Items())
	}
}

func TestCheckDirAliasesVisibleAcrossFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a_aliases.kd": "alias Mapper = Kind<Type>;\n",
		"b_use.kd":     "type List<T> { head: T; }\ntype Wrap<F: Mapper> { ok: Wrap<List>; }\n",
	})

	_, results, err := CheckDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	for _, res := range results {
		if res.Bag.Len() != 0 {
			t.Fatalf("%s: unexpected diagnostics %+v", res.Path, res.Bag.Items())
		}
	}
}

func TestDiskCacheReusedOnSecondRun(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	dir := writeTree(t, map[string]string{
		"clean.kd": cleanSource,
		"bad.kd":   brokenSource,
	})
	opts := Options{Cache: cache}

	_, first, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	for _, res := range first {
		if res.Cached {
			t.Fatalf("%s cached on first run", res.Path)
		}
	}

	_, second, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	byName := map[string]FileResult{}
	for _, res := range second {
		byName[filepath.Base(res.Path)] = res
	}
	if !byName["clean.kd"].Cached {
		t.Fatalf("clean file not served from cache")
	}
	// Errored files stay live so fixes can attach to the fresh tree.
	if byName["bad.kd"].Cached {
		t.Fatalf("errored file must not be cached")
	}
	bad := byName["bad.kd"].Bag
	if bad.Len() != 1 || bad.Items()[0].Code != diag.KndArityMismatch {
		t.Fatalf("second run lost the diagnostic: %+v", bad.Items())
	}
}

func TestDiskCacheKeepsAliasesVisible(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	dir := writeTree(t, map[string]string{
		"a_alias.kd": "alias Mapper = Kind<Type>;\n",
		"b_use.kd":   "type List<T> { head: T; }\ntype Wrap<F: Mapper> { ok: Wrap<List>; }\n",
		"c_use.kd":   "type Pairy<A, B> { left: A; }\ntype Hold<F: Mapper> { bad: Hold<Pairy>; }\n",
	})
	opts := Options{Cache: cache}

	codes := func(results []FileResult) []diag.Code {
		var out []diag.Code
		for _, res := range results {
			for _, d := range res.Bag.Items() {
				out = append(out, d.Code)
			}
		}
		return out
	}

	_, first, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstCodes := codes(first)
	if len(firstCodes) != 1 || firstCodes[0] != diag.KndArityMismatch {
		t.Fatalf("first run diagnostics = %v, want one arity mismatch", firstCodes)
	}

	// The errored file re-checks on the warm run; the alias it references
	// lives in a file served from the cache and must still resolve.
	_, second, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, res := range second {
		name := filepath.Base(res.Path)
		if name == "c_use.kd" && res.Cached {
			t.Fatalf("errored file must not be cached")
		}
		if name != "c_use.kd" && !res.Cached {
			t.Fatalf("%s not served from cache", name)
		}
	}
	secondCodes := codes(second)
	if len(secondCodes) != 1 || secondCodes[0] != diag.KndArityMismatch {
		t.Fatalf("warm run changed diagnostics: first=%v second=%v", firstCodes, secondCodes)
	}
}

func TestCheckFileAttachesFixes(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.kd": brokenSource})

	_, results, err := CheckDir(context.Background(), dir, Options{AttachFixes: true})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	items := results[0].Bag.Items()
	if len(items) != 1 {
		t.Fatalf("want 1 diagnostic, got %+v", items)
	}
	if len(items[0].Fixes) == 0 {
		t.Fatalf("no fixes attached to %s", items[0].Code.ID())
	}
	if !items[0].Fixes[0].IsPreferred {
		t.Fatalf("first fix should be preferred: %+v", items[0].Fixes[0])
	}
}

func TestConfigDiagnostics(t *testing.T) {
	issues := []project.ConfigIssue{{Alias: "Functor", Reason: "name conflicts with a built-in kind"}}
	ds := ConfigDiagnostics(issues)
	if len(ds) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(ds))
	}
	if ds[0].Code != diag.RegInvalidConfig {
		t.Fatalf("code = %s, want %s", ds[0].Code.ID(), diag.RegInvalidConfig.ID())
	}
	if ds[0].Severity != diag.SevError {
		t.Fatalf("severity = %v, want error", ds[0].Severity)
	}
}

func TestMaxDiagnosticsDefault(t *testing.T) {
	if got := (Options{}).maxDiagnostics(); got != project.DefaultMaxDiagnostics {
		t.Fatalf("default max = %d, want %d", got, project.DefaultMaxDiagnostics)
	}
	if got := (Options{MaxDiagnostics: 5}).maxDiagnostics(); got != 5 {
		t.Fatalf("explicit max = %d, want 5", got)
	}
}
