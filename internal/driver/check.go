package driver

import (
	"context"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/fix"
	"kindcheck/internal/kind"
	"kindcheck/internal/parser"
	"kindcheck/internal/project"
	"kindcheck/internal/sema"
	"kindcheck/internal/source"
)

// Options configure a checking run.
type Options struct {
	// Registry carries the session's kind aliases (built-ins plus any
	// manifest registrations). Nil means built-ins only.
	Registry       *kind.Registry
	MaxDiagnostics int
	Jobs           int
	// AttachFixes runs the suggestion engine over the diagnostics.
	AttachFixes bool
	Cache       *DiskCache
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return project.DefaultMaxDiagnostics
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	File   *ast.File
	Bag    *diag.Bag
	Sema   *sema.Result
	// Cached is set when the diagnostics came from the disk cache and
	// no parse or check ran.
	Cached bool
}

// CheckFile runs the full pipeline over one file already in the set:
// parse, kind check, optional fix suggestions. The returned bag is
// sorted and capped at MaxDiagnostics.
func CheckFile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) FileResult {
	if res, aliases, ok := cachedResult(fs, fileID, opts); ok {
		if replayAliases(opts.Registry, aliases) == nil {
			return res
		}
		// A replay conflict means the session registry changed since the
		// payload was written; re-check so the conflict is diagnosed.
	}
	st := parseStage(fs, fileID, opts)
	return checkStage(ctx, st, opts)
}

// parseState carries one file between the parse and check stages.
type parseState struct {
	fileID source.FileID
	path   string
	hash   Digest
	real   bool
	file   *ast.File
	bag    *diag.Bag
}

// cachedResult serves a file from the disk cache when its content hash
// is known there. The returned aliases are the registrations the file
// contributed when it was checked; the caller replays them into the
// session registry in declaration order, so sibling files still resolve
// them on a warm run.
func cachedResult(fs *source.FileSet, fileID source.FileID, opts Options) (FileResult, []CachedAlias, bool) {
	file := fs.Get(fileID)
	if file == nil || opts.Cache == nil {
		return FileResult{}, nil, false
	}
	var payload DiskPayload
	hit, err := opts.Cache.Get(file.Hash, &payload)
	if err != nil || !hit {
		return FileResult{}, nil, false
	}
	bag := bagFromPayload(fileID, &payload, opts.maxDiagnostics())
	bag.Sort()
	return FileResult{
		Path:   file.Path,
		FileID: fileID,
		Bag:    bag,
		Cached: true,
	}, payload.Aliases, true
}

// replayAliases restores a cached file's alias registrations. A nil
// registry means the caller checks each file against its own throwaway
// registry, so there is nothing to restore into. A conflict is returned
// so the caller can fall back to a full re-check.
func replayAliases(registry *kind.Registry, aliases []CachedAlias) error {
	if registry == nil {
		return nil
	}
	for _, a := range aliases {
		if err := registry.Register(a.Name, a.Shape.metadata()); err != nil {
			return err
		}
	}
	return nil
}

// declaredAliases lists the alias registrations a pass produced, in
// declaration order.
func declaredAliases(semaRes *sema.Result) []CachedAlias {
	if semaRes == nil || semaRes.Symbols == nil {
		return nil
	}
	var out []CachedAlias
	for _, sym := range semaRes.Symbols.Visible() {
		if sym.Kind != sema.SymbolAlias {
			continue
		}
		out = append(out, CachedAlias{Name: sym.Name, Shape: shapeFromMetadata(sym.Meta)})
	}
	return out
}

// parseStage parses one file into its own bag. Safe to run for many
// files concurrently: the file set is only read.
func parseStage(fs *source.FileSet, fileID source.FileID, opts Options) *parseState {
	st := &parseState{
		fileID: fileID,
		bag:    diag.NewBag(opts.maxDiagnostics()),
	}
	if file := fs.Get(fileID); file != nil {
		st.path = file.Path
		st.hash = file.Hash
		st.real = file.Flags&source.FileVirtual == 0
	}
	pres := parser.ParseFile(fs, fileID, parser.Options{Reporter: diag.BagReporter{Bag: st.bag}})
	st.file = pres.File
	return st
}

// checkStage runs the kind pass and fix suggestions over a parsed file.
// Alias registrations mutate the shared registry, so this stage is
// sequential across files.
func checkStage(ctx context.Context, st *parseState, opts Options) FileResult {
	res := FileResult{
		Path:   st.path,
		FileID: st.fileID,
		File:   st.file,
	}

	semaRes := sema.Check(st.file, sema.Options{
		Reporter: diag.BagReporter{Bag: st.bag},
		Registry: opts.Registry,
	})
	res.Sema = &semaRes

	bag := st.bag
	if opts.AttachFixes {
		bag = withFixes(ctx, st.file, semaRes, bag, opts.maxDiagnostics())
	}
	bag.Sort()
	res.Bag = bag

	if st.real && opts.Cache != nil && !bag.HasErrors() {
		// Clean and warning-only results are cheap to reuse; error
		// results are re-checked so fixes stay live.
		_ = opts.Cache.Put(st.hash, payloadFromBag(st.path, bag, declaredAliases(res.Sema)))
	}
	return res
}

// withFixes rebuilds the bag with suggestion fixes attached.
func withFixes(ctx context.Context, file *ast.File, semaRes sema.Result, bag *diag.Bag, maxDiagnostics int) *diag.Bag {
	suggester := fix.NewSuggester(file, semaRes)
	enriched := suggester.Enrich(ctx, bag.Items())

	out := diag.NewBag(maxDiagnostics)
	for _, d := range enriched {
		out.Add(d)
	}
	return out
}

// ConfigDiagnostics converts manifest issues into reportable
// diagnostics. They carry no span; formatters render them without a
// source excerpt.
func ConfigDiagnostics(issues []project.ConfigIssue) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(issues))
	for _, issue := range issues {
		out = append(out, diag.NewError(diag.RegInvalidConfig, source.Span{}, issue.String()))
	}
	return out
}
