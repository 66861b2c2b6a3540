package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"kindcheck/internal/kind"
	"kindcheck/internal/source"
)

// SourceExt is the extension checked files carry.
const SourceExt = ".kd"

// listSourceFiles walks dir and returns the checkable files in
// deterministic path order.
func listSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every source file under dir. Files load and parse
// concurrently; the kind pass runs file by file because alias
// registrations share one registry. Results come back in sorted path
// order.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := listSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	ids := make([]source.FileID, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			return nil, nil, err
		}
		ids[i] = id
	}

	if opts.Registry == nil {
		// One registry per run so aliases declared in one file are
		// visible to the rest.
		opts.Registry = kind.NewBuiltinRegistry()
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]FileResult, len(files))
	states := make([]*parseState, len(files))
	cachedAliases := make([][]CachedAlias, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if res, aliases, ok := cachedResult(fileSet, ids[i], opts); ok {
				results[i] = res
				cachedAliases[i] = aliases
				return nil
			}
			states[i] = parseStage(fileSet, ids[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Registry mutation stays in this sequential loop: cached files
	// replay their alias registrations at the position their check
	// would have run, so warm and cold runs see the same registry.
	for i, st := range states {
		if st == nil {
			if err := replayAliases(opts.Registry, cachedAliases[i]); err != nil {
				st = parseStage(fileSet, ids[i], opts)
				results[i] = checkStage(ctx, st, opts)
			}
			continue
		}
		results[i] = checkStage(ctx, st, opts)
	}
	return fileSet, results, nil
}
