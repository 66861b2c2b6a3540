package lsp

import (
	"context"
	"sort"
	"time"

	"kindcheck/internal/diag"
	"kindcheck/internal/driver"
	"kindcheck/internal/fix"
	"kindcheck/internal/kind"
	"kindcheck/internal/source"
)

// fileAnalysis is the per-document result of one analysis pass.
type fileAnalysis struct {
	uri       string
	text      string
	snapshot  int64
	fileID    source.FileID
	result    driver.FileResult
	suggester *fix.Suggester
}

// snapshot is one consistent analysis over every open document. It is
// immutable once built; request handlers read it without locking.
type snapshot struct {
	fs       *source.FileSet
	registry *kind.Registry
	byURI    map[string]*fileAnalysis
}

// analyze checks every open document against a fresh registry. Files
// are checked in URI order so alias declarations resolve the same way
// across runs.
func (s *Server) analyze(ctx context.Context) *snapshot {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	texts := make(map[string]string, len(s.docs))
	snapshots := make(map[string]int64, len(s.docs))
	for uri, doc := range s.docs {
		uris = append(uris, uri)
		texts[uri] = doc.text
		snapshots[uri] = doc.snapshot
	}
	maxDiagnostics := s.maxDiagnostics
	s.mu.Unlock()
	sort.Strings(uris)

	snap := &snapshot{
		fs:       source.NewFileSet(),
		registry: s.newRegistry(),
		byURI:    make(map[string]*fileAnalysis, len(uris)),
	}
	opts := driver.Options{
		Registry:       snap.registry,
		MaxDiagnostics: maxDiagnostics,
		AttachFixes:    true,
	}
	for _, uri := range uris {
		if ctx.Err() != nil {
			return nil
		}
		path := uriToPath(uri)
		if path == "" {
			continue
		}
		id := snap.fs.AddVirtual(path, []byte(texts[uri]))
		res := driver.CheckFile(ctx, snap.fs, id, opts)
		fa := &fileAnalysis{
			uri:      uri,
			text:     texts[uri],
			snapshot: snapshots[uri],
			fileID:   id,
			result:   res,
		}
		if res.File != nil && res.Sema != nil {
			fa.suggester = fix.NewSuggester(res.File, *res.Sema)
		}
		snap.byURI[uri] = fa
	}
	return snap
}

// snapshotFor returns an analysis covering the document's current
// text, reusing the last pass when it is still fresh.
func (s *Server) snapshotFor(ctx context.Context, uri string) (*snapshot, *fileAnalysis) {
	s.mu.Lock()
	doc, open := s.docs[uri]
	last := s.last
	var want int64
	if open {
		want = doc.snapshot
	}
	s.mu.Unlock()
	if !open {
		return nil, nil
	}
	if last != nil {
		if fa, ok := last.byURI[uri]; ok && fa.snapshot == want {
			return last, fa
		}
	}
	snap := s.analyze(ctx)
	if snap == nil {
		return nil, nil
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	fa, ok := snap.byURI[uri]
	if !ok {
		return nil, nil
	}
	return snap, fa
}

func severityNumber(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

// diagnosticsFor converts one file's bag to protocol diagnostics.
func diagnosticsFor(fa *fileAnalysis) []lspDiagnostic {
	if fa == nil || fa.result.Bag == nil {
		return nil
	}
	items := fa.result.Bag.Items()
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, lspDiagnostic{
			Range:    rangeForSpan(fa.text, d.Primary),
			Severity: severityNumber(d.Severity),
			Code:     d.Code.ID(),
			Source:   "kindcheck",
			Message:  d.Message,
		})
	}
	return out
}

func rangeForSpan(text string, sp source.Span) lspRange {
	return lspRange{
		Start: positionForOffset(text, int(sp.Start)),
		End:   positionForOffset(text, int(sp.End)),
	}
}

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := s.latestSeq.Add(1)
	if s.diagCancel != nil {
		s.diagCancel()
		s.diagCancel = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

func (s *Server) runDiagnostics(seq uint64) {
	if seq != s.latestSeq.Load() {
		return
	}
	s.mu.Lock()
	if len(s.docs) == 0 {
		s.mu.Unlock()
		s.clearPublishedDiagnostics()
		return
	}
	base := s.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)
	s.diagCancel = cancel
	s.mu.Unlock()
	defer cancel()

	snap := s.analyze(ctx)
	if snap == nil || seq != s.latestSeq.Load() {
		return
	}

	s.mu.Lock()
	if seq <= s.appliedSeq {
		s.mu.Unlock()
		return
	}
	s.appliedSeq = seq
	s.last = snap
	prev := s.published
	s.published = make(map[string]struct{}, len(snap.byURI))
	for uri := range snap.byURI {
		s.published[uri] = struct{}{}
	}
	trace := s.trace
	s.mu.Unlock()

	uris := make([]string, 0, len(snap.byURI))
	for uri := range snap.byURI {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		list := diagnosticsFor(snap.byURI[uri])
		if err := s.sendPublish(uri, list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
		}
		if trace {
			s.logf("publishDiagnostics: uri=%s diags=%d", uri, len(list))
		}
	}
	for uri := range prev {
		if _, ok := snap.byURI[uri]; ok {
			continue
		}
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	prev := s.published
	s.published = make(map[string]struct{})
	s.last = nil
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
