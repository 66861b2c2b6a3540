package diag

import "kindcheck/internal/source"

// DedupReporter wraps another Reporter and suppresses duplicates of the
// same (file, start, length, code). Kind violations are rediscovered
// whenever they propagate from a usage site to every enclosing parent
// site; this filter makes each site report once. First occurrence wins.
type DedupReporter struct {
	next Reporter
	seen map[Key]struct{}
}

// NewDedupReporter returns a Reporter that forwards only the first
// diagnostic for each dedup key.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[Key]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil {
		return
	}
	key := Key{
		File:  primary.File,
		Start: primary.Start,
		Len:   primary.Len(),
		Code:  code,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}

// Seen reports how many distinct keys have passed through.
func (r *DedupReporter) Seen() int {
	if r == nil {
		return 0
	}
	return len(r.seen)
}
