package diag

import (
	"sort"
)

// Bag collects diagnostics for one checking pass. It is owned by that
// pass and cleared (by recreating it) when the next pass starts.
type Bag struct {
	items []Diagnostic
	max   int
	seen  map[Key]struct{}
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   max,
		seen:  make(map[Key]struct{}),
	}
}

// Add appends a diagnostic, honoring the cap. Returns false when the
// cap was reached and the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max != 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	b.seen[d.DedupKey()] = struct{}{}
	return true
}

// AddIfNotDuplicate inserts the diagnostic unless an entry with the
// same dedup key is already present. The first occurrence always wins
// and is never replaced, even if a later duplicate carries different
// message text. Returns true iff newly inserted.
func (b *Bag) AddIfNotDuplicate(d Diagnostic) bool {
	if _, ok := b.seen[d.DedupKey()]; ok {
		return false
	}
	return b.Add(d)
}

// AddManyWithDedup inserts each diagnostic via AddIfNotDuplicate and
// returns how many were actually added.
func (b *Bag) AddManyWithDedup(ds ...Diagnostic) int {
	added := 0
	for _, d := range ds {
		if b.AddIfNotDuplicate(d) {
			added++
		}
	}
	return added
}

// Cap returns the configured maximum.
func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the collected diagnostics.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends diagnostics from another bag, growing the cap if needed.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if newTotal > b.max {
		b.max = newTotal
	}
	for _, d := range other.items {
		b.items = append(b.items, d)
		b.seen[d.DedupKey()] = struct{}{}
	}
}

// Sort orders diagnostics by file, start, end, severity (desc), code
// for stable deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// ValidationStats summarizes duplicate analysis over a diagnostic list.
type ValidationStats struct {
	Total      int
	Duplicates int
	Unique     int
}

// FindDuplicates returns the diagnostics that share a dedup key with an
// earlier entry, in input order.
func FindDuplicates(items []Diagnostic) []Diagnostic {
	seen := make(map[Key]struct{}, len(items))
	var dups []Diagnostic
	for _, d := range items {
		key := d.DedupKey()
		if _, ok := seen[key]; ok {
			dups = append(dups, d)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// Validate reports totals for a diagnostic list. Dedup is stable and
// order-independent: the same multiset of inputs yields the same stats.
func Validate(items []Diagnostic) ValidationStats {
	dups := len(FindDuplicates(items))
	return ValidationStats{
		Total:      len(items),
		Duplicates: dups,
		Unique:     len(items) - dups,
	}
}
