package kind

import (
	"fmt"
)

// ConflictError reports an attempt to re-register a name with a
// different shape. It is fatal only at registry-initialization time.
type ConflictError struct {
	Name     string
	Existing *Metadata
	Incoming *Metadata
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("kind registry conflict: %q is already registered as %s, refusing %s",
		e.Name, e.Existing, e.Incoming)
}

// LookupState discriminates lookup outcomes.
type LookupState uint8

const (
	// LookupNotFound means the name is not registered.
	LookupNotFound LookupState = iota
	// LookupOk carries valid metadata.
	LookupOk
	// LookupInvalid means the name resolved to unusable metadata.
	LookupInvalid
)

// LookupResult is an explicit result type so callers cannot mistake a
// missing entry for valid data.
type LookupResult struct {
	State  LookupState
	Meta   *Metadata
	Reason string // set for LookupInvalid
}

// Ok reports whether the lookup produced usable metadata.
func (r LookupResult) Ok() bool { return r.State == LookupOk }

// Entry pairs a registered name with its shape and declaration order.
type Entry struct {
	Name  string
	Meta  *Metadata
	Order int
}

// Registry maps alias names to kind shapes. One instance is constructed
// per checking session and injected where needed; there is no process
// global, so independent sessions never cross-contaminate. Entries are
// immutable after registration.
type Registry struct {
	entries map[string]*Entry
	ordered []*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// NewBuiltinRegistry returns a registry preloaded with the built-in
// aliases. It never fails: the built-in table is conflict-free.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, b := range Builtins() {
		if err := r.Register(b.Name, b.Meta); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a name → shape mapping. Re-registering an identical
// shape is a no-op; a differing shape returns *ConflictError.
func (r *Registry) Register(name string, meta *Metadata) error {
	if existing, ok := r.entries[name]; ok {
		if existing.Meta.Equal(meta) {
			return nil
		}
		return &ConflictError{Name: name, Existing: existing.Meta, Incoming: meta}
	}
	e := &Entry{Name: name, Meta: meta, Order: len(r.ordered)}
	r.entries[name] = e
	r.ordered = append(r.ordered, e)
	return nil
}

// Lookup resolves a name to its shape.
func (r *Registry) Lookup(name string) LookupResult {
	e, ok := r.entries[name]
	if !ok {
		return LookupResult{State: LookupNotFound}
	}
	if e.Meta == nil {
		return LookupResult{State: LookupInvalid, Reason: "entry has no metadata"}
	}
	return LookupResult{State: LookupOk, Meta: e.Meta}
}

// Entries returns all registered entries in declaration order. The
// returned slice is shared; callers must not modify it.
func (r *Registry) Entries() []*Entry {
	return r.ordered
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.ordered)
}
