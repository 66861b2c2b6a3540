package driver

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"kindcheck/internal/ast"
	"kindcheck/internal/diag"
	"kindcheck/internal/kind"
	"kindcheck/internal/source"
)

// Current schema version - increment when DiskPayload format changes.
const diskCacheSchemaVersion uint16 = 2

// Digest keys the disk cache by file content hash.
type Digest = [32]byte

// DiskCache stores per-file diagnostics keyed by content hash, so an
// unchanged file skips parsing and checking on the next run.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedDiagnostic is one diagnostic flattened for serialization.
// Fixes are rebuilt on demand, never cached.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
}

// CachedShape is one kind shape flattened for serialization.
type CachedShape struct {
	Arity    int
	Params   []CachedShape
	Variance []uint8
	Tag      string
}

func shapeFromMetadata(m *kind.Metadata) CachedShape {
	if m == nil {
		return CachedShape{}
	}
	s := CachedShape{Arity: m.Arity, Tag: m.ConstraintTag}
	if len(m.Params) > 0 {
		s.Params = make([]CachedShape, len(m.Params))
		for i, p := range m.Params {
			s.Params[i] = shapeFromMetadata(p)
		}
	}
	if len(m.ParamVariance) > 0 {
		s.Variance = make([]uint8, len(m.ParamVariance))
		for i, v := range m.ParamVariance {
			s.Variance[i] = uint8(v)
		}
	}
	return s
}

func (s CachedShape) metadata() *kind.Metadata {
	params := make([]*kind.Metadata, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.metadata()
	}
	m := kind.NewMetadata(s.Arity, params...)
	m.ConstraintTag = s.Tag
	if len(s.Variance) > 0 {
		vs := make([]ast.Variance, len(s.Variance))
		for i, v := range s.Variance {
			vs[i] = ast.Variance(v)
		}
		m.ParamVariance = vs
	}
	return m
}

// CachedAlias records one alias registration the file contributed, so a
// warm run can replay it into the session registry without re-checking.
type CachedAlias struct {
	Name  string
	Shape CachedShape
}

// DiskPayload stores the cached result for one file.
type DiskPayload struct {
	Schema      uint16
	Path        string
	Diagnostics []CachedDiagnostic
	Aliases     []CachedAlias
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit
// directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache. The payload's
// schema field is stamped here.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	// Atomic replace.
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a payload from the disk cache. A missing entry or a schema
// mismatch is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// payloadFromBag flattens a bag and the file's alias registrations for
// caching.
func payloadFromBag(path string, bag *diag.Bag, aliases []CachedAlias) *DiskPayload {
	items := bag.Items()
	out := &DiskPayload{
		Path:        path,
		Diagnostics: make([]CachedDiagnostic, 0, len(items)),
		Aliases:     aliases,
	}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		})
	}
	return out
}

// bagFromPayload rebuilds a bag against the file's current identity.
func bagFromPayload(fileID source.FileID, payload *DiskPayload, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	for _, d := range payload.Diagnostics {
		bag.Add(diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{File: fileID, Start: d.Start, End: d.End},
		})
	}
	return bag
}
