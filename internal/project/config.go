package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"kindcheck/internal/kind"
)

// AliasSpec declares one user kind alias in kindcheck.toml.
type AliasSpec struct {
	Arity  int      `toml:"arity"`
	Params []string `toml:"params"`
}

// Config is the parsed kindcheck.toml.
type Config struct {
	Project struct {
		Name           string `toml:"name"`
		MaxDiagnostics int    `toml:"max_diagnostics"`
	} `toml:"project"`
	Aliases map[string]AliasSpec `toml:"aliases"`
}

// DefaultMaxDiagnostics bounds a run when the manifest does not say
// otherwise.
const DefaultMaxDiagnostics = 200

// LoadConfig parses a kindcheck.toml manifest.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Project.MaxDiagnostics <= 0 {
		cfg.Project.MaxDiagnostics = DefaultMaxDiagnostics
	}
	return cfg, nil
}

// ConfigIssue is a problem found while turning manifest aliases into
// registrations. Issues are reported, never fatal: the registry keeps
// every alias that did register.
type ConfigIssue struct {
	Alias  string
	Reason string
}

func (i ConfigIssue) String() string {
	return fmt.Sprintf("alias %q: %s", i.Alias, i.Reason)
}

// BuildRegistry starts from the built-in aliases and registers the
// manifest's on top, in name order for determinism. A negative arity or
// a clash with an existing registration becomes a ConfigIssue.
func BuildRegistry(cfg Config) (*kind.Registry, []ConfigIssue) {
	registry := kind.NewBuiltinRegistry()
	issues := make([]ConfigIssue, 0)

	names := make([]string, 0, len(cfg.Aliases))
	for name := range cfg.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := cfg.Aliases[name]
		if strings.TrimSpace(name) == "" {
			issues = append(issues, ConfigIssue{Alias: name, Reason: "empty alias name"})
			continue
		}
		if spec.Arity < 0 {
			issues = append(issues, ConfigIssue{
				Alias:  name,
				Reason: fmt.Sprintf("negative arity %d", spec.Arity),
			})
			continue
		}
		if len(spec.Params) > spec.Arity {
			issues = append(issues, ConfigIssue{
				Alias:  name,
				Reason: fmt.Sprintf("%d params listed for arity %d", len(spec.Params), spec.Arity),
			})
			continue
		}
		meta := specShape(spec)
		if err := registry.Register(name, meta); err != nil {
			issues = append(issues, ConfigIssue{Alias: name, Reason: err.Error()})
		}
	}
	return registry, issues
}

// specShape converts an alias spec to a kind shape. Parameter names
// reference other aliases and resolve lazily at comparison time; "Type"
// and the empty string both mean the leaf shape.
func specShape(spec AliasSpec) *kind.Metadata {
	params := make([]*kind.Metadata, 0, spec.Arity)
	for i := 0; i < spec.Arity; i++ {
		var ref string
		if i < len(spec.Params) {
			ref = strings.TrimSpace(spec.Params[i])
		}
		if ref == "" || ref == "Type" {
			params = append(params, kind.Leaf())
			continue
		}
		p := kind.Leaf()
		p.ConstraintTag = ref
		params = append(params, p)
	}
	return kind.NewMetadata(spec.Arity, params...)
}
