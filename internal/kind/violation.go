package kind

import (
	"fmt"

	"kindcheck/internal/diag"
	"kindcheck/internal/source"
)

// ViolationKind classifies a kind-compatibility violation.
type ViolationKind uint8

const (
	// ArityMismatch: the constructor takes a different number of
	// parameters than the expected kind.
	ArityMismatch ViolationKind = iota
	// ParameterKindMismatch: a parameter position has the wrong shape.
	ParameterKindMismatch
	// VarianceMismatch: declared variance differs from the expected one.
	VarianceMismatch
	// AliasMismatch: a named alias in the comparison failed to resolve.
	AliasMismatch
)

func (k ViolationKind) String() string {
	switch k {
	case ArityMismatch:
		return "arity-mismatch"
	case ParameterKindMismatch:
		return "parameter-kind-mismatch"
	case VarianceMismatch:
		return "variance-mismatch"
	case AliasMismatch:
		return "alias-mismatch"
	default:
		return "unknown"
	}
}

// DiagCode maps the violation kind onto its stable diagnostic code.
func (k ViolationKind) DiagCode() diag.Code {
	switch k {
	case ArityMismatch:
		return diag.KndArityMismatch
	case ParameterKindMismatch:
		return diag.KndParamKindMismatch
	case VarianceMismatch:
		return diag.KndVarianceMismatch
	case AliasMismatch:
		return diag.KndUnresolvedAlias
	default:
		return diag.UnknownCode
	}
}

// Violation is one kind-compatibility failure at a usage site.
// Candidates is filled by the code-fix engine when replacements are
// requested; the checker leaves it empty.
type Violation struct {
	Kind       ViolationKind
	Expected   *Metadata
	Actual     KindType
	Index      int // parameter index for ParameterKindMismatch / VarianceMismatch
	Alias      string
	Span       source.Span
	Candidates []string
}

// Message renders the human-readable diagnostic text.
func (v Violation) Message() string {
	switch v.Kind {
	case ArityMismatch:
		return fmt.Sprintf("'%s' has arity %d, but a constructor of kind %s (arity %d) is expected",
			v.Actual.Symbol, v.Actual.Arity, v.Expected, v.Expected.Arity)
	case ParameterKindMismatch:
		return fmt.Sprintf("parameter %d of '%s' has kind %s, but %s is expected",
			v.Index+1, v.Actual.Symbol, v.Actual.Params[v.Index], v.Expected.Params[v.Index])
	case VarianceMismatch:
		return fmt.Sprintf("parameter %d of '%s' is declared '%s', but '%s' is expected",
			v.Index+1, v.Actual.Symbol, v.Actual.Variances[v.Index], v.Expected.ParamVariance[v.Index])
	case AliasMismatch:
		return fmt.Sprintf("unresolved kind alias '%s'", v.Alias)
	default:
		return "kind violation"
	}
}
