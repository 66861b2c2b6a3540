package diag

import (
	"kindcheck/internal/source"
)

// Severity ranks how much a diagnostic matters to the run outcome.
// Only SevError affects exit codes and cache eligibility.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the span's current text with NewText. OldText, when
// non-empty, is a guard: the edit is skipped if the file no longer
// contains it at the span.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixApplicability tells the apply pipeline how safe a fix is.
type FixApplicability uint8

const (
	// FixApplicabilityAlwaysSafe fixes can be applied without review.
	FixApplicabilityAlwaysSafe FixApplicability = iota
	// FixApplicabilitySafeWithHeuristics fixes are correct under heuristics.
	FixApplicabilitySafeWithHeuristics
	// FixApplicabilityManualReview fixes need a human look.
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// FixKind classifies a fix for clients that group code actions.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactorRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	}
	return "unknown"
}

// Fix is a ready-to-apply suggestion attached to a diagnostic.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

// Diagnostic is one reported issue with its location and optional fixes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}

// Key is the dedup identity of a diagnostic: file, start, length, code.
// Message text and severity are deliberately excluded, so a rephrased
// duplicate still counts as the same report.
type Key struct {
	File  source.FileID
	Start uint32
	Len   uint32
	Code  Code
}

// DedupKey returns the dedup identity for the diagnostic.
func (d Diagnostic) DedupKey() Key {
	return Key{
		File:  d.Primary.File,
		Start: d.Primary.Start,
		Len:   d.Primary.Len(),
		Code:  d.Code,
	}
}
