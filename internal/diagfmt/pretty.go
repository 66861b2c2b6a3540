package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kindcheck/internal/diag"
	"kindcheck/internal/source"
)

// Pretty renders diagnostics for a terminal. The bag is expected to be
// sorted already. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the offending source line with a caret underline, then
// notes and fix titles when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.printDiagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	noteColor = color.New(color.FgBlue)
	spotColor = color.New(color.FgGreen, color.Bold)
)

func (p prettyPrinter) printDiagnostic(d diag.Diagnostic) {
	start, _ := p.fs.Resolve(d.Primary)
	head := fmt.Sprintf("%s:%d:%d: %s %s: %s",
		p.path(d.Primary.File), start.Line, start.Col,
		p.severity(d.Severity), d.Code.ID(), d.Message)
	fmt.Fprintln(p.w, p.truncate(head))

	p.printUnderline(d.Primary)

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			nStart, _ := p.fs.Resolve(n.Span)
			line := fmt.Sprintf("  %s: %s:%d:%d: %s",
				p.colored(noteColor, "note"),
				p.path(n.Span.File), nStart.Line, nStart.Col, n.Msg)
			fmt.Fprintln(p.w, p.truncate(line))
		}
	}
	if p.opts.ShowFixes {
		for _, f := range d.Fixes {
			marker := "fix"
			if f.IsPreferred {
				marker = "fix*"
			}
			fmt.Fprintf(p.w, "  %s: %s\n", p.colored(noteColor, marker), f.Title)
			if p.opts.ShowPreview {
				p.printFixPreview(f)
			}
		}
	}
}

// printUnderline shows the source line with a caret run under the span.
// Width is computed per rune so wide characters stay aligned.
func (p prettyPrinter) printUnderline(sp source.Span) {
	file := p.fs.Get(sp.File)
	if file == nil {
		return
	}
	start, end := p.fs.Resolve(sp)
	text := file.GetLine(start.Line)
	if text == "" {
		return
	}

	fmt.Fprintf(p.w, "  %s\n", p.truncate(text))

	prefix := text
	if int(start.Col-1) <= len(text) {
		prefix = text[:start.Col-1]
	}
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))

	span := text
	if start.Line == end.Line && int(end.Col-1) <= len(text) && end.Col >= start.Col {
		span = text[start.Col-1 : end.Col-1]
	} else if int(start.Col-1) <= len(text) {
		span = text[start.Col-1:]
	}
	width := runewidth.StringWidth(span)
	if width < 1 {
		width = 1
	}
	marks := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(p.w, "  %s\n", p.colored(spotColor, p.truncate(pad+marks)))
}

func (p prettyPrinter) printFixPreview(f diag.Fix) {
	for _, edit := range f.Edits {
		preview, err := buildFixEditPreview(p.fs, edit)
		if err != nil {
			continue
		}
		for _, line := range preview.before {
			fmt.Fprintf(p.w, "    - %s\n", p.truncate(line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(p.w, "    + %s\n", p.truncate(line))
		}
	}
}

func (p prettyPrinter) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.colored(errColor, sev.String())
	case diag.SevWarning:
		return p.colored(warnColor, sev.String())
	default:
		return p.colored(infoColor, sev.String())
	}
}

func (p prettyPrinter) colored(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	return c.Sprint(s)
}

func (p prettyPrinter) path(id source.FileID) string {
	file := p.fs.Get(id)
	if file == nil {
		return "<unknown>"
	}
	return file.FormatPath(p.opts.PathMode.formatMode(), p.fs.BaseDir())
}

func (p prettyPrinter) truncate(s string) string {
	if p.opts.Width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(p.opts.Width), "…")
}
