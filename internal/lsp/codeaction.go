package lsp

import (
	"encoding/json"

	"kindcheck/internal/diag"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	_, fa := s.snapshotFor(s.ctx(), uri)
	if fa == nil || fa.result.Bag == nil {
		return s.sendResponse(msg.ID, []codeAction{})
	}

	start := offsetForPosition(fa.text, params.Range.Start)
	end := offsetForPosition(fa.text, params.Range.End)

	actions := make([]codeAction, 0, 4)
	fixable := 0
	for _, d := range fa.result.Bag.Items() {
		if int(d.Primary.End) < start || int(d.Primary.Start) > end {
			continue
		}
		if len(d.Fixes) > 0 {
			fixable++
		}
		for _, f := range d.Fixes {
			actions = append(actions, s.actionForFix(fa, uri, d, f))
		}
	}

	// More than one fixable site in range gets an aggregate action.
	if fixable > 1 && fa.suggester != nil {
		if all, ok := fa.suggester.FixAll(s.ctx(), fa.result.Bag.Items()); ok {
			action := s.actionForFix(fa, uri, diag.Diagnostic{}, all)
			action.Kind = "source.fixAll"
			action.Diagnostics = nil
			actions = append(actions, action)
		}
	}
	return s.sendResponse(msg.ID, actions)
}

func (s *Server) actionForFix(fa *fileAnalysis, uri string, d diag.Diagnostic, f diag.Fix) codeAction {
	edits := make([]textEdit, 0, len(f.Edits))
	for _, e := range f.Edits {
		edits = append(edits, textEdit{
			Range:   rangeForSpan(fa.text, e.Span),
			NewText: e.NewText,
		})
	}
	action := codeAction{
		Title:       f.Title,
		Kind:        f.Kind.String(),
		IsPreferred: f.IsPreferred,
		Edit: &workspaceEdit{
			Changes: map[string][]textEdit{uri: edits},
		},
	}
	if d.Code != 0 {
		action.Diagnostics = []lspDiagnostic{{
			Range:    rangeForSpan(fa.text, d.Primary),
			Severity: severityNumber(d.Severity),
			Code:     d.Code.ID(),
			Source:   "kindcheck",
			Message:  d.Message,
		}}
	}
	return action
}
