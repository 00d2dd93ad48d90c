package cascade

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/papercrane/cascade/internal/tersify"
)

// TersifyResult reports one tersify pass: which actions were applied, which
// were skipped for visibility, and which were unknown and excluded.
type TersifyResult struct {
	RunID   string
	File    string
	Report  tersify.Report
	Written bool
}

// Tersify asks the model for surgical edit actions against one document and
// applies them as a sequential fold. The document's baseline is left
// untouched: the next cascade run picks up the tersified content as a
// normal change.
func (e *Engine) Tersify(ctx context.Context, file string) (*TersifyResult, error) {
	doc, err := e.WS.Resolve(file)
	if err != nil {
		return nil, err
	}
	id := doc.Meta.Artifact

	if err := e.acquire(id); err != nil {
		return nil, err
	}
	defer e.release(id)

	res := &TersifyResult{RunID: uuid.NewString(), File: doc.SourceFile}

	msgs, err := buildTersifyPrompt(doc)
	if err != nil {
		return nil, err
	}
	response, err := e.Model.Complete(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.SourceFile, err)
	}

	actions, err := tersify.ParseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.SourceFile, err)
	}

	newBody, report := tersify.Apply(doc.Body, actions)
	res.Report = report

	for _, a := range report.Unknown {
		e.UI.Warn(fmt.Sprintf("unknown edit action %q — not applied", a.Raw))
	}
	for _, a := range report.NotApplied {
		e.UI.Note(fmt.Sprintf("remove from %s: content not found — not applied", a.Target()))
	}

	if len(report.Applied) == 0 {
		e.UI.Info("no edits applied")
		return res, nil
	}

	doc.Body = newBody
	if err := e.WS.WriteDocument(doc); err != nil {
		return nil, err
	}
	res.Written = true
	e.UI.ActionReport(len(report.Applied), len(report.NotApplied), len(report.Unknown), len(report.NoOps))
	return res, nil
}
