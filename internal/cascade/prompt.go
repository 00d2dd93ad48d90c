package cascade

import (
	"fmt"
	"strings"

	"github.com/papercrane/cascade/internal/artifact"
	"github.com/papercrane/cascade/internal/llm"
	"github.com/papercrane/cascade/internal/section"
)

// cascadeSystemPrompt frames regeneration: incorporate the detected change,
// preserve unrelated content and the structural schema.
const cascadeSystemPrompt = `You are a technical writer maintaining a chain of
specification documents. Each document starts with a +++ TOML metadata block
(artifact, phase, depends-on, references, version, last-updated), followed by
a title line and ## sections.

You will be given an upstream document that changed, the downstream document
that must be brought in line with it, and a summary of what changed.

Rewrite the downstream document so it incorporates the upstream change.
Rules:
- Keep the +++ metadata block intact. Never change the artifact or phase
  fields.
- Preserve all sections and content unrelated to the change.
- Keep every [NEEDS CLARIFICATION: ...] marker that is still unresolved.
- Return ONLY the complete updated document, no commentary.`

// buildCascadePrompt assembles the turns for regenerating one downstream
// document: full upstream content, full dependent content, and the change
// summary, in that order.
func buildCascadePrompt(upstream, dep *artifact.Document, changes *section.ChangeSet) ([]llm.Message, error) {
	upstreamContent, err := upstream.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing upstream document: %w", err)
	}
	depContent, err := dep.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing dependent document: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Upstream document (%s, phase %s):\n\n%s\n\n",
		upstream.SourceFile, upstream.Meta.Phase, upstreamContent)
	fmt.Fprintf(&b, "Downstream document to update (%s, phase %s):\n\n%s\n\n",
		dep.SourceFile, dep.Meta.Phase, depContent)
	fmt.Fprintf(&b, "Detected change in the upstream document: %s\n", changes.Summary)
	if open := artifact.Clarifications(dep.Body); len(open) > 0 {
		fmt.Fprintf(&b, "\nThe downstream document has %d open clarification(s); leave them marked unless the upstream change resolves one.\n", len(open))
	}
	b.WriteString("\nProduce the complete updated downstream document now.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: cascadeSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}, nil
}

// tersifySystemPrompt frames the surgical-edit mode: a constrained action
// vocabulary instead of a full rewrite.
const tersifySystemPrompt = `You are tightening a specification document.
Propose surgical edits using ONLY this action vocabulary:

- "Remove from <Section>" or "Remove from <Section> / <Sub-heading>":
  delete redundant or obsolete content, quoted verbatim.
- "Add to <Section>" or "Add to <Section> / <Sub-heading>":
  add clarifying content; the section is created if it does not exist.
- "None": the document needs no changes.

Respond with a JSON array only, no commentary:
[{"action": "Remove from Overview", "content": "<exact text to remove>"},
 {"action": "Add to Clarifications", "content": "<text to add>"}]`

// buildTersifyPrompt assembles the turns for a tersify pass over one
// document.
func buildTersifyPrompt(doc *artifact.Document) ([]llm.Message, error) {
	content, err := doc.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	user := fmt.Sprintf("Document (%s, phase %s):\n\n%s\n\nPropose edit actions now.",
		doc.SourceFile, doc.Meta.Phase, content)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: tersifySystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

// stripDocumentFences removes a markdown code fence a model may wrap a full
// document response in.
func stripDocumentFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
