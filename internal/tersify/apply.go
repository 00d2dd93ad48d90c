package tersify

import (
	"strings"

	"github.com/papercrane/cascade/internal/section"
)

// Report accounts for every action in a batch. Unknown actions are never
// executed; not-applied removals are surfaced for visibility rather than
// treated as errors, since a prior action in the same batch may already
// have removed the content.
type Report struct {
	Applied    []Action
	NotApplied []Action // RemoveFrom whose content was not found verbatim
	Unknown    []Action
	NoOps      []Action // explicit None directives
}

// Apply runs a batch of actions against a markdown body. Actions are
// applied in model order; each operates on the document as mutated by all
// prior actions in the batch (a sequential fold, not independent patches).
// The input is never mutated on classification failures alone.
func Apply(body string, actions []Action) (string, Report) {
	doc := section.Parse(body)
	var rep Report

	for _, a := range actions {
		switch a.Kind {
		case KindRemoveFrom:
			if removeFrom(doc, a) {
				rep.Applied = append(rep.Applied, a)
			} else {
				rep.NotApplied = append(rep.NotApplied, a)
			}
		case KindAddTo:
			addTo(doc, a)
			rep.Applied = append(rep.Applied, a)
		case KindNone:
			rep.NoOps = append(rep.NoOps, a)
		case KindUnknown:
			rep.Unknown = append(rep.Unknown, a)
		}
	}

	return doc.Serialize(), rep
}

// removeFrom deletes the action's content verbatim from the addressed
// section. Returns false when the section or the content is absent; a
// missing match is a no-op, never an error.
func removeFrom(doc *section.Doc, a Action) bool {
	sec, ok := doc.Find(a.Primary)
	if !ok {
		return false
	}

	if a.Secondary == "" {
		body, removed := removeVerbatim(sec.Body, a.Content)
		if removed {
			sec.Body = body
		}
		return removed
	}

	// Constrain the removal to the named sub-heading so sibling content
	// stays untouched.
	start, end, ok := section.SubRange(sec.Body, a.Secondary)
	if !ok {
		return false
	}
	sub := sec.Body[start:end]
	newSub, removed := removeVerbatim(sub, a.Content)
	if !removed {
		return false
	}
	sec.Body = sec.Body[:start] + newSub + sec.Body[end:]
	return true
}

// removeVerbatim deletes the first verbatim occurrence of content and
// tidies the blank lines left behind.
func removeVerbatim(body, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return body, false
	}
	idx := strings.Index(body, content)
	if idx < 0 {
		return body, false
	}
	out := body[:idx] + body[idx+len(content):]
	return collapseBlanks(out), true
}

// addTo appends content at the end of the addressed section, creating the
// section at the end of the document when the heading has no exact
// case-sensitive match. Guessing a fuzzy target risks editing the wrong
// section, so a mismatch always means "create".
func addTo(doc *section.Doc, a Action) {
	content := strings.TrimSpace(a.Content)

	sec, ok := doc.Find(a.Primary)
	if !ok {
		// A clarifications alias may already exist under its canonical
		// heading (e.g. created earlier in the same batch).
		sec, ok = doc.Find(canonicalHeading(a.Primary))
	}
	if !ok {
		doc.AppendSection(canonicalHeading(a.Primary), "\n"+content+"\n")
		return
	}

	if a.Secondary != "" {
		if start, end, found := section.SubRange(sec.Body, a.Secondary); found {
			sub := strings.TrimRight(sec.Body[start:end], "\n")
			sec.Body = sec.Body[:start] + sub + "\n\n" + content + "\n" + sec.Body[end:]
			return
		}
		// Sub-heading absent: create it at the end of the primary section.
		sec.Body = strings.TrimRight(sec.Body, "\n") + "\n\n### " + a.Secondary + "\n\n" + content + "\n"
		return
	}

	sec.Body = strings.TrimRight(sec.Body, "\n") + "\n\n" + content + "\n"
}

// CanonicalClarifications is the heading used when an AddTo targets a
// clarifications/questions section that does not exist yet.
const CanonicalClarifications = "Clarifications"

// clarificationAliases are the target names normalized to the canonical
// clarifications heading when the section has to be created.
var clarificationAliases = map[string]bool{
	"clarifications":        true,
	"clarification":         true,
	"open questions":        true,
	"questions":             true,
	"clarifying questions":  true,
	"outstanding questions": true,
}

func canonicalHeading(name string) string {
	if clarificationAliases[strings.ToLower(strings.TrimSpace(name))] {
		return CanonicalClarifications
	}
	return name
}

// collapseBlanks trims the blank-line runs a removal leaves behind.
func collapseBlanks(body string) string {
	return section.Normalize(body)
}
