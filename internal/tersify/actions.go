// Package tersify interprets the constrained edit-action vocabulary a model
// may return instead of a full document replacement, and applies those
// actions to a markdown document without corrupting its structure.
//
// Model output is untrusted: anything outside the known verb set is
// classified Unknown and reported, never applied and never fatal.
package tersify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set of edit action variants. Dispatch over Kind is
// exhaustive at the application site; there is no open-ended string
// dispatch anywhere downstream of classification.
type Kind int

const (
	// KindUnknown covers any action string not matching a known verb.
	KindUnknown Kind = iota
	// KindRemoveFrom deletes verbatim content from a named section.
	KindRemoveFrom
	// KindAddTo appends content to a named section, creating it if absent.
	KindAddTo
	// KindNone is an explicit no-op: the document requires no change.
	KindNone
)

// String returns the canonical verb for the kind.
func (k Kind) String() string {
	switch k {
	case KindRemoveFrom:
		return "Remove from"
	case KindAddTo:
		return "Add to"
	case KindNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Action is one parsed edit directive. Ephemeral: produced from model
// output, consumed by Apply, never persisted.
type Action struct {
	Kind      Kind
	Raw       string // the original action string, kept for reporting
	Primary   string // target section heading
	Secondary string // optional sub-heading, from "Primary / Secondary"
	Content   string // content to remove or add
}

// Target renders the section path for display.
func (a Action) Target() string {
	if a.Secondary != "" {
		return a.Primary + " / " + a.Secondary
	}
	return a.Primary
}

// verbs maps lowercase verb prefixes to kinds. "None" is handled separately
// since it takes no target.
var verbs = []struct {
	prefix string
	kind   Kind
}{
	{"remove from", KindRemoveFrom},
	{"add to", KindAddTo},
}

// Classify determines the action kind from a raw action string.
func Classify(action string) Kind {
	s := strings.TrimSpace(action)
	if strings.EqualFold(s, "None") {
		return KindNone
	}
	lower := strings.ToLower(s)
	for _, v := range verbs {
		if strings.HasPrefix(lower, v.prefix+" ") {
			return v.kind
		}
	}
	return KindUnknown
}

// ActionName returns the canonical verb recognized in the action string, or
// "Unknown". Pure string extraction, no side effects.
func ActionName(action string) string {
	return Classify(action).String()
}

// ActionTarget returns whatever follows the recognized verb phrase, trimmed.
// Unknown and None actions have no target.
func ActionTarget(action string) string {
	s := strings.TrimSpace(action)
	lower := strings.ToLower(s)
	for _, v := range verbs {
		if strings.HasPrefix(lower, v.prefix+" ") {
			return strings.TrimSpace(s[len(v.prefix)+1:])
		}
	}
	return ""
}

// ParseAction builds an Action from a raw action string and its content.
func ParseAction(action, content string) Action {
	a := Action{
		Kind:    Classify(action),
		Raw:     strings.TrimSpace(action),
		Content: content,
	}
	if target := ActionTarget(action); target != "" {
		primary, secondary, found := strings.Cut(target, " / ")
		a.Primary = strings.TrimSpace(primary)
		if found {
			a.Secondary = strings.TrimSpace(secondary)
		}
	}
	return a
}

// rawAction is the wire shape the model is asked to return.
type rawAction struct {
	Action  string `json:"action"`
	Content string `json:"content"`
}

// ParseResponse interprets a model response as a JSON array of edit
// directives. Code fences around the JSON are tolerated; anything that does
// not decode is an error the caller reports per document.
func ParseResponse(raw string) ([]Action, error) {
	payload := stripFences(raw)

	var rawActions []rawAction
	if err := json.Unmarshal([]byte(payload), &rawActions); err != nil {
		return nil, fmt.Errorf("decoding edit actions: %w", err)
	}

	actions := make([]Action, 0, len(rawActions))
	for _, ra := range rawActions {
		actions = append(actions, ParseAction(ra.Action, ra.Content))
	}
	return actions, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, from a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		if first := strings.TrimSpace(s[:idx]); first == "" || isLangTag(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isLangTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
