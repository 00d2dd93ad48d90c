package artifact

import (
	"regexp"
	"strings"
)

// mentionRegex matches an @-prefixed artifact mention. The captured token may
// include dots and hyphens; trailing sentence punctuation is stripped after
// capture so "@geode-pyrite.req." yields "geode-pyrite.req".
var mentionRegex = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9.\-]*)`)

// sentencePunct is the set of characters stripped from the end of a captured
// mention token.
const sentencePunct = ".,;:!?"

// Ref is a parsed mention or declared reference token.
type Ref struct {
	ID       string // bare artifact id
	Phase    Phase  // resolved phase when a suffix was present
	HasPhase bool
	// Extra holds qualifiers beyond id.phase (e.g. "geode.req.v2" → "v2").
	// A non-empty Extra marks an over-specified reference that should be
	// normalized to the bare form, not a hard error.
	Extra string
}

// Token renders the canonical bare form of the reference.
func (r Ref) Token() string {
	if r.HasPhase {
		return r.ID + "." + r.Phase.Suffix()
	}
	return r.ID
}

// ParseRef splits a reference token into id, optional phase suffix, and any
// over-specified trailing qualifiers.
func ParseRef(token string) Ref {
	parts := strings.Split(token, ".")
	ref := Ref{ID: parts[0]}
	if len(parts) == 1 {
		return ref
	}
	if phase, ok := PhaseFromSuffix(parts[1]); ok {
		ref.Phase = phase
		ref.HasPhase = true
		if len(parts) > 2 {
			ref.Extra = strings.Join(parts[2:], ".")
		}
		return ref
	}
	// Second component is not a phase suffix; treat everything after the id
	// as an unrecognized qualifier.
	ref.Extra = strings.Join(parts[1:], ".")
	return ref
}

// ExtractMentions scans body text for @mentions and returns the captured
// tokens with trailing punctuation excluded, duplicates removed, and
// first-seen order preserved.
func ExtractMentions(body string) []string {
	matches := mentionRegex.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		token := strings.TrimRight(m[1], sentencePunct)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

// clarificationRegex matches inline open-question markers.
var clarificationRegex = regexp.MustCompile(`\[NEEDS CLARIFICATION:([^\]]*)\]`)

// Clarifications returns the open-question texts embedded in the body.
// Sections carrying one are provisional: downstream regeneration should
// flag rather than resolve them.
func Clarifications(body string) []string {
	matches := clarificationRegex.FindAllStringSubmatch(body, -1)
	var out []string
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
