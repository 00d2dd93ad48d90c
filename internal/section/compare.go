package section

import (
	"fmt"
	"strings"
)

// ChangeSet reports which logical sections differ between two versions of a
// document. It is ephemeral: computed per comparison, never persisted.
type ChangeSet struct {
	// Changed holds the headings of sections whose body text differs,
	// including sections added or removed outright. Order follows the new
	// content; sections present only in the old content come last, in old
	// order.
	Changed []string
	// Summary is a short human-readable description of the change, meant
	// for embedding in a prompt rather than as a patch format.
	Summary string
	// FromBaseline is false when no baseline existed and the entire
	// document was treated as changed.
	FromBaseline bool
}

// Empty reports whether no sections changed.
func (c *ChangeSet) Empty() bool {
	return len(c.Changed) == 0
}

// Compare diffs two versions of a document at section granularity. It never
// fails: malformed markdown degrades to a whole-document comparison via the
// preamble pseudo-section.
func Compare(oldContent, newContent string) *ChangeSet {
	oldDoc := Parse(oldContent)
	newDoc := Parse(newContent)

	oldBodies := bodiesByHeading(oldDoc)
	newBodies := bodiesByHeading(newDoc)

	var changed []string
	if oldDoc.PreambleText != newDoc.PreambleText {
		changed = append(changed, Preamble)
	}
	for _, s := range newDoc.Sections {
		oldBody, existed := oldBodies[s.Heading]
		if !existed || oldBody != s.Body {
			changed = append(changed, s.Heading)
		}
	}
	// Sections removed in the new content still count as changed.
	for _, s := range oldDoc.Sections {
		if _, exists := newBodies[s.Heading]; !exists {
			changed = append(changed, s.Heading)
		}
	}

	added, removed := lineDelta(oldContent, newContent)
	return &ChangeSet{
		Changed:      changed,
		Summary:      summarize(changed, added, removed),
		FromBaseline: true,
	}
}

// FullChange treats the entire document as changed, used when no baseline
// exists. The result is explicitly distinguishable from "no changes" via
// FromBaseline and a non-empty Changed list.
func FullChange(content string) *ChangeSet {
	doc := Parse(content)
	changed := doc.Headings()
	if doc.PreambleText != "" {
		changed = append([]string{Preamble}, changed...)
	}
	if len(changed) == 0 {
		// Even an empty document counts as fully changed on first contact.
		changed = []string{Preamble}
	}
	lines := countLines(content)
	return &ChangeSet{
		Changed:      changed,
		Summary:      fmt.Sprintf("no baseline: full document treated as changed (%d sections, %d lines)", len(changed), lines),
		FromBaseline: false,
	}
}

func bodiesByHeading(d *Doc) map[string]string {
	m := make(map[string]string, len(d.Sections))
	for _, s := range d.Sections {
		m[s.Heading] = s.Body
	}
	return m
}

// lineDelta approximates the added/removed line counts by multiset
// difference of normalized lines. It is descriptive metadata, not a patch.
func lineDelta(oldContent, newContent string) (added, removed int) {
	oldLines := strings.Split(Normalize(oldContent), "\n")
	newLines := strings.Split(Normalize(newContent), "\n")

	counts := make(map[string]int, len(oldLines))
	for _, l := range oldLines {
		counts[l]++
	}
	for _, l := range newLines {
		if counts[l] > 0 {
			counts[l]--
		} else {
			added++
		}
	}
	for _, c := range counts {
		removed += c
	}
	return added, removed
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(Normalize(content), "\n") + 1
}

func summarize(changed []string, added, removed int) string {
	if len(changed) == 0 {
		return "no sections changed"
	}
	return fmt.Sprintf("%d section(s) changed (+%d/-%d lines): %s",
		len(changed), added, removed, strings.Join(changed, ", "))
}
