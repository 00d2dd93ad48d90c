// Package section provides a structural model of markdown documents as an
// ordered sequence of named sections, plus a diff engine that reports which
// sections changed between two versions of a document.
package section

import (
	"fmt"
	"strings"
)

// Preamble is the pseudo-heading used for content that appears before the
// first ## heading (typically the title line). It lets callers address and
// diff the leading block without inventing a heading for it.
const Preamble = "(preamble)"

// Section is one ## heading and everything beneath it up to the next
// ## heading. Nested ### sub-headings stay inside Body; use SubBody to
// address them individually.
type Section struct {
	Heading string // heading text without the leading markers
	Level   int    // 2 for ## sections; the preamble uses 0
	Body    string // raw content after the heading line, normalized
}

// Doc is a parsed document: the preamble plus sections in file order.
type Doc struct {
	PreambleText string
	Sections     []Section
}

// Normalize canonicalizes whitespace: CRLF to LF, trailing spaces trimmed
// per line, and runs of three or more blank lines collapsed to two.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Parse splits content into a preamble and ## sections. It never fails:
// content with no ## headings at all becomes a Doc whose entire text is the
// preamble, so callers always get something diffable.
func Parse(content string) *Doc {
	content = Normalize(content)
	lines := strings.Split(content, "\n")

	doc := &Doc{}
	var cur *Section
	var buf []string

	flush := func() {
		body := strings.Join(buf, "\n")
		if cur == nil {
			doc.PreambleText = body
		} else {
			cur.Body = body
			doc.Sections = append(doc.Sections, *cur)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if heading, ok := parseHeading(line, 2); ok {
			flush()
			cur = &Section{Heading: heading, Level: 2}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return doc
}

// parseHeading reports whether line is a markdown heading of exactly the
// given level, returning the heading text.
func parseHeading(line string, level int) (string, bool) {
	marker := strings.Repeat("#", level)
	if !strings.HasPrefix(line, marker+" ") {
		return "", false
	}
	// Reject deeper headings: "### x" is not a level-2 heading.
	if strings.HasPrefix(line, marker+"#") {
		return "", false
	}
	return strings.TrimSpace(line[len(marker)+1:]), true
}

// Serialize renders the document back to markdown. Parse followed by
// Serialize round-trips any well-formed input modulo Normalize.
func (d *Doc) Serialize() string {
	var b strings.Builder
	b.WriteString(d.PreambleText)
	for i, s := range d.Sections {
		if i > 0 || d.PreambleText != "" {
			b.WriteString("\n")
		}
		b.WriteString("## " + s.Heading)
		if s.Body != "" {
			b.WriteString("\n" + s.Body)
		}
	}
	return b.String()
}

// Find returns the section with the given heading, matched case-sensitively.
// Lookup ignores section order.
func (d *Doc) Find(heading string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Heading == heading {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// SubBody returns the body of a ### sub-heading inside the named primary
// section. The boolean reports whether both the primary section and the
// sub-heading exist.
func (d *Doc) SubBody(primary, secondary string) (string, bool) {
	sec, ok := d.Find(primary)
	if !ok {
		return "", false
	}
	start, end, ok := SubRange(sec.Body, secondary)
	if !ok {
		return "", false
	}
	body := sec.Body[start:end]
	// Drop the heading line itself.
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		return body[idx+1:], true
	}
	return "", true
}

// SubRange locates the byte range of a ### sub-heading block (heading line
// through the end of its content) inside a primary section body.
func SubRange(body, secondary string) (int, int, bool) {
	lines := strings.Split(body, "\n")
	start := -1
	offset := 0
	for _, line := range lines {
		if heading, ok := parseHeading(line, 3); ok {
			if start >= 0 {
				return start, offset - 1, true
			}
			if heading == secondary {
				start = offset
			}
		}
		offset += len(line) + 1
	}
	if start >= 0 {
		return start, len(body), true
	}
	return 0, 0, false
}

// Headings returns the section headings in file order.
func (d *Doc) Headings() []string {
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s.Heading)
	}
	return out
}

// AppendSection adds a new section with the given heading at the end of the
// document. The heading is used verbatim; callers decide canonical names.
func (d *Doc) AppendSection(heading, body string) *Section {
	d.Sections = append(d.Sections, Section{Heading: heading, Level: 2, Body: body})
	return &d.Sections[len(d.Sections)-1]
}

// String implements fmt.Stringer for debugging.
func (s Section) String() string {
	return fmt.Sprintf("## %s (%d bytes)", s.Heading, len(s.Body))
}
