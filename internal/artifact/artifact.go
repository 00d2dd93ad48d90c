// Package artifact models the markdown documents that make up a workspace:
// TOML frontmatter metadata, the Requirement → Design → Implementation phase
// chain, and the in-text @mention reference syntax.
package artifact

import (
	"errors"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papercrane/cascade/internal/section"
)

// Sentinel errors for document parsing and identity checks.
var (
	// ErrNoFrontmatter indicates the document does not start with a +++ block.
	ErrNoFrontmatter = errors.New("document has no +++ frontmatter block")
	// ErrMalformedMeta indicates the frontmatter block is not valid TOML.
	ErrMalformedMeta = errors.New("malformed metadata block")
	// ErrUnknownPhase indicates a phase value outside requirement/design/implementation.
	ErrUnknownPhase = errors.New("unknown phase")
	// ErrIdentityMismatch indicates the artifact field disagrees with the filename.
	ErrIdentityMismatch = errors.New("artifact id does not match filename")
)

// Phase is one ordered stage in an artifact's document lifecycle.
type Phase string

const (
	PhaseRequirement    Phase = "requirement"
	PhaseDesign         Phase = "design"
	PhaseImplementation Phase = "implementation"
)

// PhaseOrder lists the phases in cascade order. Implementation is terminal.
var PhaseOrder = []Phase{PhaseRequirement, PhaseDesign, PhaseImplementation}

// suffixes maps each phase to its filename and mention suffix.
var suffixes = map[Phase]string{
	PhaseRequirement:    "req",
	PhaseDesign:         "design",
	PhaseImplementation: "impl",
}

// Suffix returns the short form used in filenames and mentions.
func (p Phase) Suffix() string {
	return suffixes[p]
}

// Valid reports whether p is a recognized phase.
func (p Phase) Valid() bool {
	_, ok := suffixes[p]
	return ok
}

// Downstream returns the phases that follow p in cascade order.
// Implementation returns nil: changes there never cascade further.
func (p Phase) Downstream() []Phase {
	for i, ph := range PhaseOrder {
		if ph == p {
			return PhaseOrder[i+1:]
		}
	}
	return nil
}

// PhaseFromSuffix resolves a short suffix ("req", "design", "impl") back to
// its phase.
func PhaseFromSuffix(s string) (Phase, bool) {
	for p, suf := range suffixes {
		if suf == s {
			return p, true
		}
	}
	return "", false
}

// Metadata is the frontmatter block at the top of every artifact document.
type Metadata struct {
	Artifact    string   `toml:"artifact"`
	Phase       Phase    `toml:"phase"`
	DependsOn   []string `toml:"depends-on"`
	References  []string `toml:"references"`
	Version     string   `toml:"version"`
	LastUpdated string   `toml:"last-updated"`
}

// Document is one parsed artifact file: metadata plus markdown body.
type Document struct {
	Meta       Metadata
	Body       string // markdown after the frontmatter, normalized
	SourceFile string // relative filename for error context; may be empty
}

// Filename returns the canonical filename for an artifact/phase pair.
func Filename(id string, phase Phase) string {
	return id + "." + phase.Suffix() + ".md"
}

// ParseFilename extracts (artifact id, phase) from a canonical filename.
func ParseFilename(name string) (string, Phase, bool) {
	if !strings.HasSuffix(name, ".md") {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, ".md")
	idx := strings.LastIndexByte(stem, '.')
	if idx <= 0 {
		return "", "", false
	}
	phase, ok := PhaseFromSuffix(stem[idx+1:])
	if !ok {
		return "", "", false
	}
	return stem[:idx], phase, true
}

// Parse reads a document from raw file content. A missing or malformed
// frontmatter block is not fatal: the returned Document carries the full
// content as its body so section-level diffing still works, and the error
// (wrapping ErrNoFrontmatter or ErrMalformedMeta) tells the caller the
// metadata is untrustworthy.
func Parse(content string) (*Document, error) {
	front, body, err := splitFrontmatter(content)
	if err != nil {
		return &Document{Body: section.Normalize(content)}, err
	}

	var meta Metadata
	if err := toml.Unmarshal([]byte(front), &meta); err != nil {
		return &Document{Body: section.Normalize(content)},
			fmt.Errorf("%w: %v", ErrMalformedMeta, err)
	}

	doc := &Document{
		Meta: meta,
		Body: section.Normalize(strings.TrimLeft(body, "\n")),
	}
	if meta.Phase != "" && !meta.Phase.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrUnknownPhase, meta.Phase)
	}
	return doc, nil
}

// splitFrontmatter splits content on +++ delimiters.
// Expected format:
//
//	+++
//	<TOML>
//	+++
//	<body>
func splitFrontmatter(content string) (string, string, error) {
	const delim = "+++"

	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, delim) {
		return "", "", ErrNoFrontmatter
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, delim)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: missing closing +++ delimiter", ErrMalformedMeta)
	}
	return rest[:idx], rest[idx+len(delim):], nil
}

// Serialize renders the document back to file form: frontmatter, blank
// line, body.
func (d *Document) Serialize() (string, error) {
	metaBytes, err := toml.Marshal(d.Meta)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	body := d.Body
	// Keep Parse/Serialize idempotent: exactly one trailing newline.
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return "+++\n" + string(metaBytes) + "+++\n\n" + body, nil
}

// ValidateIdentity checks that the declared artifact id and phase agree with
// the document's filename-derived identity.
func (d *Document) ValidateIdentity(filename string) error {
	id, phase, ok := ParseFilename(filename)
	if !ok {
		return fmt.Errorf("%w: %q is not an <id>.<phase>.md filename", ErrIdentityMismatch, filename)
	}
	if d.Meta.Artifact != id {
		return fmt.Errorf("%w: metadata says %q, filename says %q", ErrIdentityMismatch, d.Meta.Artifact, id)
	}
	if d.Meta.Phase != phase {
		return fmt.Errorf("%w: metadata phase %q, filename phase %q", ErrIdentityMismatch, d.Meta.Phase, phase)
	}
	return nil
}

// Sections parses the document body into its section model.
func (d *Document) Sections() *section.Doc {
	return section.Parse(d.Body)
}
