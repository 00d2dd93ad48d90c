package graph

import (
	"errors"
	"fmt"

	"github.com/papercrane/cascade/internal/artifact"
)

// Sentinel errors for reference validation findings.
var (
	// ErrSelfReference indicates a document depends on or references itself.
	ErrSelfReference = errors.New("document cannot depend on or reference itself")
	// ErrMissingTarget indicates a reference to a non-existent artifact.
	ErrMissingTarget = errors.New("reference targets unknown artifact")
	// ErrCycle indicates a dependency cycle across multiple documents.
	ErrCycle = errors.New("dependency cycle detected")
)

// Severity classifies a finding for display and exit-code purposes.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding records one reference validation problem with source context.
// Findings are collected, not thrown: each is independently reportable and
// one bad document never halts validation of its siblings.
type Finding struct {
	Artifact   string // artifact id the finding applies to
	SourceFile string
	Field      string // "depends-on" or "references"
	Target     string // the offending reference token, if any
	Severity   Severity
	Err        error
}

// Error returns a human-readable string including source context.
func (f *Finding) Error() string {
	if f.SourceFile != "" {
		return f.SourceFile + ": " + f.Err.Error()
	}
	return f.Artifact + ": " + f.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (f *Finding) Unwrap() error {
	return f.Err
}

// Build constructs the dependency graph from the depends-on fields of the
// given documents. Self-edges are skipped here (they surface as findings in
// Validate); edges to unknown artifacts are skipped the same way.
func Build(docs []*artifact.Document) *Graph {
	g := New()
	for _, d := range docs {
		if d.Meta.Artifact != "" {
			g.AddNode(d.Meta.Artifact)
		}
	}
	for _, d := range docs {
		id := d.Meta.Artifact
		if id == "" {
			continue
		}
		for _, dep := range d.Meta.DependsOn {
			target := artifact.ParseRef(dep).ID
			if target == id || !g.Has(target) {
				continue
			}
			_ = g.AddEdge(id, target)
		}
	}
	return g
}

// Validate checks every document's declared references against the
// workspace: self-references, missing targets, over-specified tokens, and
// dependency cycles. It returns findings rather than failing fast.
func Validate(docs []*artifact.Document) []Finding {
	g := Build(docs)
	known := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.Meta.Artifact != "" {
			known[d.Meta.Artifact] = true
		}
	}

	var findings []Finding
	for _, d := range docs {
		id := d.Meta.Artifact
		if id == "" {
			continue
		}
		findings = append(findings, validateRefList(d, "depends-on", d.Meta.DependsOn, known)...)
		findings = append(findings, validateRefList(d, "references", d.Meta.References, known)...)
	}

	// Cycle detection runs per artifact so every participant is flagged.
	for _, d := range docs {
		id := d.Meta.Artifact
		if id == "" {
			continue
		}
		if _, cyclic := g.Dependencies(id); cyclic {
			findings = append(findings, Finding{
				Artifact:   id,
				SourceFile: d.SourceFile,
				Field:      "depends-on",
				Severity:   SeverityError,
				Err:        fmt.Errorf("%w: involving %q", ErrCycle, id),
			})
		}
	}
	return findings
}

func validateRefList(d *artifact.Document, field string, refs []string, known map[string]bool) []Finding {
	var findings []Finding
	for _, token := range refs {
		ref := artifact.ParseRef(token)

		if ref.ID == d.Meta.Artifact {
			findings = append(findings, Finding{
				Artifact:   d.Meta.Artifact,
				SourceFile: d.SourceFile,
				Field:      field,
				Target:     token,
				Severity:   SeverityError,
				Err:        fmt.Errorf("%w: %q", ErrSelfReference, token),
			})
			continue
		}
		if !known[ref.ID] {
			findings = append(findings, Finding{
				Artifact:   d.Meta.Artifact,
				SourceFile: d.SourceFile,
				Field:      field,
				Target:     token,
				Severity:   SeverityError,
				Err:        fmt.Errorf("%w: %q", ErrMissingTarget, token),
			})
			continue
		}
		if ref.Extra != "" {
			// Over-specification is a normalization opportunity, not an error.
			findings = append(findings, Finding{
				Artifact:   d.Meta.Artifact,
				SourceFile: d.SourceFile,
				Field:      field,
				Target:     token,
				Severity:   SeverityWarning,
				Err:        fmt.Errorf("over-specified reference %q: use %q", token, ref.Token()),
			})
		}
	}
	return findings
}

// Errors filters findings down to error severity.
func Errors(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}
