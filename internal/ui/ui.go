// Package ui renders cascade progress and results to stderr.
package ui

import (
	"fmt"
	"os"

	"github.com/papercrane/cascade/internal/graph"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	blue   = "\033[34m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

// Printer writes human-readable progress lines to stderr. All engine output
// goes through it so stdout stays free for machine-readable results.
type Printer struct {
	Verbose bool
}

func New(verbose bool) *Printer {
	return &Printer{Verbose: verbose}
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(os.Stderr, dim+"%s"+reset+"\n", msg)
}

func (p *Printer) Note(msg string) {
	fmt.Fprintf(os.Stderr, cyan+"ℹ "+reset+"%s\n", msg)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(os.Stderr, yellow+"⚠ "+reset+"%s\n", msg)
}

func (p *Printer) Debug(msg string) {
	if p.Verbose {
		fmt.Fprintf(os.Stderr, dim+"· %s"+reset+"\n", msg)
	}
}

// CascadeStart announces a new cascade run.
func (p *Printer) CascadeStart(file, runID string) {
	fmt.Fprintf(os.Stderr, bold+cyan+"◆ cascade"+reset+" %s "+dim+"(run %s)"+reset+"\n", file, runID)
}

// ChangeDetected reports the diff result for the source document.
func (p *Printer) ChangeDetected(summary string) {
	fmt.Fprintf(os.Stderr, blue+"Δ "+reset+"%s\n", summary)
}

// NoChanges reports an empty ChangeSet: the cascade short-circuits with
// zero model calls.
func (p *Printer) NoChanges() {
	fmt.Fprintln(os.Stderr, green+"✓ no changes"+reset+dim+" — nothing to cascade"+reset)
}

// DependentStart announces regeneration of one downstream document.
func (p *Printer) DependentStart(file string) {
	fmt.Fprintf(os.Stderr, blue+bold+"▶ regenerating"+reset+" %s\n", file)
}

// DependentDone reports a successful downstream update.
func (p *Printer) DependentDone(file string) {
	fmt.Fprintf(os.Stderr, green+"✓ updated"+reset+" %s\n", file)
}

// DependentSkipped reports an informational skip (missing downstream file).
func (p *Printer) DependentSkipped(file, reason string) {
	fmt.Fprintf(os.Stderr, dim+"– skipped %s: %s"+reset+"\n", file, reason)
}

// DependentFailed reports a per-document failure; siblings continue where
// dependency order allows.
func (p *Printer) DependentFailed(file string, err error) {
	fmt.Fprintf(os.Stderr, red+"✗ failed"+reset+" %s: %v\n", file, err)
}

// CascadeDone summarizes a finished run.
func (p *Printer) CascadeDone(updated, failed int) {
	if failed == 0 {
		fmt.Fprintf(os.Stderr, green+bold+"◆ cascade complete"+reset+" — %d file(s) updated\n", updated)
		return
	}
	fmt.Fprintf(os.Stderr, yellow+bold+"◆ cascade finished with errors"+reset+" — %d updated, %d failed\n", updated, failed)
}

// Finding prints one reference validation finding.
func (p *Printer) Finding(f graph.Finding) {
	switch f.Severity {
	case graph.SeverityWarning:
		fmt.Fprintf(os.Stderr, yellow+"⚠ "+reset+"%s\n", f.Error())
	default:
		fmt.Fprintf(os.Stderr, red+"✗ "+reset+"%s\n", f.Error())
	}
}

// ActionReport summarizes a tersify batch.
func (p *Printer) ActionReport(applied, notApplied, unknown, noops int) {
	fmt.Fprintf(os.Stderr, "%d applied, %d not applied, %d unknown, %d no-op\n",
		applied, notApplied, unknown, noops)
}
