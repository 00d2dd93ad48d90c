// Package cascade drives the change-detection and propagation workflow:
// diff a document against its baseline, resolve downstream documents in
// phase order, regenerate each through the model, validate, write, and
// update baselines.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/papercrane/cascade/internal/artifact"
	"github.com/papercrane/cascade/internal/baseline"
	"github.com/papercrane/cascade/internal/llm"
	"github.com/papercrane/cascade/internal/section"
	"github.com/papercrane/cascade/internal/ui"
	"github.com/papercrane/cascade/internal/workspace"
)

// State names the steps of one cascade invocation. Error is reachable from
// any step; a Result always carries the terminal state it reached.
type State string

const (
	StateIdle               State = "idle"
	StateChangeDetected     State = "change-detected"
	StateDependentsResolved State = "dependents-resolved"
	StatePromptBuilt        State = "prompt-built"
	StateModelInvoked       State = "model-invoked"
	StateResultApplied      State = "result-applied"
	StateBaselineUpdated    State = "baseline-updated"
	StateDone               State = "done"
	StateError              State = "error"
)

// Sentinel errors surfaced across the engine boundary.
var (
	// ErrInFlight indicates a cascade is already running for the artifact.
	// Concurrent cascades on the same document are not designed to
	// interleave; the caller must wait or cancel.
	ErrInFlight = errors.New("cascade already in flight for artifact")
	// ErrDirtyWorktree indicates uncommitted changes were found during the
	// git pre-flight gate.
	ErrDirtyWorktree = errors.New("uncommitted changes in workspace")
	// ErrMissingUpstream indicates cascading from a design document whose
	// requirement does not exist.
	ErrMissingUpstream = errors.New("cascading from design requires its requirement document")
	// ErrResultRejected indicates the model's output failed structural
	// validation and was not written to disk.
	ErrResultRejected = errors.New("model result failed structural validation")
)

// Request describes one cascade invocation.
type Request struct {
	File  string // path to the source document
	Force bool   // bypass the git pre-flight gate
}

// Result is the single value every cascade invocation returns: enough for a
// caller to decide whether to retry, inspect, or roll back.
type Result struct {
	RunID        string
	State        State
	Success      bool
	SourceFile   string
	Changes      *section.ChangeSet
	UpdatedFiles []string
	Errors       []string
	Notes        []string
}

// Engine holds the collaborators for cascade runs. All state is explicit
// and injected; there are no module-level registries or caches.
type Engine struct {
	WS        *workspace.Workspace
	Baselines *baseline.Store
	Model     llm.Client
	UI        *ui.Printer
	// GitPreflight enables the dirty-worktree confirmation gate.
	GitPreflight bool

	mu       sync.Mutex
	inflight map[string]bool
}

// New assembles an engine from its collaborators.
func New(ws *workspace.Workspace, store *baseline.Store, model llm.Client, printer *ui.Printer) *Engine {
	return &Engine{
		WS:        ws,
		Baselines: store,
		Model:     model,
		UI:        printer,
		inflight:  make(map[string]bool),
	}
}

// acquire marks an artifact as mid-cascade. Cascades on independent
// artifacts run concurrently; a second cascade on the same artifact is
// refused.
func (e *Engine) acquire(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[id] {
		return fmt.Errorf("%w: %s", ErrInFlight, id)
	}
	e.inflight[id] = true
	return nil
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, id)
}

// Run executes one cascade invocation. Local recoverable problems become
// Notes; per-document model and validation failures become Errors on the
// Result; only refusal conditions (lock held, dirty worktree, cancelled
// context, filesystem failure) return a non-nil error.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	src, err := e.WS.Resolve(req.File)
	if err != nil {
		return nil, err
	}
	id := src.Meta.Artifact

	if err := e.acquire(id); err != nil {
		return nil, err
	}
	defer e.release(id)

	res := &Result{
		RunID:      uuid.NewString(),
		State:      StateIdle,
		SourceFile: src.SourceFile,
	}
	e.UI.CascadeStart(src.SourceFile, res.RunID)

	if e.GitPreflight && !req.Force {
		if dirty, detail := worktreeDirty(ctx, e.WS.Dir); dirty {
			res.State = StateError
			res.Notes = append(res.Notes, "commit or stash before cascading, or pass --force")
			return res, fmt.Errorf("%w: %s", ErrDirtyWorktree, detail)
		}
	}

	// ChangeDetected: diff the source body against its baseline, falling
	// back to a full-document change when no baseline exists.
	if err := transition(ctx, res, StateChangeDetected); err != nil {
		return res, err
	}
	changes, err := e.detectChange(ctx, src)
	if err != nil {
		res.State = StateError
		return res, err
	}
	res.Changes = changes

	if changes.Empty() {
		// Required optimization: an empty ChangeSet makes zero model calls.
		e.UI.NoChanges()
		res.State = StateDone
		res.Success = true
		return res, nil
	}
	e.UI.ChangeDetected(changes.Summary)

	// DependentsResolved: fixed phase order downstream of the source.
	if err := transition(ctx, res, StateDependentsResolved); err != nil {
		return res, err
	}
	downstream := src.Meta.Phase.Downstream()
	if len(downstream) == 0 {
		res.Notes = append(res.Notes, "implementation is the terminal phase; nothing cascades further")
		e.UI.Note("implementation is terminal — nothing downstream")
		return e.finish(ctx, res, src)
	}
	if src.Meta.Phase == artifact.PhaseDesign {
		if _, ok := e.WS.Get(id, artifact.PhaseRequirement); !ok {
			res.State = StateError
			res.Errors = append(res.Errors, ErrMissingUpstream.Error())
			return res, nil
		}
	}

	// Per-dependent loop, strictly sequential: each downstream document's
	// prompt embeds the upstream content updated earlier in this cascade.
	upstream := src
	hopChanges := changes
	for _, phase := range downstream {
		if err := ctx.Err(); err != nil {
			res.State = StateError
			return res, err
		}

		dep, ok := e.WS.Get(id, phase)
		if !ok {
			file := artifact.Filename(id, phase)
			e.UI.DependentSkipped(file, "document does not exist")
			res.Notes = append(res.Notes, fmt.Sprintf("skipped %s: document does not exist", file))
			// Later phases would regenerate against a document that was
			// never updated, so the chain stops here.
			break
		}

		oldBody := dep.Body
		if err := e.regenerate(ctx, res, upstream, dep, hopChanges); err != nil {
			if ctx.Err() != nil {
				res.State = StateError
				return res, ctx.Err()
			}
			e.UI.DependentFailed(dep.SourceFile, err)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", dep.SourceFile, err))
			break
		}
		e.UI.DependentDone(dep.SourceFile)
		res.UpdatedFiles = append(res.UpdatedFiles, dep.SourceFile)

		// The next hop cascades the change this hop produced.
		upstream = dep
		hopChanges = section.Compare(oldBody, dep.Body)
	}

	return e.finish(ctx, res, src)
}

// regenerate runs the PromptBuilt → ModelInvoked → ResultApplied steps for
// one downstream document. Nothing is written to disk unless the model's
// output survives a structural re-parse: model output is untrusted input.
func (e *Engine) regenerate(ctx context.Context, res *Result, upstream, dep *artifact.Document, changes *section.ChangeSet) error {
	if err := transition(ctx, res, StatePromptBuilt); err != nil {
		return err
	}
	msgs, err := buildCascadePrompt(upstream, dep, changes)
	if err != nil {
		return err
	}

	if err := transition(ctx, res, StateModelInvoked); err != nil {
		return err
	}
	e.UI.DependentStart(dep.SourceFile)
	response, err := e.Model.Complete(ctx, msgs)
	if err != nil {
		return err
	}

	if err := transition(ctx, res, StateResultApplied); err != nil {
		return err
	}
	updated, err := validateResult(response, dep)
	if err != nil {
		return err
	}
	updated.SourceFile = dep.SourceFile
	if err := e.WS.WriteDocument(updated); err != nil {
		return err
	}
	// WriteDocument replaced the index entry; mirror the new body onto the
	// caller's handle so the next hop reads the updated content.
	*dep = *updated
	return nil
}

// validateResult re-parses the model's output and checks the structural
// invariants: it parses as a document, and neither the artifact id nor the
// phase changed. Prose quality is not judged here.
func validateResult(response string, dep *artifact.Document) (*artifact.Document, error) {
	updated, err := artifact.Parse(stripDocumentFences(response))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultRejected, err)
	}
	if updated.Meta.Artifact != dep.Meta.Artifact {
		return nil, fmt.Errorf("%w: artifact id changed from %q to %q",
			ErrResultRejected, dep.Meta.Artifact, updated.Meta.Artifact)
	}
	if updated.Meta.Phase != dep.Meta.Phase {
		return nil, fmt.Errorf("%w: phase changed from %q to %q",
			ErrResultRejected, dep.Meta.Phase, updated.Meta.Phase)
	}
	return updated, nil
}

// detectChange computes the ChangeSet for the source document.
func (e *Engine) detectChange(ctx context.Context, src *artifact.Document) (*section.ChangeSet, error) {
	base, err := e.Baselines.Get(ctx, src.Meta.Artifact, string(src.Meta.Phase))
	if errors.Is(err, baseline.ErrNoBaseline) {
		return section.FullChange(src.Body), nil
	}
	if err != nil {
		return nil, err
	}

	baseDoc, perr := artifact.Parse(base)
	if perr != nil {
		// A corrupt baseline degrades to a full change rather than failing.
		return section.FullChange(src.Body), nil
	}
	return section.Compare(baseDoc.Body, src.Body), nil
}

// finish updates baselines and closes out the result. Baselines advance
// only when every attempted update succeeded, so a failed hop re-diffs on
// the next run.
func (e *Engine) finish(ctx context.Context, res *Result, src *artifact.Document) (*Result, error) {
	if len(res.Errors) == 0 {
		if err := transition(ctx, res, StateBaselineUpdated); err != nil {
			return res, err
		}
		if err := e.updateBaselines(ctx, res, src); err != nil {
			res.State = StateError
			return res, err
		}
		res.Success = true
	}
	if res.State != StateError {
		res.State = StateDone
	}
	e.UI.CascadeDone(len(res.UpdatedFiles), len(res.Errors))
	return res, nil
}

// updateBaselines persists new baselines for the source document and every
// document actually modified in this run. Skipped documents keep whatever
// baseline they had.
func (e *Engine) updateBaselines(ctx context.Context, res *Result, src *artifact.Document) error {
	content, err := src.Serialize()
	if err != nil {
		return err
	}
	if err := e.Baselines.Put(ctx, src.Meta.Artifact, string(src.Meta.Phase), content, res.RunID); err != nil {
		return err
	}
	for _, file := range res.UpdatedFiles {
		id, phase, ok := artifact.ParseFilename(file)
		if !ok {
			continue
		}
		doc, found := e.WS.Get(id, phase)
		if !found {
			continue
		}
		docContent, err := doc.Serialize()
		if err != nil {
			return err
		}
		if err := e.Baselines.Put(ctx, id, string(phase), docContent, res.RunID); err != nil {
			return err
		}
	}
	return nil
}

// transition advances the state machine, honoring cancellation at every
// step boundary.
func transition(ctx context.Context, res *Result, next State) error {
	if err := ctx.Err(); err != nil {
		res.State = StateError
		return err
	}
	res.State = next
	return nil
}
