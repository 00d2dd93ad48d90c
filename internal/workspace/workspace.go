// Package workspace indexes the artifact documents in a directory and owns
// all reads and writes of their files. Writes are atomic: content is
// validated in memory by callers, written to a temp file, then renamed into
// place, so a half-applied document never reaches disk.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/papercrane/cascade/internal/artifact"
)

// ErrDocumentNotFound is returned when no document exists for an
// artifact/phase pair.
var ErrDocumentNotFound = errors.New("document not found in workspace")

type key struct {
	id    string
	phase artifact.Phase
}

// Workspace is the document index for one directory. It is built per
// operation rather than cached across operations, since documents change
// between invocations.
type Workspace struct {
	Dir string

	docs  map[key]*artifact.Document
	order []key
	// Notes records informational parse findings (e.g. files whose
	// frontmatter could not be trusted) gathered during Load.
	Notes []string
}

// Load scans dir for <id>.<phase>.md files and parses each. Files whose
// metadata block is malformed are still indexed with best-effort bodies and
// reported via Notes; only filesystem failures are fatal.
func Load(dir string) (*Workspace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading workspace directory: %w", err)
	}

	w := &Workspace{
		Dir:  dir,
		docs: make(map[key]*artifact.Document),
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		id, phase, ok := artifact.ParseFilename(e.Name())
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		doc, perr := artifact.Parse(string(data))
		doc.SourceFile = e.Name()
		if perr != nil {
			w.Notes = append(w.Notes, fmt.Sprintf("%s: %v (best-effort body parse)", e.Name(), perr))
			// Fall back to filename-derived identity so the document still
			// participates in lookup and diffing.
			doc.Meta.Artifact = id
			doc.Meta.Phase = phase
		} else if verr := doc.ValidateIdentity(e.Name()); verr != nil {
			// The filename is what the user addresses; metadata that
			// disagrees with it is reported and overridden, never trusted.
			w.Notes = append(w.Notes, fmt.Sprintf("%s: %v (filename identity used)", e.Name(), verr))
			doc.Meta.Artifact = id
			doc.Meta.Phase = phase
		}

		k := key{id: id, phase: phase}
		w.docs[k] = doc
		w.order = append(w.order, k)
	}

	return w, nil
}

// Get returns the document for an artifact/phase pair.
func (w *Workspace) Get(id string, phase artifact.Phase) (*artifact.Document, bool) {
	doc, ok := w.docs[key{id: id, phase: phase}]
	return doc, ok
}

// Documents returns all documents in filename order.
func (w *Workspace) Documents() []*artifact.Document {
	out := make([]*artifact.Document, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.docs[k])
	}
	return out
}

// Artifacts returns the unique artifact ids present, sorted.
func (w *Workspace) Artifacts() []string {
	seen := make(map[string]bool)
	for _, k := range w.order {
		seen[k.id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Path returns the canonical on-disk path for an artifact/phase pair.
func (w *Workspace) Path(id string, phase artifact.Phase) string {
	return filepath.Join(w.Dir, artifact.Filename(id, phase))
}

// Resolve maps an on-disk path (absolute or relative) to its document.
func (w *Workspace) Resolve(path string) (*artifact.Document, error) {
	id, phase, ok := artifact.ParseFilename(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an <id>.<phase>.md file", ErrDocumentNotFound, path)
	}
	doc, found := w.Get(id, phase)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, artifact.Filename(id, phase))
	}
	return doc, nil
}

// WriteDocument serializes and atomically writes a document to its
// canonical path, then updates the in-memory index so later readers in the
// same invocation observe the new content.
func (w *Workspace) WriteDocument(doc *artifact.Document) error {
	content, err := doc.Serialize()
	if err != nil {
		return err
	}

	// Write to the file the document was loaded from, never to a path
	// re-derived from metadata. Metadata can drift; the source file is the
	// document's identity.
	name := doc.SourceFile
	if name == "" {
		name = artifact.Filename(doc.Meta.Artifact, doc.Meta.Phase)
	}
	path := filepath.Join(w.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}

	id, phase, ok := artifact.ParseFilename(name)
	if !ok {
		return fmt.Errorf("%w: %q is not an <id>.<phase>.md filename", artifact.ErrIdentityMismatch, name)
	}
	k := key{id: id, phase: phase}
	if _, existed := w.docs[k]; !existed {
		w.order = append(w.order, k)
	}
	doc.SourceFile = name
	w.docs[k] = doc
	return nil
}

// Raw returns the current on-disk content for an artifact/phase pair.
func (w *Workspace) Raw(id string, phase artifact.Phase) (string, error) {
	data, err := os.ReadFile(w.Path(id, phase))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, artifact.Filename(id, phase))
		}
		return "", err
	}
	return string(data), nil
}
