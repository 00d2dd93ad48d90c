package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/papercrane/cascade/internal/baseline"
	"github.com/papercrane/cascade/internal/cascade"
	"github.com/papercrane/cascade/internal/config"
	"github.com/papercrane/cascade/internal/llm"
	"github.com/papercrane/cascade/internal/ui"
	"github.com/papercrane/cascade/internal/workspace"
)

// session bundles the collaborators most commands share.
type session struct {
	Cfg     config.Config
	WS      *workspace.Workspace
	Store   *baseline.Store
	Engine  *cascade.Engine
	Printer *ui.Printer
}

func (s *session) Close() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// reload re-scans the workspace directory so long-running commands see
// freshly saved documents.
func (s *session) reload() error {
	ws, err := workspace.Load(s.Cfg.WorkspaceDir)
	if err != nil {
		return err
	}
	s.WS = ws
	s.Engine.WS = ws
	return nil
}

// openSession loads the workspace and baseline store. withModel controls
// whether a model client is constructed; read-only commands skip it so they
// work without an API key configured.
func openSession(ctx context.Context, withModel bool) (*session, error) {
	cfg := config.Load()
	printer := ui.New(cfg.Verbose)

	ws, err := workspace.Load(cfg.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	for _, note := range ws.Notes {
		printer.Note(note)
	}

	dbPath := cfg.BaselineDB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.WorkspaceDir, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	store, err := baseline.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	var model llm.Client
	if withModel {
		model, err = llm.NewOpenAI(llm.Options{
			APIKey:         cfg.APIKey(),
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			RequestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
			MaxRetries:     cfg.MaxRetries,
			RequestsPerSec: cfg.RateLimitRPS,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	eng := cascade.New(ws, store, model, printer)
	eng.GitPreflight = cfg.GitPreflight

	return &session{Cfg: cfg, WS: ws, Store: store, Engine: eng, Printer: printer}, nil
}
