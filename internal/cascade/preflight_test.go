package cascade

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorktreeDirtyOutsideRepository(t *testing.T) {
	t.Parallel()
	if dirty, detail := worktreeDirty(context.Background(), t.TempDir()); dirty {
		t.Errorf("plain directory reported dirty: %s", detail)
	}
}

func TestWorktreeDirtyInRepository(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")

	// Empty repository: nothing to lose.
	if dirty, _ := worktreeDirty(context.Background(), dir); dirty {
		t.Error("empty repository reported dirty")
	}

	// An untracked artifact file makes the worktree dirty.
	if err := os.WriteFile(filepath.Join(dir, "geode.req.md"), []byte("draft\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dirty, detail := worktreeDirty(context.Background(), dir)
	if !dirty {
		t.Fatal("untracked change not detected")
	}
	if !strings.Contains(detail, "1 uncommitted change(s)") {
		t.Errorf("detail = %q", detail)
	}

	// Committing it makes the worktree clean again.
	run("add", ".")
	run("commit", "-m", "add draft")
	if dirty, detail := worktreeDirty(context.Background(), dir); dirty {
		t.Errorf("clean repository reported dirty: %s", detail)
	}
}
