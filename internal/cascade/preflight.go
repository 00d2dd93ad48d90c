package cascade

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// worktreeDirty reports whether the workspace directory sits inside a git
// repository with uncommitted changes. Git being absent, or the directory
// not being a repository, counts as clean: the gate only warns when there
// is actually something to lose.
func worktreeDirty(ctx context.Context, dir string) (bool, string) {
	if _, err := exec.LookPath("git"); err != nil {
		return false, ""
	}

	check := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--git-dir")
	if err := check.Run(); err != nil {
		return false, ""
	}

	status := exec.CommandContext(ctx, "git", "-C", dir, "status", "--porcelain")
	var out bytes.Buffer
	status.Stdout = &out
	if err := status.Run(); err != nil {
		return false, ""
	}

	lines := strings.TrimSpace(out.String())
	if lines == "" {
		return false, ""
	}
	return true, fmt.Sprintf("%d uncommitted change(s)", len(strings.Split(lines, "\n")))
}
