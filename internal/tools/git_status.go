package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitStatusTool reports the working tree status. It takes no input.
type GitStatusTool struct {
	Dir string
}

func NewGitStatusTool(dir string) *GitStatusTool {
	return &GitStatusTool{Dir: dir}
}

func (g *GitStatusTool) Name() string {
	return "git_status"
}

func (g *GitStatusTool) Description() string {
	return "Runs 'git status' in the workspace directory."
}

func (g *GitStatusTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        g.Name(),
		Description: g.Description(),
		InputHint:   "No input required.",
		Tags:        []string{"git", "status", "vcs"},
	}
}

func (g *GitStatusTool) Execute(ctx context.Context, _ string) Outcome {
	cmd := exec.CommandContext(ctx, "git", "status")
	cmd.Dir = g.Dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return Failure(fmt.Sprintf("Git error: %s", strings.TrimSpace(stderr.String())))
		}
		return Failure(fmt.Sprintf("Failed to run git: %v", err))
	}
	return Success(stdout.String())
}
