package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ShellTool runs shell commands. A command that starts is reported as a
// success even when it exits nonzero; the exit status is folded into the
// output so the reflection and error analysis capabilities can read it.
type ShellTool struct {
	Dir string
}

func NewShellTool(dir string) *ShellTool {
	return &ShellTool{Dir: dir}
}

func (s *ShellTool) Name() string {
	return "run_command"
}

func (s *ShellTool) Description() string {
	return "Runs a shell command and returns its stdout/stderr output."
}

func (s *ShellTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        s.Name(),
		Description: s.Description(),
		InputHint:   "Shell command to run (e.g. 'go test ./...')",
		Tags:        []string{"shell", "command", "execution"},
	}
}

func (s *ShellTool) Execute(ctx context.Context, input string) Outcome {
	if strings.TrimSpace(input) == "" {
		return Failure("Command execution failed: empty command")
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", input)
	cmd.Dir = s.Dir

	output, err := cmd.CombinedOutput()
	result := strings.TrimSpace(string(output))

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Failure(fmt.Sprintf("Command execution failed: %v", err))
		}
		if result != "" {
			result += "\n"
		}
		result += exitErr.Error()
	}

	return Success(result)
}
