package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemTool manages files confined to a workspace root.
type FilesystemTool struct {
	Root string
}

func NewFilesystemTool(root string) *FilesystemTool {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &FilesystemTool{Root: abs}
}

func (f *FilesystemTool) Name() string {
	return "workspace"
}

func (f *FilesystemTool) Description() string {
	return "Read, write, append, list, delete and create files under the workspace root."
}

func (f *FilesystemTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        f.Name(),
		Description: f.Description(),
		InputHint:   `JSON: {"command": "read|write|append|list|delete|mkdir", "filename": "notes.txt", "content": "..."}`,
		Tags:        []string{"filesystem", "workspace"},
	}
}

type workspaceRequest struct {
	Command  string `json:"command"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

var workspaceCommands = map[string]func(path string, req workspaceRequest) (string, error){
	"read": func(path string, _ workspaceRequest) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	},
	"write": func(path string, req workspaceRequest) (string, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		return "wrote " + req.Filename, os.WriteFile(path, []byte(req.Content), 0644)
	},
	"append": func(path string, req workspaceRequest) (string, error) {
		fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return "", err
		}
		_, err = fh.WriteString(req.Content)
		return "appended to " + req.Filename, errors.Join(err, fh.Close())
	},
	"list": listDir,
	"delete": func(path string, req workspaceRequest) (string, error) {
		return "deleted " + req.Filename, os.Remove(path)
	},
	"mkdir": func(path string, req workspaceRequest) (string, error) {
		return "created directory " + req.Filename, os.MkdirAll(path, 0755)
	},
}

func listDir(path string, _ workspaceRequest) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "Directory is empty", nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", kind, e.Name()))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

// resolve joins name onto the root and rejects paths escaping it.
func (f *FilesystemTool) resolve(name string) (string, error) {
	target := filepath.Join(f.Root, name)
	rel, err := filepath.Rel(f.Root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe path attempt: %s", name)
	}
	return target, nil
}

func (f *FilesystemTool) Execute(_ context.Context, input string) Outcome {
	var req workspaceRequest
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		return Failure(fmt.Sprintf("invalid input: %v", err))
	}

	run, ok := workspaceCommands[req.Command]
	if !ok {
		return Failure("unknown command " + req.Command + ": use read, write, append, list, delete or mkdir")
	}
	path, err := f.resolve(req.Filename)
	if err != nil {
		return Failure(err.Error())
	}

	out, err := run(path, req)
	if err != nil {
		return Failure(fmt.Sprintf("%s failed: %v", req.Command, err))
	}
	return Success(out)
}
