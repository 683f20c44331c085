package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/rahul/autopilot/internal/tools"
)

// Template names. A file named <name>.md in the prompts directory
// replaces the built-in template of the same name.
const (
	PlannerTemplate   = "planner"
	ReplannerTemplate = "replanner"
)

// PromptData is what the planning templates are rendered with.
type PromptData struct {
	Preamble     string
	Goal         string
	Memory       string
	Reflection   string
	Capabilities []tools.ToolSpec
	Analysis     *tools.GoalAnalysis
}

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Preamble concatenates the persona files of the prompts directory in a
// fixed order. Template overrides are not part of it. A missing
// directory yields an empty preamble.
func (pm *PromptManager) Preamble() (string, error) {
	if pm == nil || pm.Directory == "" {
		return "", nil
	}
	files, err := os.ReadDir(pm.Directory)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %w", err)
	}

	order := map[string]int{
		"identity.md":     1,
		"soul.md":         2,
		"capabilities.md": 3,
		"user.md":         4,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".md") || isTemplateFile(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(pm.Directory, name))
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		contents = append(contents, strings.TrimSpace(string(data)))
	}
	return strings.Join(contents, "\n\n---\n\n"), nil
}

func isTemplateFile(name string) bool {
	return name == PlannerTemplate+".md" || name == ReplannerTemplate+".md"
}

// Template returns the named template, preferring an override file.
func (pm *PromptManager) Template(name string) (*template.Template, error) {
	text, ok := defaultTemplates[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt template %q", name)
	}
	if pm != nil && pm.Directory != "" {
		data, err := os.ReadFile(filepath.Join(pm.Directory, name+".md"))
		switch {
		case err == nil:
			text = string(data)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s prompt: %w", name, err)
		}
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s prompt: %w", name, err)
	}
	return tmpl, nil
}

// Render fills the named template. The preamble is loaded when the
// caller did not set one.
func (pm *PromptManager) Render(name string, data PromptData) (string, error) {
	tmpl, err := pm.Template(name)
	if err != nil {
		return "", err
	}
	if data.Preamble == "" {
		if data.Preamble, err = pm.Preamble(); err != nil {
			return "", err
		}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return b.String(), nil
}

var defaultTemplates = map[string]string{
	PlannerTemplate:   plannerPrompt,
	ReplannerTemplate: replannerPrompt,
}

const capabilityList = `{{range .Capabilities}}- {{.Name}}: {{.Description}} Input: {{.InputHint}}
{{end}}`

const formatRules = `Output rules:
- Respond with ONLY a JSON object: {"plan": [ ... ]}
- A step is either {"type": "tool", "name": "run_command", "input": "git status --short"}
  or {"type": "info", "message": "Checking repository state"}.
- "tool" and "info" are the only step types. Never use conditionals, loops or tests.
- Every tool step needs an "input" string, except git_status.
- Inputs must be concrete. Never emit template placeholders such as angle-bracket names.
- To pass a previous result on, use exactly "$output[capability_name]" as the whole input.
- No comments, no markdown, no explanation outside the JSON.
`

const plannerPrompt = `{{if .Preamble}}{{.Preamble}}

{{end}}You are an agentic planner. Produce a linear plan of steps that reaches the goal.

Goal:
{{.Goal}}

Memory log:
{{if .Memory}}{{.Memory}}{{else}}(empty){{end}}

Available capabilities:
` + capabilityList + `{{with .Analysis}}
Goal analysis ({{.GoalType}}, {{.ContextType}}):
{{if .ToolSequence}}Suggested sequence: {{join .ToolSequence ", "}}
{{end}}{{range .CriticalRules}}- {{.}}
{{end}}{{end}}
` + formatRules

const replannerPrompt = `{{if .Preamble}}{{.Preamble}}

{{end}}You are an autonomous agent replanner. The previous plan did not fully succeed.

Original goal:
{{.Goal}}

Reflection:
{{.Reflection}}

Memory log:
{{if .Memory}}{{.Memory}}{{else}}(empty){{end}}

Available capabilities:
` + capabilityList + `
Instructions:
- If the reflection contains a "fix_commands" list, run each of those commands in order
  with run_command, then retry the original operation that failed.
- Only include steps that continue or repair the previous attempt.
- If the reflection says the goal was achieved, return a single info step saying "Goal achieved".
- If nothing is left to do, return {"plan": []}.
{{with .Analysis}}{{range .CriticalRules}}- {{.}}
{{end}}{{end}}
` + formatRules
