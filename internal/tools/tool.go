package tools

import (
	"context"
	"sort"
	"sync"
)

// Outcome is the result of a single capability invocation.
type Outcome struct {
	Success bool
	Output  string
	Error   string
}

// Success builds a successful outcome carrying output.
func Success(output string) Outcome {
	return Outcome{Success: true, Output: output}
}

// Failure builds a failed outcome carrying an error message.
func Failure(msg string) Outcome {
	return Outcome{Success: false, Error: msg}
}

// ErrorText returns the failure message, falling back to a generic one.
func (o Outcome) ErrorText() string {
	if o.Error == "" {
		return "Unknown error"
	}
	return o.Error
}

// Tool defines the interface for all agent capabilities.
// Implementations must be safe for concurrent use.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) Outcome
}

// ToolSpec is planning-time metadata about a capability.
type ToolSpec struct {
	Name        string
	Description string
	InputHint   string
	Tags        []string
}

// Specifier is implemented by tools that describe their input.
type Specifier interface {
	Spec() ToolSpec
}

// SpecOf returns the tool's own spec, or generic metadata built from its
// name and description.
func SpecOf(t Tool) ToolSpec {
	if s, ok := t.(Specifier); ok {
		return s.Spec()
	}
	return ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		InputHint:   "Free-form text input.",
	}
}

// Registry manages the set of available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds t, replacing any tool already registered under its name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the spec of every registered tool, sorted by name.
func (r *Registry) Specs() []ToolSpec {
	names := r.Names()
	specs := make([]ToolSpec, 0, len(names))
	for _, name := range names {
		if t, ok := r.Get(name); ok {
			specs = append(specs, SpecOf(t))
		}
	}
	return specs
}
