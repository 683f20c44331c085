// Package plan defines the typed plan and the results of simulating,
// executing and scoring it.
package plan

import (
	"fmt"
	"strings"
)

// StepKind tags a Step.
type StepKind int

const (
	KindInfo StepKind = iota
	KindTool
)

func (k StepKind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindTool:
		return "tool"
	default:
		return "unknown"
	}
}

// Step is either an informational note or a capability invocation.
// Message is set for info steps; Name and Input for tool steps.
type Step struct {
	Kind    StepKind
	Message string
	Name    string
	Input   string
}

func Info(message string) Step {
	return Step{Kind: KindInfo, Message: message}
}

func Tool(name, input string) Step {
	return Step{Kind: KindTool, Name: name, Input: input}
}

func (s Step) IsTool() bool {
	return s.Kind == KindTool
}

func (s Step) String() string {
	if s.Kind == KindTool {
		return fmt.Sprintf("ToolCall{%s, %q}", s.Name, s.Input)
	}
	return fmt.Sprintf("Info(%q)", s.Message)
}

// Plan is an ordered sequence of steps. A Plan is never modified once
// built; replanning produces a new one.
type Plan struct {
	Steps []Step
	// Failure is set on plans that stand in for a failed acquisition.
	Failure string
}

func New(steps ...Step) Plan {
	return Plan{Steps: steps}
}

// Degenerate returns the single-step plan used when acquisition fails.
func Degenerate(message string) Plan {
	p := New(Info(message))
	p.Failure = message
	return p
}

// Failed reports whether p stands in for a failed acquisition.
func (p Plan) Failed() bool {
	return p.Failure != ""
}

func (p Plan) Len() int {
	return len(p.Steps)
}

func (p Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}

// ToolCalls counts the tool steps.
func (p Plan) ToolCalls() int {
	n := 0
	for _, s := range p.Steps {
		if s.IsTool() {
			n++
		}
	}
	return n
}

func (p Plan) String() string {
	lines := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return strings.Join(lines, "\n")
}
