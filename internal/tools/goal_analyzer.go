package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/autopilot/internal/llm"
)

// Planning contexts reported by the goal analyzer.
const (
	ContextInitialPlanning = "initial_planning"
	ContextErrorRecovery   = "error_recovery"
	ContextContinuation    = "continuation"
)

// GoalAnalysis is the meta-planning answer for a goal.
type GoalAnalysis struct {
	GoalType      string        `json:"goal_type"`
	ContextType   string        `json:"context_type"`
	ToolSequence  []string      `json:"tool_sequence"`
	Examples      []PlanExample `json:"examples"`
	OutputFormat  string        `json:"output_format"`
	CriticalRules []string      `json:"critical_rules"`
}

type PlanExample struct {
	Description string `json:"description"`
	JSONPlan    string `json:"json_plan"`
}

const goalAnalysisPrompt = `You are a meta-planning agent that analyzes goals and generates planning patterns.

GOAL: %s
CONTEXT_TYPE: %s
AVAILABLE_TOOLS: %s
MEMORY_LOG:
%s

Produce:
1. a goal type (git_operations, file_management, error_recovery, api_calls, ...)
2. a linear tool sequence for this goal as a plain string array
3. one or two example plans, each a JSON string of the form
   {"plan": [{"type": "tool", "name": "...", "input": "..."}, {"type": "info", "message": "..."}]}
4. output format instructions
5. critical rules for this context

Only "tool" and "info" step types exist. Never use conditionals or pseudo-code.
For error_recovery, run the fix_commands from the error analysis and then retry the original operation.

OUTPUT ONLY this JSON structure:
{
  "goal_type": "descriptive_goal_type",
  "context_type": "%s",
  "tool_sequence": ["run_command", "reflect"],
  "examples": [{"description": "Example description", "json_plan": "{\"plan\": []}"}],
  "output_format": "Specific instructions for JSON output format",
  "critical_rules": ["Rule 1", "Rule 2"]
}
`

// GoalAnalyzerTool classifies a goal and suggests a plan shape for it.
type GoalAnalyzerTool struct {
	Backend  llm.Generator
	Registry *Registry
	Marker   string
}

func NewGoalAnalyzerTool(backend llm.Generator, registry *Registry) *GoalAnalyzerTool {
	return &GoalAnalyzerTool{Backend: backend, Registry: registry, Marker: "</think>"}
}

func (g *GoalAnalyzerTool) Name() string {
	return "analyze_goal"
}

func (g *GoalAnalyzerTool) Description() string {
	return "Analyzes goals and generates planning patterns, examples, and output formats."
}

func (g *GoalAnalyzerTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        g.Name(),
		Description: g.Description(),
		InputHint:   "goal|memory_log|is_replanning (e.g. 'commit changes|[memory]|false')",
		Tags:        []string{"meta", "planning", "analysis"},
	}
}

// PlanningContext classifies the situation the planner is in.
func PlanningContext(memoryLog string, replanning bool) string {
	if !replanning {
		return ContextInitialPlanning
	}
	if strings.Contains(memoryLog, "error_analysis") ||
		strings.Contains(memoryLog, "execution_error") ||
		strings.Contains(memoryLog, "Command failed") {
		return ContextErrorRecovery
	}
	return ContextContinuation
}

// AnalyzeContext asks the model for a GoalAnalysis.
func (g *GoalAnalyzerTool) AnalyzeContext(ctx context.Context, goal, memoryLog string, replanning bool) (GoalAnalysis, error) {
	contextType := PlanningContext(memoryLog, replanning)

	var names []string
	if g.Registry != nil {
		names = g.Registry.Names()
	}
	toolsJSON, _ := json.Marshal(names)

	prompt := fmt.Sprintf(goalAnalysisPrompt, goal, contextType, toolsJSON, memoryLog, contextType)
	response, err := g.Backend.Generate(ctx, prompt)
	if err != nil {
		return GoalAnalysis{}, fmt.Errorf("LLM execution failed: %w", err)
	}

	if g.Marker != "" {
		if i := strings.LastIndex(response, g.Marker); i >= 0 {
			response = response[i+len(g.Marker):]
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return GoalAnalysis{}, fmt.Errorf("no JSON found in response: %s", response)
	}

	var analysis GoalAnalysis
	if err := json.Unmarshal([]byte(response[start:end+1]), &analysis); err != nil {
		return GoalAnalysis{}, fmt.Errorf("failed to parse goal analysis JSON: %w", err)
	}
	if analysis.ContextType == "" {
		analysis.ContextType = contextType
	}
	return analysis, nil
}

func (g *GoalAnalyzerTool) Execute(ctx context.Context, input string) Outcome {
	first := strings.Index(input, "|")
	last := strings.LastIndex(input, "|")
	if first < 0 || first == last {
		return Failure("Input must be: goal|memory_log|is_replanning")
	}

	goal := input[:first]
	memoryLog := input[first+1 : last]
	replanning := strings.TrimSpace(input[last+1:]) == "true"

	analysis, err := g.AnalyzeContext(ctx, goal, memoryLog, replanning)
	if err != nil {
		return Failure(err.Error())
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return Failure(fmt.Sprintf("Failed to serialize analysis: %v", err))
	}
	return Success(string(data))
}
