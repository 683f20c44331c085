package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/autopilot/internal/llm"
)

const errorAnalysisPrompt = `You are an expert system administrator and developer. Analyze this command failure and
suggest the exact commands needed to fix it AND complete the original goal.

ERROR OUTPUT:
%s

Your fix_commands must include BOTH:
1. Commands that fix the immediate problem
2. Commands that retry or complete the original operation

Examples:
- git commit fails on formatting -> ["gofmt -w .", "git commit -m 'Fix formatting and commit changes'"]
- npm install fails -> ["npm cache clean --force", "npm install"]
- permission denied -> ["chmod +x script.sh", "./script.sh"]

Respond with ONLY a JSON object in this format:
{
  "analysis": "Brief explanation of what went wrong",
  "fix_commands": ["fix_command", "retry_original_command"],
  "explanation": "Why these commands fix the issue and complete the goal"
}
`

// ErrorAnalyzerTool asks the model for fix commands for a failure.
type ErrorAnalyzerTool struct {
	Backend llm.Generator
}

func NewErrorAnalyzerTool(backend llm.Generator) *ErrorAnalyzerTool {
	return &ErrorAnalyzerTool{Backend: backend}
}

func (e *ErrorAnalyzerTool) Name() string {
	return "analyze_error"
}

func (e *ErrorAnalyzerTool) Description() string {
	return "Analyzes command failures and suggests specific fixes."
}

func (e *ErrorAnalyzerTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        e.Name(),
		Description: e.Description(),
		InputHint:   "Error message or command output to analyze.",
		Tags:        []string{"error", "analysis", "fix"},
	}
}

func (e *ErrorAnalyzerTool) Execute(ctx context.Context, input string) Outcome {
	out, err := e.Backend.Generate(ctx, fmt.Sprintf(errorAnalysisPrompt, input))
	if err != nil {
		return Failure("Failed to analyze error with LLM")
	}
	if !strings.Contains(out, "fix_commands") {
		return Failure("LLM did not provide structured fix suggestions")
	}
	return Success(out)
}
