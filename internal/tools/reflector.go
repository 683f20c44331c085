package tools

import (
	"context"
	"fmt"

	"github.com/rahul/autopilot/internal/llm"
)

const reflectionPrompt = `You are a reflection module embedded in an autonomous agent runtime.

Given the following memory log, write a structured reflection: what the agent tried to do,
which steps it took, what worked, what failed, and what should change next time.
If the log contains an error_analysis entry with fix_commands, repeat that list verbatim.

## Memory Log
%s

## What was the agent trying to do?
-

## What steps did the agent take?
-

## What worked well?
-

## What failed or could be improved?
-

## Suggested improvements:
-
`

// ReflectorTool summarizes a memory log into a reflection.
type ReflectorTool struct {
	Backend llm.Generator
}

func NewReflectorTool(backend llm.Generator) *ReflectorTool {
	return &ReflectorTool{Backend: backend}
}

func (r *ReflectorTool) Name() string {
	return "reflect"
}

func (r *ReflectorTool) Description() string {
	return "Analyzes a memory log and generates a reflection summary."
}

func (r *ReflectorTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        r.Name(),
		Description: r.Description(),
		InputHint:   "Memory log or prior output as plain text.",
		Tags:        []string{"introspection", "reflection", "llm"},
	}
}

func (r *ReflectorTool) Execute(ctx context.Context, input string) Outcome {
	out, err := r.Backend.Generate(ctx, fmt.Sprintf(reflectionPrompt, input))
	if err != nil {
		return Failure("LLM failed to generate reflection.")
	}
	return Success(out)
}
