package tools

import (
	"context"
	"fmt"

	"github.com/rahul/autopilot/internal/llm"
)

// LLMTool sends its input straight to the text-generation backend.
type LLMTool struct {
	Backend llm.Generator
}

func NewLLMTool(backend llm.Generator) *LLMTool {
	return &LLMTool{Backend: backend}
}

func (l *LLMTool) Name() string {
	return "llm"
}

func (l *LLMTool) Description() string {
	return "Sends input to the configured language model and returns the response."
}

func (l *LLMTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        l.Name(),
		Description: l.Description(),
		InputHint:   "Freeform prompt text to send to the model.",
		Tags:        []string{"llm", "generation", "reasoning"},
	}
}

func (l *LLMTool) Execute(ctx context.Context, input string) Outcome {
	out, err := l.Backend.Generate(ctx, input)
	if err != nil {
		return Failure(fmt.Sprintf("Request failed: %v", err))
	}
	return Success(out)
}
