package planner

import (
	"context"

	"github.com/rahul/autopilot/internal/llm"
	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
)

// Replanner produces a corrective plan after a failed execution.
type Replanner struct {
	pipeline
}

func NewReplanner(backend llm.Generator, registry *tools.Registry, opts Options) *Replanner {
	return &Replanner{pipeline: newPipeline(memory.LabelReplanner, ReplannerTemplate, "Replanning failed", backend, registry, opts)}
}

// GenerateFollowup returns false when the model asks for no further
// action. Backend and parse failures still produce a one-step info plan,
// marked as failed so that running it cannot succeed.
func (r *Replanner) GenerateFollowup(ctx context.Context, log memory.Log, goal, reflection string) (plan.Plan, bool) {
	dump := memory.Dump(log)
	result := r.run(ctx, log, PromptData{
		Goal:       goal,
		Memory:     dump,
		Reflection: reflection,
		Analysis:   r.analyze(ctx, goal, dump, true),
	})
	if result.IsEmpty() {
		return plan.Plan{}, false
	}
	return result, true
}
