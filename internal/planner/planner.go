package planner

import (
	"context"

	"github.com/rahul/autopilot/internal/llm"
	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
)

// Planner produces the initial plan for a goal.
type Planner struct {
	pipeline
}

func New(backend llm.Generator, registry *tools.Registry, opts Options) *Planner {
	return &Planner{pipeline: newPipeline(memory.LabelPlanning, PlannerTemplate, "Plan acquisition failed", backend, registry, opts)}
}

// GeneratePlan never fails: backend and parse errors yield a single info
// step describing the failure, on a plan marked as failed.
func (p *Planner) GeneratePlan(ctx context.Context, log memory.Log, goal string) plan.Plan {
	dump := memory.Dump(log)
	result := p.run(ctx, log, PromptData{
		Goal:     goal,
		Memory:   dump,
		Analysis: p.analyze(ctx, goal, dump, false),
	})
	return result
}
