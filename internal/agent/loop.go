package agent

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
)

// PlanGenerator produces the first plan for a goal.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, log memory.Log, goal string) plan.Plan
}

// FollowupGenerator produces a corrective plan. false means stop.
type FollowupGenerator interface {
	GenerateFollowup(ctx context.Context, log memory.Log, goal, reflection string) (plan.Plan, bool)
}

// Plan sources recorded in a Cycle.
const (
	SourcePlanner       = "planner"
	SourceErrorAnalysis = "error_analysis"
	SourceReflection    = "reflection"
)

// Cycle is one simulate, execute and evaluate round.
type Cycle struct {
	Source     string
	Plan       plan.Plan
	Simulation plan.SimulationResult
	Execution  plan.ExecutionResult
	Feedback   plan.Feedback
}

// Report is everything a run produced, for rendering.
type Report struct {
	Goal       string
	Cycles     []Cycle
	Reflection string
	Phases     []observability.Phase
}

// Success reports the outcome of the last execution.
func (r Report) Success() bool {
	if len(r.Cycles) == 0 {
		return false
	}
	return r.Cycles[len(r.Cycles)-1].Execution.Success
}

// Agent drives the plan, simulate, execute, evaluate and replan loop.
type Agent struct {
	Registry  *tools.Registry
	Planner   PlanGenerator
	Replanner FollowupGenerator
	Engine    *Engine
	// MaxReplans bounds the number of follow-up plans per run.
	MaxReplans int
	Logger     *observability.Logger
	Metrics    *observability.Metrics
	// OnPhase, if set, is called on every phase change.
	OnPhase func(observability.Phase)
}

func New(registry *tools.Registry, planner PlanGenerator, replanner FollowupGenerator, engine *Engine, maxReplans int) *Agent {
	return &Agent{
		Registry:   registry,
		Planner:    planner,
		Replanner:  replanner,
		Engine:     engine,
		MaxReplans: maxReplans,
		Logger:     observability.NewNopLogger(),
	}
}

// Run pursues goal until an execution succeeds, nothing is left to
// replan from, or the replan budget is spent.
func (a *Agent) Run(ctx context.Context, log memory.Log, goal string) Report {
	logger := a.Logger.Component("loop")
	tracker := observability.NewTracker(func(p observability.Phase) {
		logger.LogPhase(p)
		if a.OnPhase != nil {
			a.OnPhase(p)
		}
	})

	ctx, span := observability.Tracer().Start(ctx, "agent.run")
	defer span.End()

	report := Report{Goal: goal}

	tracker.Enter(observability.PhasePlanning)
	current := a.phase(ctx, "planning", func(ctx context.Context) plan.Plan {
		return a.Planner.GeneratePlan(ctx, log, goal)
	})
	source := SourcePlanner

	for replans := 0; ; {
		tracker.Enter(observability.PhaseSimulating)
		sim := Simulate(a.Registry, current)

		tracker.Enter(observability.PhaseExecuting)
		exec := a.Engine.Execute(ctx, log, current)

		tracker.Enter(observability.PhaseEvaluating)
		fb := plan.Evaluate(exec)
		report.Cycles = append(report.Cycles, Cycle{
			Source:     source,
			Plan:       current,
			Simulation: sim,
			Execution:  exec,
			Feedback:   fb,
		})
		logger.Infof("cycle %d scored %d: %s", len(report.Cycles), fb.Score, fb.Notes)

		if reflector, ok := a.Registry.Get(ReflectCapability); ok {
			tracker.Enter(observability.PhaseReflecting)
			if reflection, ok := a.reflect(ctx, log, reflector); ok {
				report.Reflection = reflection
			}
		}

		if exec.Success || replans >= a.MaxReplans || a.Replanner == nil {
			break
		}

		basis, from, ok := ReplanBasis(log)
		if !ok {
			logger.Infof("no error analysis or reflection to replan from")
			break
		}

		tracker.Enter(observability.PhaseReplanning)
		if from == SourceErrorAnalysis {
			log.Append(memory.LabelReplanner, "Using error-analysis-based replanning")
		} else {
			log.Append(memory.LabelReplanner, "Using reflection-based replanning")
		}
		var next plan.Plan
		var more bool
		a.phase(ctx, "replanning", func(ctx context.Context) plan.Plan {
			next, more = a.Replanner.GenerateFollowup(ctx, log, goal, basis)
			return next
		})
		if !more {
			logger.Infof("replanner requested no further action")
			break
		}
		replans++
		a.Metrics.RecordReplan()
		current, source = next, from
	}

	tracker.Enter(observability.PhaseDone)
	report.Phases = tracker.Phases()
	a.Metrics.RecordRun(report.Success())
	span.SetAttributes(
		attribute.Int("cycles", len(report.Cycles)),
		attribute.Bool("success", report.Success()),
	)
	return report
}

// ReplanBasis picks the text to replan from: the most recent error
// analysis, else the most recent reflection.
func ReplanBasis(log memory.Log) (string, string, bool) {
	if s, ok := memory.Latest(log, memory.LabelErrorAnalysis); ok {
		return s, SourceErrorAnalysis, true
	}
	if s, ok := memory.Latest(log, memory.LabelReflect); ok {
		return s, SourceReflection, true
	}
	return "", "", false
}

// reflect runs the reflection capability over the audit log. Its
// failures are not fatal.
func (a *Agent) reflect(ctx context.Context, log memory.Log, t tools.Tool) (string, bool) {
	out := t.Execute(ctx, memory.Dump(log))
	if !out.Success || out.Output == "" {
		a.Logger.Warnf("reflection failed: %s", out.ErrorText())
		return "", false
	}
	log.Append(memory.LabelReflect, out.Output)
	return out.Output, true
}

func (a *Agent) phase(ctx context.Context, name string, fn func(context.Context) plan.Plan) plan.Plan {
	ctx, span := observability.Tracer().Start(ctx, "agent."+name)
	defer span.End()
	p := fn(ctx)
	span.SetAttributes(attribute.Int("steps", p.Len()), attribute.Int("tool_calls", p.ToolCalls()))
	return p
}
