// Package agent runs plans: it simulates and executes them step by step
// and drives the plan, execute, evaluate and replan loop.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
	"github.com/rahul/autopilot/internal/validation"
)

// Capabilities whose failures never fail an execution.
const (
	ReflectCapability      = "reflect"
	ErrorAnalyzeCapability = "analyze_error"
)

// unregistered labels failures of capability names the registry does not
// know, keeping metric cardinality bounded.
const unregistered = "unregistered"

// Confirmer is asked before every capability invocation. Returning false
// skips the step.
type Confirmer interface {
	Confirm(ctx context.Context, capability, input string) bool
}

// IsCritical reports whether a failure of the named capability fails the
// whole execution. Unregistered names are critical.
func IsCritical(name string) bool {
	switch name {
	case ReflectCapability, ErrorAnalyzeCapability:
		return false
	default:
		return true
	}
}

// Engine executes plans against a capability registry.
type Engine struct {
	Registry  *tools.Registry
	Confirmer Confirmer
	Logger    *observability.Logger
	Metrics   *observability.Metrics
}

func NewEngine(registry *tools.Registry, confirmer Confirmer, logger *observability.Logger, metrics *observability.Metrics) *Engine {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Engine{
		Registry:  registry,
		Confirmer: confirmer,
		Logger:    logger.Component("engine"),
		Metrics:   metrics,
	}
}

// pass is the state of one execution. It is discarded afterwards.
type pass struct {
	buf      strings.Builder
	errors   []string
	critical int
	outputs  map[string]string
}

// Execute runs every step of p in order. Capability failures are
// collected, never returned; only critical ones clear Success. A plan
// standing in for a failed acquisition runs but never succeeds.
func (e *Engine) Execute(ctx context.Context, log memory.Log, p plan.Plan) plan.ExecutionResult {
	ctx, span := observability.Tracer().Start(ctx, "engine.execute")
	defer span.End()

	st := &pass{outputs: make(map[string]string)}
	for i, step := range p.Steps {
		e.Logger.LogStep(i, step.String())
		if step.IsTool() {
			e.runTool(ctx, log, st, step)
			continue
		}
		st.buf.WriteString("[INFO] " + step.Message + "\n")
		log.Append(memory.LabelInfo, step.Message)
		e.Metrics.RecordStep("info", "success")
	}
	if p.Failed() {
		st.critical++
		st.errors = append(st.errors, p.Failure)
	}

	res := plan.ExecutionResult{
		Success: st.critical == 0,
		Output:  strings.TrimSpace(st.buf.String()),
		Errors:  st.errors,
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	span.SetAttributes(
		attribute.Int("steps", p.Len()),
		attribute.Int("critical_failures", st.critical),
		attribute.Bool("success", res.Success),
	)
	return res
}

// ResolveInput substitutes a whole-input $output[key] reference with the
// latest output of key, or a placeholder when there is none yet.
func ResolveInput(input string, outputs map[string]string) string {
	key, ok := validation.ParseReference(input)
	if !ok {
		return input
	}
	if out, ok := outputs[key]; ok {
		return out
	}
	return fmt.Sprintf("(missing output for '%s')", key)
}

func (e *Engine) runTool(ctx context.Context, log memory.Log, st *pass, step plan.Step) {
	input := ResolveInput(step.Input, st.outputs)

	if e.Confirmer != nil && !e.Confirmer.Confirm(ctx, step.Name, input) {
		e.Logger.Infof("skipped %s", step.Name)
		e.Metrics.RecordStep("tool", "skipped")
		return
	}

	t, ok := e.Registry.Get(step.Name)
	if !ok {
		msg := "capability not found: " + step.Name
		st.critical++
		st.errors = append(st.errors, msg)
		log.Append(memory.LabelExecutionError, msg)
		e.Logger.LogToolResult(step.Name, false, true, 0, msg)
		e.Metrics.RecordStep("tool", "failure")
		e.Metrics.RecordFailure(unregistered, true)
		return
	}

	e.Logger.LogToolCall(step.Name, input)
	start := time.Now()
	out := t.Execute(ctx, input)
	elapsed := time.Since(start)
	e.Metrics.ObserveCapability(step.Name, elapsed)

	if out.Success {
		if out.Output != "" {
			st.outputs[step.Name] = out.Output
			st.buf.WriteString(out.Output + "\n")
		}
		log.Append(memory.ToolLabel(step.Name), fmt.Sprintf("[input] %s\n[output] %s", input, out.Output))
		e.Logger.LogToolResult(step.Name, true, false, elapsed, out.Output)
		e.Metrics.RecordStep("tool", "success")
		return
	}

	errText := out.ErrorText()
	critical := IsCritical(step.Name)
	st.errors = append(st.errors, errText)
	if critical {
		st.critical++
	}
	log.Append(memory.LabelExecutionError, fmt.Sprintf("Tool '%s' failed: %s", step.Name, errText))
	e.Logger.LogToolResult(step.Name, false, critical, elapsed, errText)
	e.Metrics.RecordStep("tool", "failure")
	e.Metrics.RecordFailure(step.Name, critical)

	if critical {
		e.analyze(ctx, log, errText)
	}
}

// analyze asks the error analyzer for fix commands and records them for
// the replanner.
func (e *Engine) analyze(ctx context.Context, log memory.Log, errText string) {
	analyzer, ok := e.Registry.Get(ErrorAnalyzeCapability)
	if !ok {
		return
	}
	out := analyzer.Execute(ctx, errText)
	if !out.Success || out.Output == "" {
		e.Logger.Warnf("error analysis unavailable: %s", out.ErrorText())
		return
	}
	log.Append(memory.LabelErrorAnalysis, out.Output)
}
