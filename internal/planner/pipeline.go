// Package planner turns a goal and the audit log into an executable plan
// by prompting a text model and repairing whatever it returns.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul/autopilot/internal/llm"
	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
	"github.com/rahul/autopilot/internal/validation"
)

// DefaultMarker ends the reasoning section of thinking models.
const DefaultMarker = "</think>"

// Options configures a Planner or Replanner.
type Options struct {
	// Marker is the reasoning delimiter; empty uses DefaultMarker.
	Marker string
	// Prompts overrides the built-in templates when set.
	Prompts *PromptManager
	// AnalyzeGoal runs the analyze_goal capability before prompting.
	AnalyzeGoal bool
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// pipeline is the prompt, extract, repair, validate and convert sequence
// shared by the planner and the replanner.
type pipeline struct {
	label    string
	template string
	failure  string
	backend  llm.Generator
	registry *tools.Registry
	opts     Options
	logger   *observability.Logger
}

func newPipeline(label, template, failure string, backend llm.Generator, registry *tools.Registry, opts Options) pipeline {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.Prompts == nil {
		opts.Prompts = NewPromptManager("")
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return pipeline{
		label:    label,
		template: template,
		failure:  failure,
		backend:  backend,
		registry: registry,
		opts:     opts,
		logger:   logger.Component(label),
	}
}

// analyze asks the goal analyzer for planning hints. Any failure just
// means no hints.
func (p *pipeline) analyze(ctx context.Context, goal, dump string, replanning bool) *tools.GoalAnalysis {
	if !p.opts.AnalyzeGoal {
		return nil
	}
	t, ok := p.registry.Get("analyze_goal")
	if !ok {
		return nil
	}
	analyzer, ok := t.(*tools.GoalAnalyzerTool)
	if !ok {
		return nil
	}
	analysis, err := analyzer.AnalyzeContext(ctx, goal, dump, replanning)
	if err != nil {
		p.logger.Warnf("goal analysis skipped: %v", err)
		return nil
	}
	return &analysis
}

// run renders the prompt, calls the backend once and converts the answer.
// It never fails; a failed acquisition yields a degenerate plan.
func (p *pipeline) run(ctx context.Context, log memory.Log, data PromptData) plan.Plan {
	data.Capabilities = p.registry.Specs()

	prompt, err := p.opts.Prompts.Render(p.template, data)
	if err != nil {
		return p.fail(log, "prompt_error", fmt.Sprintf("%s: %v", p.failure, err))
	}

	raw, err := p.backend.Generate(ctx, prompt)
	if err != nil {
		return p.fail(log, "backend_error", fmt.Sprintf("%s: %v", p.failure, err))
	}
	log.Append(p.label, "raw output:\n"+raw)

	cleaned := Clean(StripReasoning(raw, p.opts.Marker))
	log.Append(p.label, "cleaned:\n"+cleaned)

	known := p.registry.Names()
	extracted, found := ExtractPlan(cleaned)
	if !found {
		extracted = cleaned
	}
	doc := Repair(extracted, known)
	log.Append(p.label, "extracted:\n"+doc)

	var parsed validation.Document
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		log.Append(p.label, fmt.Sprintf("parse failed: %v\nraw:\n%s\ncleaned:\n%s", err, raw, cleaned))
		return p.fail(log, "parse_error", p.failure+": could not parse model output")
	}

	for _, verr := range validation.Validate(parsed.Plan, known) {
		msg, example := verr.Hint()
		hint := msg
		if example != nil {
			if b, err := json.Marshal(example); err == nil {
				hint = msg + " Example: " + string(b)
			}
		}
		log.Append(p.label, fmt.Sprintf("validation warning: %s (hint: %s)", verr.Error(), hint))
		p.logger.LogValidation(verr.Kind.String(), verr.Error(), hint)
		p.opts.Metrics.RecordValidationWarning(verr.Kind.String())
	}

	steps := make([]plan.Step, 0, len(parsed.Plan))
	for _, raw := range parsed.Plan {
		if step, ok := convertStep(raw); ok {
			steps = append(steps, step)
		}
	}

	result := plan.New(steps...)
	outcome := "ok"
	if result.IsEmpty() {
		outcome = "empty"
	}
	p.opts.Metrics.RecordPlan(p.label, outcome)
	p.logger.LogPlan(p.label, result.Len(), result.ToolCalls())
	return result
}

func (p *pipeline) fail(log memory.Log, outcome, message string) plan.Plan {
	log.Append(p.label, message)
	p.logger.Errorf("%s", message)
	p.opts.Metrics.RecordPlan(p.label, outcome)
	return plan.Degenerate(message)
}

// convertStep turns a validated wire step into a typed step. Steps with
// no usable type or capability name are dropped.
func convertStep(raw json.RawMessage) (plan.Step, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return plan.Step{}, false
	}

	switch stepType, _ := text(fields["type"]); stepType {
	case "tool":
		name, ok := text(fields["name"])
		if !ok || name == "" {
			return plan.Step{}, false
		}
		input, _ := text(fields["input"])
		return plan.Tool(name, input), true
	case "info":
		if msg, ok := text(fields["message"]); ok {
			return plan.Info(msg), true
		}
		for _, key := range []string{"description", "condition", "text"} {
			if msg, ok := text(fields[key]); ok && msg != "" {
				return plan.Info(msg), true
			}
		}
		return plan.Info(compact(raw)), true
	default:
		return plan.Step{}, false
	}
}

// text reads a JSON value as text: strings are unquoted, anything else
// is rendered as compact JSON.
func text(raw json.RawMessage) (string, bool) {
	if raw == nil || string(bytes.TrimSpace(raw)) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return compact(raw), true
}

func compact(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}
