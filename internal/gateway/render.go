package gateway

import (
	"fmt"
	"strings"

	"github.com/rahul/autopilot/internal/agent"
	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/plan"
)

// RenderReport formats a run report and the audit log the way the
// console shows them.
func RenderReport(report agent.Report, log memory.Log) string {
	var b strings.Builder

	for i, c := range report.Cycles {
		suffix := ""
		planTitle := "PLAN"
		if i > 0 {
			suffix = fmt.Sprintf(" (%d)", i+1)
			planTitle = "FOLLOW-UP PLAN (" + followUpKind(c.Source) + ")"
		}
		section(&b, planTitle, observability.ColorPlan, renderPlan(c.Plan))
		section(&b, "SIMULATION"+suffix, observability.ColorSimulation, renderSimulation(c.Simulation))
		section(&b, "EXECUTION"+suffix, observability.ColorExecution, renderExecution(c.Execution))
		section(&b, "FEEDBACK"+suffix, observability.ColorFeedback, fmt.Sprintf("score: %d\nnotes: %s", c.Feedback.Score, c.Feedback.Notes))
	}

	if log != nil {
		var lines []string
		for _, e := range log.ReadAll() {
			lines = append(lines, observability.Label(e.Label)+" "+e.Content)
		}
		section(&b, "MEMORY LOG", observability.ColorMemory, strings.Join(lines, "\n"))
	}

	if report.Reflection != "" {
		section(&b, "REFLECTION", observability.ColorFeedback, report.Reflection)
	}

	if report.Success() {
		b.WriteString(observability.Heading("GOAL COMPLETED", observability.ColorExecution) + "\n")
	} else {
		b.WriteString(observability.Heading("GOAL NOT COMPLETED", observability.ColorError) + "\n")
	}
	return b.String()
}

func followUpKind(source string) string {
	if source == agent.SourceErrorAnalysis {
		return "Error Recovery"
	}
	return "Reflection"
}

func section(b *strings.Builder, title, color, body string) {
	b.WriteString(observability.Heading(title, color) + "\n")
	if body != "" {
		b.WriteString(body + "\n")
	}
	b.WriteString("\n")
}

func renderPlan(p plan.Plan) string {
	if p.IsEmpty() {
		return "(no steps)"
	}
	return p.String()
}

func renderSimulation(s plan.SimulationResult) string {
	lines := []string{s.PredictedOutcome}
	for _, w := range s.Warnings {
		lines = append(lines, "  "+w)
	}
	return strings.Join(lines, "\n")
}

func renderExecution(r plan.ExecutionResult) string {
	lines := []string{fmt.Sprintf("success: %t", r.Success)}
	if r.Output != "" {
		lines = append(lines, "output:", r.Output)
	}
	for _, e := range r.Errors {
		lines = append(lines, "error: "+e)
	}
	return strings.Join(lines, "\n")
}
