package agent

import (
	"fmt"

	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
)

// Simulate describes what executing p would do without running
// anything. It only reads the registry.
func Simulate(registry *tools.Registry, p plan.Plan) plan.SimulationResult {
	warnings := []string{}
	resolvable := 0
	for _, step := range p.Steps {
		if !step.IsTool() {
			continue
		}
		t, ok := registry.Get(step.Name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("capability '%s' not registered", step.Name))
			continue
		}
		resolvable++
		spec := tools.SpecOf(t)
		warnings = append(warnings, fmt.Sprintf("[TOOL] %s - %s (hint: %s) will invoke capability %s",
			spec.Name, spec.Description, spec.InputHint, spec.Name))
	}

	return plan.SimulationResult{
		PredictedOutcome: fmt.Sprintf("Plan contains %d step(s) and will attempt %d tool call(s).", p.Len(), resolvable),
		Warnings:         warnings,
	}
}
