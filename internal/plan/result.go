package plan

// SimulationResult is the dry-run report for a plan.
type SimulationResult struct {
	PredictedOutcome string
	Warnings         []string
}

// ExecutionResult aggregates one execution pass. Success is true iff no
// critical failure happened; Errors may hold non-critical failures.
type ExecutionResult struct {
	Success bool
	Output  string
	Errors  []string
}

// Feedback is a coarse rating of an execution.
type Feedback struct {
	Score int
	Notes string
}

// Evaluate scores an execution result from its success flag alone.
func Evaluate(res ExecutionResult) Feedback {
	if res.Success {
		return Feedback{Score: 90, Notes: "Dynamic tool execution complete."}
	}
	return Feedback{Score: 30, Notes: "Dynamic tool execution finished with critical failures."}
}
