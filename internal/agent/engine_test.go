package agent

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/internal/plan"
	"github.com/rahul/autopilot/internal/tools"
)

type stubTool struct {
	name    string
	outcome tools.Outcome
	inputs  []string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }

func (s *stubTool) Execute(_ context.Context, input string) tools.Outcome {
	s.inputs = append(s.inputs, input)
	return s.outcome
}

type answers map[string]bool

func (a answers) Confirm(_ context.Context, capability, _ string) bool {
	if ok, found := a[capability]; found {
		return ok
	}
	return true
}

func newEngine(ts ...tools.Tool) *Engine {
	r := tools.NewRegistry()
	for _, t := range ts {
		r.Register(t)
	}
	return NewEngine(r, nil, nil, nil)
}

func TestExecuteInfoAndEcho(t *testing.T) {
	e := newEngine(tools.NewEchoTool())
	log := memory.NewInMemoryLog()

	res := e.Execute(context.Background(), log, plan.New(plan.Info("start"), plan.Tool("echo", "hi")))

	assert.Equal(t, plan.ExecutionResult{Success: true, Output: "[INFO] start\nEchoed: hi", Errors: []string{}}, res)
	assert.Equal(t, []memory.Entry{
		{Label: "info", Content: "start"},
		{Label: "tool: echo", Content: "[input] hi\n[output] Echoed: hi"},
	}, log.ReadAll())
}

func TestExecuteFailedAcquisitionNeverSucceeds(t *testing.T) {
	e := newEngine()
	log := memory.NewInMemoryLog()

	res := e.Execute(context.Background(), log, plan.Degenerate("Plan acquisition failed: connection refused"))

	assert.False(t, res.Success)
	assert.Equal(t, "[INFO] Plan acquisition failed: connection refused", res.Output)
	assert.Equal(t, []string{"Plan acquisition failed: connection refused"}, res.Errors)
	assert.Equal(t, 30, plan.Evaluate(res).Score)
}

func TestExecuteUnknownCapability(t *testing.T) {
	analyzer := &stubTool{name: ErrorAnalyzeCapability, outcome: tools.Success(`{"fix_commands": []}`)}
	e := newEngine(analyzer)
	log := memory.NewInMemoryLog()
	p := plan.New(plan.Tool("build_docs", "x"))

	sim := Simulate(e.Registry, p)
	assert.Equal(t, []string{"capability 'build_docs' not registered"}, sim.Warnings)
	assert.Equal(t, "Plan contains 1 step(s) and will attempt 0 tool call(s).", sim.PredictedOutcome)

	res := e.Execute(context.Background(), log, p)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"capability not found: build_docs"}, res.Errors)
	assert.Empty(t, analyzer.inputs, "unknown capabilities are not analyzed")

	_, ok := memory.Latest(log, memory.LabelExecutionError)
	assert.True(t, ok)
}

func TestUnknownCapabilityFailuresShareOneSeries(t *testing.T) {
	metrics := observability.NewMetrics("test")
	e := NewEngine(tools.NewRegistry(), nil, nil, metrics)

	e.Execute(context.Background(), memory.NewInMemoryLog(), plan.New(
		plan.Tool("build_docs", "x"),
		plan.Tool("deploy_everything", "y"),
	))

	n, err := testutil.GatherAndCount(metrics.Registry(), "test_capability_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecuteNonCriticalFailure(t *testing.T) {
	reflector := &stubTool{name: ReflectCapability, outcome: tools.Failure("LLM failed to generate reflection.")}
	analyzer := &stubTool{name: ErrorAnalyzeCapability, outcome: tools.Success("fix_commands")}
	e := newEngine(reflector, analyzer)

	res := e.Execute(context.Background(), memory.NewInMemoryLog(), plan.New(plan.Tool(ReflectCapability, "log")))

	assert.True(t, res.Success)
	assert.Equal(t, []string{"LLM failed to generate reflection."}, res.Errors)
	assert.Empty(t, analyzer.inputs)
}

func TestExecuteCriticalFailureRunsErrorAnalysis(t *testing.T) {
	failing := &stubTool{name: "run_command", outcome: tools.Outcome{Success: false}}
	analyzer := &stubTool{name: ErrorAnalyzeCapability, outcome: tools.Success(`{"fix_commands": ["gofmt -w ."]}`)}
	e := newEngine(failing, analyzer)
	log := memory.NewInMemoryLog()

	res := e.Execute(context.Background(), log, plan.New(plan.Tool("run_command", "git commit")))

	assert.False(t, res.Success)
	assert.Equal(t, []string{"Unknown error"}, res.Errors)
	assert.Equal(t, []string{"Unknown error"}, analyzer.inputs)
	analysis, ok := memory.Latest(log, memory.LabelErrorAnalysis)
	require.True(t, ok)
	assert.Contains(t, analysis, "gofmt")
}

func TestOutputChaining(t *testing.T) {
	first := &stubTool{name: "first", outcome: tools.Success("A")}
	e := newEngine(first, tools.NewEchoTool())

	res := e.Execute(context.Background(), memory.NewInMemoryLog(), plan.New(
		plan.Tool("echo", "$output[first]"),
		plan.Tool("first", ""),
		plan.Tool("echo", "$output[first]"),
		plan.Tool("echo", "see $output[first]"),
	))

	assert.Equal(t, "Echoed: (missing output for 'first')\nA\nEchoed: A\nEchoed: see $output[first]", res.Output)
}

func TestResolveInputUsesLatestOutput(t *testing.T) {
	outputs := map[string]string{"echo": "second"}
	assert.Equal(t, "second", ResolveInput("$output[echo]", outputs))
	assert.Equal(t, "(missing output for 'git_status')", ResolveInput("$output[git_status]", outputs))
	assert.Equal(t, "plain", ResolveInput("plain", outputs))
}

func TestConfirmationSkip(t *testing.T) {
	missing := "build_docs"
	e := newEngine(tools.NewEchoTool())
	e.Confirmer = answers{"echo": false, missing: false}
	log := memory.NewInMemoryLog()

	res := e.Execute(context.Background(), log, plan.New(plan.Tool("echo", "hi"), plan.Tool(missing, "x")))

	assert.True(t, res.Success, "skipped steps count as neither success nor failure")
	assert.Empty(t, res.Output)
	assert.Empty(t, res.Errors)
	assert.Empty(t, log.ReadAll())
}

func TestCriticalityPartition(t *testing.T) {
	assert.False(t, IsCritical("reflect"))
	assert.False(t, IsCritical("analyze_error"))
	for _, name := range []string{"run_command", "git_status", "echo", "llm", "never_registered"} {
		assert.True(t, IsCritical(name), name)
	}
}

func TestSimulateRegistered(t *testing.T) {
	e := newEngine(tools.NewEchoTool())
	sim := Simulate(e.Registry, plan.New(plan.Info("x"), plan.Tool("echo", "hi")))

	require.Len(t, sim.Warnings, 1)
	assert.Contains(t, sim.Warnings[0], "[TOOL] echo")
	assert.Contains(t, sim.Warnings[0], "will invoke capability echo")
	assert.Equal(t, "Plan contains 2 step(s) and will attempt 1 tool call(s).", sim.PredictedOutcome)
}
