package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	var seen []Phase
	tr := NewTracker(func(p Phase) { seen = append(seen, p) })
	assert.Equal(t, PhaseIdle, tr.Current())

	tr.Enter(PhasePlanning)
	tr.Enter(PhaseExecuting)

	assert.Equal(t, PhaseExecuting, tr.Current())
	assert.Equal(t, []Phase{PhasePlanning, PhaseExecuting}, tr.Phases())
	assert.Equal(t, seen, tr.Phases())
	assert.Equal(t, "reflecting", PhaseReflecting.String())
}

func TestLoggerWritesStructuredEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "debug", Format: "json"}).Component("engine").WithRunID("run-1")

	logger.LogToolResult("run_command", false, true, 20*time.Millisecond, "exit status 1")

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &event))
	assert.Equal(t, "tool_result", event["type"])
	assert.Equal(t, "engine", event["component"])
	assert.Equal(t, "run-1", event["run_id"])
	assert.Equal(t, "run_command", event["tool"])
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNopLogger()
	logger.Infof("nothing")
	logger.LogPlan("planner", 1, 1)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")
	m.RecordRun(true)
	m.RecordFailure("reflect", false)
	m.RecordFailure("run_command", true)
	m.RecordReplan()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("run_command", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replans))

	var disabled *Metrics
	disabled.RecordRun(false)
	disabled.ObserveCapability("echo", time.Second)
	assert.Nil(t, disabled.Registry())
}
