package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripReasoningUsesLastMarker(t *testing.T) {
	in := "<think>a</think> maybe </think>{\"plan\": []}"
	assert.Equal(t, `{"plan": []}`, StripReasoning(in, "</think>"))
	assert.Equal(t, "no marker", StripReasoning("no marker", "</think>"))
	assert.Equal(t, "x</think>y", StripReasoning("x</think>y", ""))
}

func TestClean(t *testing.T) {
	in := "# Plan\n\n```json\n{\"plan\": [\n---\n  {\"type\": \"info\", \"message\": \"a\"}\n]}\n```\n***\n"
	assert.Equal(t, "{\"plan\": [\n  {\"type\": \"info\", \"message\": \"a\"}\n]}", Clean(in))
}

func TestExtractPlan(t *testing.T) {
	in := `Sure! {"note": "x"} {"plan": [{"type": "info", "message": "a } b"}]} trailing {"plan": []}`
	doc, ok := ExtractPlan(in)
	require.True(t, ok)
	assert.Equal(t, `{"plan": [{"type": "info", "message": "a } b"}]}`, doc)

	_, ok = ExtractPlan(`{"plan": [{"type": "info"`)
	assert.False(t, ok)

	_, ok = ExtractPlan(`{"steps": []}`)
	assert.False(t, ok)
}

func TestRepair(t *testing.T) {
	known := []string{"echo", "git_status"}
	in := `{"plan": [
		{"type": "git_status"}, // check first
		/* then talk */
		{"type": "echo", "input": "http://example.com"},
		{"type": "conditional", "message": "if clean"},
		{"type": "Loop", "message": "again"},
		{"type": "unknown_cap", "input": "x"},
	]}`

	out := Repair(in, known)

	var doc struct {
		Plan []map[string]string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Plan, 5)
	assert.Equal(t, map[string]string{"type": "tool", "name": "git_status"}, doc.Plan[0])
	assert.Equal(t, map[string]string{"type": "tool", "name": "echo", "input": "http://example.com"}, doc.Plan[1])
	assert.Equal(t, "info", doc.Plan[2]["type"])
	assert.Equal(t, "info", doc.Plan[3]["type"])
	assert.Equal(t, "unknown_cap", doc.Plan[4]["type"])
}

func TestRepairKeepsStringContents(t *testing.T) {
	in := `{"plan": [{"type": "info", "message": "a, ] // not a comment"}]}`
	assert.Equal(t, in, Repair(in, nil))
}

func TestConvertStep(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"tool", `{"type": "tool", "name": "echo", "input": "hi"}`, `ToolCall{echo, "hi"}`, true},
		{"tool without input", `{"type": "tool", "name": "git_status"}`, `ToolCall{git_status, ""}`, true},
		{"structured input", `{"type": "tool", "name": "workspace", "input": {"command": "list"}}`, `ToolCall{workspace, "{\"command\":\"list\"}"}`, true},
		{"tool without name", `{"type": "tool", "input": "x"}`, "", false},
		{"info", `{"type": "info", "message": "hello"}`, `Info("hello")`, true},
		{"info from description", `{"type": "info", "description": "check"}`, `Info("check")`, true},
		{"info from step", `{"type": "info", "x": 1}`, `Info("{\"type\":\"info\",\"x\":1}")`, true},
		{"unknown type", `{"type": "nope"}`, "", false},
		{"null input", `{"type": "tool", "name": "echo", "input": null}`, `ToolCall{echo, ""}`, true},
		{"null name", `{"type": "tool", "name": null, "input": "x"}`, "", false},
		{"null message", `{"type": "info", "message": null, "text": "fallback"}`, `Info("fallback")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, ok := convertStep(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, step.String())
			}
		})
	}
}
