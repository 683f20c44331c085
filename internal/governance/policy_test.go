package governance

import (
	"context"
	"strings"
	"testing"

	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/pkg/config"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	res1, err := engine.Evaluate(ctx, Request{Capability: "echo", Input: "hi"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyCapability("run_command")
	res2, err := engine.Evaluate(ctx, Request{Capability: "run_command", Input: "ls"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestFromConfig(t *testing.T) {
	engine, err := FromConfig(config.GovernanceConfig{DenyPatterns: []string{`rm\s+-rf`}})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	res, _ := engine.Evaluate(context.Background(), Request{Capability: "run_command", Input: "rm -rf /"})
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res.Effect)
	}

	if _, err := FromConfig(config.GovernanceConfig{DenyPatterns: []string{"("}}); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}

type countingConfirmer struct {
	calls  int
	answer bool
}

func (c *countingConfirmer) Confirm(context.Context, string, string) bool {
	c.calls++
	return c.answer
}

func TestGate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	engine.DenyCapability("run_command")
	next := &countingConfirmer{answer: true}
	gate := NewGate(engine, next, nil)
	ctx := context.Background()

	if gate.Confirm(ctx, "run_command", "ls") {
		t.Error("denied capability must not be confirmed")
	}
	if next.calls != 0 {
		t.Error("denied capability must not reach the operator")
	}
	if !gate.Confirm(ctx, "echo", "hi") || next.calls != 1 {
		t.Error("allowed capability should be passed to the next confirmer")
	}

	if !NewGate(engine, nil, nil).Confirm(ctx, "echo", "hi") {
		t.Error("a gate without a next confirmer approves allowed calls")
	}
}

func TestDefaultDenyPatterns(t *testing.T) {
	engine, err := FromConfig(config.GovernanceConfig{})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	tests := []struct {
		input string
		deny  bool
	}{
		{"rm -rf /", true},
		{"rm -rf /*", true},
		{"cd /tmp && sudo rm -rf /", true},
		{"mkfs.ext4 /dev/sda1", true},
		{"sudo shutdown -h now", true},
		{"make; reboot", true},
		{"rm -rf /tmp/build", false},
		{"rm -rf ./dist", false},
		{"grep -r shutdown docs/", false},
		{"git log --grep=reboot", false},
		{"echo mkfs", false},
	}
	for _, tt := range tests {
		res, _ := engine.Evaluate(context.Background(), Request{Capability: "run_command", Input: tt.input})
		if got := res.Effect == EffectDeny; got != tt.deny {
			t.Errorf("%q: denied=%v, want %v", tt.input, got, tt.deny)
		}
	}
}

func TestGateAuditsDenials(t *testing.T) {
	engine, err := FromConfig(config.GovernanceConfig{})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	log := memory.NewInMemoryLog()
	gate := NewGate(engine, &countingConfirmer{answer: true}, nil)
	gate.Audit = log

	if gate.Confirm(context.Background(), "run_command", "sudo reboot") {
		t.Fatal("reboot must be denied")
	}
	entries := log.ReadAll()
	if len(entries) != 1 || entries[0].Label != memory.LabelInfo {
		t.Fatalf("expected one info entry, got %v", entries)
	}
	if !strings.HasPrefix(entries[0].Content, "Policy denied run_command") {
		t.Errorf("unexpected audit entry: %s", entries[0].Content)
	}

	if !gate.Confirm(context.Background(), "echo", "hi") || len(log.ReadAll()) != 1 {
		t.Error("allowed calls are not audited by the gate")
	}
}
