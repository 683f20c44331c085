// Package governance decides which capability invocations may run
// without asking the operator.
package governance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rahul/autopilot/internal/memory"
	"github.com/rahul/autopilot/internal/observability"
	"github.com/rahul/autopilot/pkg/config"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request is a capability invocation awaiting confirmation.
type Request struct {
	Capability string
	Input      string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates capability invocations against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies by capability name or input pattern and
// allows everything else.
type DefaultPolicyEngine struct {
	DeniedCapabilities map[string]bool
	DeniedInputs       []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedCapabilities: make(map[string]bool),
	}
}

// commandStart matches the start of a shell command: the beginning of
// the input or a separator, with an optional sudo.
const commandStart = `(?:^|[;&|]\s*)(?:sudo\s+)?`

// DefaultDenyPatterns block destructive commands whatever the config says.
// Only commands in command position match, and rm only on / itself.
var DefaultDenyPatterns = []string{
	commandStart + `rm\s+-(?:rf|fr|Rf|fR)\s+/\*?(?:\s|;|$)`,
	commandStart + `mkfs(?:\.\w+)?\b`,
	commandStart + `(?:shutdown|reboot|poweroff|halt)\b`,
}

// FromConfig builds an engine from the governance section on top of
// DefaultDenyPatterns.
func FromConfig(cfg config.GovernanceConfig) (*DefaultPolicyEngine, error) {
	e := NewDefaultPolicyEngine()
	for _, name := range cfg.DenyTools {
		e.DenyCapability(name)
	}
	patterns := append(append([]string{}, DefaultDenyPatterns...), cfg.DenyPatterns...)
	for _, pattern := range patterns {
		if err := e.DenyInput(pattern); err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", pattern, err)
		}
	}
	return e, nil
}

func (e *DefaultPolicyEngine) DenyCapability(name string) {
	e.DeniedCapabilities[name] = true
}

func (e *DefaultPolicyEngine) DenyInput(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedInputs = append(e.DeniedInputs, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedCapabilities[req.Capability] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Capability '%s' is restricted by system policy", req.Capability),
		}, nil
	}

	for _, re := range e.DeniedInputs {
		if re.MatchString(req.Input) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Input matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}

// Confirmer answers the per-step confirmation question.
type Confirmer interface {
	Confirm(ctx context.Context, capability, input string) bool
}

// Gate consults the policy before the next confirmer. A denial answers
// "no" without asking and is noted in Audit when set; an allowed call is
// passed on.
type Gate struct {
	Policy PolicyEngine
	Next   Confirmer
	Logger *observability.Logger
	Audit  memory.Log
}

func NewGate(policy PolicyEngine, next Confirmer, logger *observability.Logger) *Gate {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Gate{Policy: policy, Next: next, Logger: logger}
}

func (g *Gate) Confirm(ctx context.Context, capability, input string) bool {
	res, err := g.Policy.Evaluate(ctx, Request{Capability: capability, Input: input})
	if err != nil {
		g.Logger.Warnf("policy evaluation failed for %s: %v", capability, err)
	} else {
		g.Logger.LogPolicyCheck(capability, string(res.Effect), res.Reason)
		if res.Effect == EffectDeny {
			if g.Audit != nil {
				g.Audit.Append(memory.LabelInfo, fmt.Sprintf("Policy denied %s (`%s`): %s", capability, input, res.Reason))
			}
			return false
		}
	}
	if g.Next == nil {
		return true
	}
	return g.Next.Confirm(ctx, capability, input)
}

// AutoConfirm approves every invocation.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, string, string) bool {
	return true
}
