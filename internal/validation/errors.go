// Package validation checks untrusted plan documents before they are
// converted into typed plans. It only reports; it never rejects.
package validation

import "fmt"

// Kind names a class of structural problem in a plan step.
type Kind int

const (
	UnknownStepType Kind = iota
	DuplicateKey
	MissingField
	InvalidCapability
	InvalidOutputReference
	CapabilityInputMismatch
	PatternError
	StyleWarning
)

var kindNames = map[Kind]string{
	UnknownStepType:         "unknown_step_type",
	DuplicateKey:            "duplicate_key",
	MissingField:            "missing_field",
	InvalidCapability:       "invalid_capability",
	InvalidOutputReference:  "invalid_output_reference",
	CapabilityInputMismatch: "capability_input_mismatch",
	PatternError:            "pattern_error",
	StyleWarning:            "style_warning",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ValidationError is a single warning about one step of a plan.
type ValidationError struct {
	Kind Kind
	// Step is the zero-based index of the offending step.
	Step int
	// Value is the field, type, capability or reference involved.
	Value string
	// Capability and Reason are set for CapabilityInputMismatch.
	Capability string
	Reason     string
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case UnknownStepType:
		return fmt.Sprintf("step %d: unknown step type %q", e.Step, e.Value)
	case DuplicateKey:
		return fmt.Sprintf("step %d: duplicate key %q", e.Step, e.Value)
	case MissingField:
		return fmt.Sprintf("step %d: missing field %q", e.Step, e.Value)
	case InvalidCapability:
		return fmt.Sprintf("step %d: unknown capability %q", e.Step, e.Value)
	case InvalidOutputReference:
		return fmt.Sprintf("step %d: reference to output of %q which no earlier step produces", e.Step, e.Value)
	case CapabilityInputMismatch:
		return fmt.Sprintf("step %d: input for %s rejected: %s", e.Step, e.Capability, e.Reason)
	case PatternError:
		return fmt.Sprintf("step %d: malformed output reference: %s", e.Step, e.Value)
	case StyleWarning:
		return fmt.Sprintf("step %d: %s", e.Step, e.Value)
	default:
		return fmt.Sprintf("step %d: invalid step", e.Step)
	}
}

// Hint returns a display message and, when one helps, a corrected
// example fragment.
func (e ValidationError) Hint() (string, map[string]any) {
	switch e.Kind {
	case UnknownStepType:
		return "Unknown step type. Only 'tool' or 'info' are valid.",
			map[string]any{"type": "tool", "name": "example_tool", "input": "..."}
	case DuplicateKey:
		return "Duplicate key in step. Only one of each key is allowed.", nil
	case MissingField:
		return "Missing required field.", map[string]any{e.Value: "<required>"}
	case InvalidCapability:
		return "Unknown capability used. Make sure it's registered.",
			map[string]any{"name": e.Value, "input": "..."}
	case InvalidOutputReference:
		return "Reference to output of nonexistent step.", map[string]any{"reference": e.Value}
	case CapabilityInputMismatch:
		return "Capability input is invalid or unsafe.",
			map[string]any{"tool": e.Capability, "reason": e.Reason}
	case PatternError:
		return "Malformed $output[...] reference.", map[string]any{"error": e.Value}
	case StyleWarning:
		return e.Value, nil
	default:
		return e.Error(), nil
	}
}
