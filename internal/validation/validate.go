package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusCapability is the only capability that takes no input.
const StatusCapability = "git_status"

const (
	refOpen  = "$output["
	refClose = "]"
)

// Document is the wire shape of a plan.
type Document struct {
	Plan []json.RawMessage `json:"plan"`
}

// Validate checks each raw step against the plan wire format and the
// set of known capability names. It never fails; problems are returned
// as warnings in step order.
func Validate(steps []json.RawMessage, known []string) []ValidationError {
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}

	var errs []ValidationError
	produced := make(map[string]bool)

	for i, raw := range steps {
		for _, key := range duplicateKeys(raw) {
			errs = append(errs, ValidationError{Kind: DuplicateKey, Step: i, Value: key})
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			errs = append(errs, ValidationError{Kind: MissingField, Step: i, Value: "type"})
			continue
		}

		typeRaw, ok := fields["type"]
		if !ok {
			errs = append(errs, ValidationError{Kind: MissingField, Step: i, Value: "type"})
			continue
		}
		stepType, ok := stringValue(typeRaw)
		if !ok {
			errs = append(errs, ValidationError{
				Kind:       CapabilityInputMismatch,
				Step:       i,
				Capability: "<unknown>",
				Reason:     "Field 'type' must be a string",
			})
			continue
		}

		switch stepType {
		case "tool":
			name, ok := stringValue(fields["name"])
			if !ok {
				errs = append(errs, ValidationError{Kind: MissingField, Step: i, Value: "name"})
				continue
			}
			if !knownSet[name] {
				errs = append(errs, ValidationError{Kind: InvalidCapability, Step: i, Value: name})
			}

			inputRaw, hasInput := fields["input"]
			if name != StatusCapability && (!hasInput || isNull(inputRaw)) {
				errs = append(errs, ValidationError{Kind: MissingField, Step: i, Value: "input"})
			}
			if input, ok := stringValue(inputRaw); ok {
				if strings.Contains(input, "<") && strings.Contains(input, ">") {
					errs = append(errs, ValidationError{
						Kind:       CapabilityInputMismatch,
						Step:       i,
						Capability: name,
						Reason:     "Input contains placeholder like <file>",
					})
				}
				errs = append(errs, checkReferences(i, input, produced)...)
			}
			produced[name] = true
		case "info":
			if _, ok := fields["message"]; !ok {
				errs = append(errs, ValidationError{Kind: MissingField, Step: i, Value: "message"})
			}
		default:
			errs = append(errs, ValidationError{Kind: UnknownStepType, Step: i, Value: stepType})
		}
	}

	return errs
}

// ValidateDocument parses a whole {"plan": [...]} document and validates
// its steps.
func ValidateDocument(data []byte, known []string) ([]ValidationError, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plan document: %w", err)
	}
	return Validate(doc.Plan, known), nil
}

// ParseReference reports the key of a whole-input $output[key] reference.
func ParseReference(input string) (string, bool) {
	if !strings.HasPrefix(input, refOpen) || !strings.HasSuffix(input, refClose) {
		return "", false
	}
	key := input[len(refOpen) : len(input)-len(refClose)]
	if key == "" || strings.Contains(key, refClose) {
		return "", false
	}
	return key, true
}

func checkReferences(step int, input string, produced map[string]bool) []ValidationError {
	if !strings.Contains(input, refOpen) {
		return nil
	}

	var errs []ValidationError
	whole, isWhole := ParseReference(input)

	rest := input
	for {
		start := strings.Index(rest, refOpen)
		if start < 0 {
			break
		}
		rest = rest[start+len(refOpen):]
		end := strings.Index(rest, refClose)
		if end < 0 {
			errs = append(errs, ValidationError{Kind: PatternError, Step: step, Value: "unclosed $output[ in " + input})
			break
		}
		key := rest[:end]
		rest = rest[end+len(refClose):]

		if key == "" {
			errs = append(errs, ValidationError{Kind: PatternError, Step: step, Value: "empty $output[] reference"})
			continue
		}
		if !produced[key] {
			errs = append(errs, ValidationError{Kind: InvalidOutputReference, Step: step, Value: key})
		}
		if !isWhole || key != whole {
			errs = append(errs, ValidationError{
				Kind:  StyleWarning,
				Step:  step,
				Value: fmt.Sprintf("$output[%s] is only substituted when it is the entire input", key),
			})
		}
	}
	return errs
}

// stringValue reports a JSON string. null decodes into a string without
// error, so it is rejected here.
func stringValue(raw json.RawMessage) (string, bool) {
	if raw == nil || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// duplicateKeys scans the top level of a JSON object and returns keys
// that occur more than once. encoding/json keeps the last value silently.
func duplicateKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	seen := make(map[string]bool)
	var dups []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return dups
		}
		key, ok := tok.(string)
		if !ok {
			return dups
		}
		if seen[key] {
			dups = append(dups, key)
		}
		seen[key] = true

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return dups
		}
	}
	return dups
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
