package planner

import (
	"regexp"
	"strings"
)

// disallowedTypes are step types models invent for control flow. They
// are downgraded to info steps.
var disallowedTypes = []string{
	"conditional", "if", "else", "loop", "while", "for",
	"switch", "when", "branch", "test", "check",
}

var (
	typeValueRe      = regexp.MustCompile(`\{\s*"type"\s*:\s*"([A-Za-z0-9_\-]+)"`)
	disallowedTypeRe = regexp.MustCompile(`(?i)"type"\s*:\s*"(?:` + strings.Join(disallowedTypes, "|") + `)"`)
	planKeyRe        = regexp.MustCompile(`^\{\s*"plan"\s*:\s*\[`)
)

// StripReasoning discards everything up to and including the last
// occurrence of marker.
func StripReasoning(text, marker string) string {
	if marker == "" {
		return text
	}
	if i := strings.LastIndex(text, marker); i >= 0 {
		return text[i+len(marker):]
	}
	return text
}

// Clean drops code fences, markdown headings, divider lines and blank
// lines.
func Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "```"):
		case strings.HasPrefix(trimmed, "#"):
		case isDivider(trimmed):
		default:
			kept = append(kept, strings.TrimRight(line, " \t\r"))
		}
	}
	return strings.Join(kept, "\n")
}

func isDivider(line string) bool {
	if len(line) < 3 {
		return false
	}
	return strings.Trim(line, "-") == "" || strings.Trim(line, "*") == "" || strings.Trim(line, "=") == ""
}

// ExtractPlan returns the first balanced {"plan": [...]} object in text.
func ExtractPlan(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' || !planKeyRe.MatchString(text[i:]) {
			continue
		}
		if end := matchBrace(text, i); end > 0 {
			return text[i : end+1], true
		}
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start,
// ignoring braces inside string literals, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				if c != '}' {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

// Repair rewrites common model mistakes so the document parses:
// comments and trailing commas are removed, known capability names used
// as a step type are wrapped into tool steps and control-flow step
// types become info steps.
func Repair(doc string, known []string) string {
	doc = stripComments(doc)
	doc = dropTrailingCommas(doc)

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	doc = typeValueRe.ReplaceAllStringFunc(doc, func(m string) string {
		name := typeValueRe.FindStringSubmatch(m)[1]
		if name == "tool" || name == "info" || !knownSet[name] {
			return m
		}
		return `{"type": "tool", "name": "` + name + `"`
	})

	return disallowedTypeRe.ReplaceAllString(doc, `"type": "info"`)
}

// stripComments removes // and /* */ comments outside string literals.
func stripComments(s string) string {
	var b strings.Builder
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}

// dropTrailingCommas removes commas directly followed by a closing
// bracket or brace, outside string literals.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}
