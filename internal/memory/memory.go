// Package memory holds the append-only audit log shared by the planner,
// the execution engine and the orchestration loop.
package memory

import (
	"fmt"
	"strings"
	"sync"
)

// Labels written by the runtime.
const (
	LabelPlanning       = "planning"
	LabelReplanner      = "replanner"
	LabelInfo           = "info"
	LabelExecutionError = "execution_error"
	LabelErrorAnalysis  = "error_analysis"
	LabelReflect        = "reflect"
)

// ToolLabel is the label for a successful capability invocation.
func ToolLabel(name string) string {
	return "tool: " + name
}

// Entry is one audit record.
type Entry struct {
	Label   string
	Content string
}

// Log is an append-only, ordered audit log.
type Log interface {
	Append(label, content string)
	ReadAll() []Entry
}

// InMemoryLog keeps entries in process memory.
type InMemoryLog struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

func (l *InMemoryLog) Append(label, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Label: label, Content: content})
}

// ReadAll returns a copy of every entry in insertion order.
func (l *InMemoryLog) ReadAll() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns the content of the most recent entry with label.
func Latest(log Log, label string) (string, bool) {
	entries := log.ReadAll()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Label == label {
			return entries[i].Content, true
		}
	}
	return "", false
}

// Dump renders the log as "[label] content" lines.
func Dump(log Log) string {
	entries := log.ReadAll()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("[%s] %s", e.Label, e.Content)
	}
	return strings.Join(lines, "\n")
}
