package observability

import (
	"sync"
	"time"
)

// Phase is a state of the orchestration loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanning
	PhaseSimulating
	PhaseExecuting
	PhaseEvaluating
	PhaseReflecting
	PhaseReplanning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanning:
		return "planning"
	case PhaseSimulating:
		return "simulating"
	case PhaseExecuting:
		return "executing"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseReflecting:
		return "reflecting"
	case PhaseReplanning:
		return "replanning"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Transition records one phase change.
type Transition struct {
	Phase Phase
	At    time.Time
}

// Tracker records the phases a run passes through.
type Tracker struct {
	mu      sync.RWMutex
	current Phase
	history []Transition
	onEnter func(Phase)
}

// NewTracker returns a tracker in the idle phase. onEnter, if set, is called
// on every transition.
func NewTracker(onEnter func(Phase)) *Tracker {
	return &Tracker{current: PhaseIdle, onEnter: onEnter}
}

// Enter moves the tracker to p.
func (t *Tracker) Enter(p Phase) {
	t.mu.Lock()
	t.current = p
	t.history = append(t.history, Transition{Phase: p, At: time.Now()})
	cb := t.onEnter
	t.mu.Unlock()

	if cb != nil {
		cb(p)
	}
}

// Current returns the phase the tracker is in.
func (t *Tracker) Current() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Phases returns the ordered list of phases entered so far.
func (t *Tracker) Phases() []Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Phase, len(t.history))
	for i, tr := range t.history {
		out[i] = tr.Phase
	}
	return out
}
