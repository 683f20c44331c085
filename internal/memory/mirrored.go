package memory

import "sync"

// Sink receives a copy of every entry appended to a Mirrored log.
type Sink interface {
	Record(runID string, seq int, label, content string) error
}

// Mirrored is an in-memory log that forwards entries to a Sink. Reads are
// always served from memory; sink errors go to onError and never reach
// the caller of Append.
type Mirrored struct {
	InMemoryLog

	runID   string
	sink    Sink
	onError func(error)

	seqMu sync.Mutex
	seq   int
}

func NewMirrored(runID string, sink Sink, onError func(error)) *Mirrored {
	return &Mirrored{runID: runID, sink: sink, onError: onError}
}

func (m *Mirrored) Append(label, content string) {
	m.seqMu.Lock()
	defer m.seqMu.Unlock()

	m.InMemoryLog.Append(label, content)
	m.seq++
	if m.sink == nil {
		return
	}
	if err := m.sink.Record(m.runID, m.seq, label, content); err != nil && m.onError != nil {
		m.onError(err)
	}
}

// RunID returns the id entries are recorded under.
func (m *Mirrored) RunID() string {
	return m.runID
}
