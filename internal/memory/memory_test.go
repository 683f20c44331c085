package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLogOrderAndLatest(t *testing.T) {
	log := NewInMemoryLog()
	log.Append(LabelReflect, "first reflection")
	log.Append(ToolLabel("echo"), "[input] hi")
	log.Append(LabelReflect, "second reflection")

	entries := log.ReadAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "tool: echo", entries[1].Label)

	got, ok := Latest(log, LabelReflect)
	assert.True(t, ok)
	assert.Equal(t, "second reflection", got)

	_, ok = Latest(log, LabelErrorAnalysis)
	assert.False(t, ok)

	assert.Equal(t, "[reflect] first reflection\n[tool: echo] [input] hi\n[reflect] second reflection", Dump(log))
}

func TestReadAllReturnsCopy(t *testing.T) {
	log := NewInMemoryLog()
	log.Append(LabelInfo, "a")

	entries := log.ReadAll()
	entries[0].Content = "mutated"

	assert.Equal(t, "a", log.ReadAll()[0].Content)
}

type recordingSink struct {
	seqs []int
	err  error
}

func (s *recordingSink) Record(runID string, seq int, label, content string) error {
	s.seqs = append(s.seqs, seq)
	return s.err
}

func TestMirroredForwardsAndSwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{}
	var reported []error
	log := NewMirrored("run-1", sink, func(err error) { reported = append(reported, err) })

	log.Append(LabelInfo, "a")
	sink.err = errors.New("disk full")
	log.Append(LabelInfo, "b")

	assert.Equal(t, []int{1, 2}, sink.seqs)
	assert.Len(t, reported, 1)
	assert.Len(t, log.ReadAll(), 2)
	assert.Equal(t, "run-1", log.RunID())
}
