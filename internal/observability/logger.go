package observability

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeValidation  EventType = "validation"
	EventTypePhase       EventType = "phase"
	EventTypeLLM         EventType = "llm"
)

// LogConfig controls where and how events are written.
type LogConfig struct {
	Level  string // trace, debug, info, warn, error
	Format string // json or console
	LLMLog string // JSONL file receiving prompt/response pairs; empty disables it
}

// Logger handles structured logging.
type Logger struct {
	zlog zerolog.Logger
	llm  *llmLog
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, cfg LogConfig) *Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	l := &Logger{
		zlog: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
	if cfg.LLMLog != "" {
		l.llm = &llmLog{path: cfg.LLMLog, maxSize: 10 * 1024 * 1024}
	}
	return l
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("component", name).Logger(),
		llm:  l.llm,
	}
}

// WithRunID returns a child logger tagged with the run id.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("run_id", runID).Logger(),
		llm:  l.llm,
	}
}

// Zerolog exposes the underlying logger for callers that need raw events.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

func (l *Logger) event(lvl zerolog.Level, typ EventType) *zerolog.Event {
	return l.zlog.WithLevel(lvl).Str("type", string(typ))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zlog.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zlog.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zlog.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zlog.Error().Msgf(format, args...)
}

// Helper methods for common events

func (l *Logger) LogPhase(phase Phase) {
	l.event(zerolog.DebugLevel, EventTypePhase).Str("phase", phase.String()).Send()
}

func (l *Logger) LogPlan(source string, steps int, toolCalls int) {
	l.event(zerolog.InfoLevel, EventTypePlan).
		Str("source", source).
		Int("steps", steps).
		Int("tool_calls", toolCalls).
		Msg("plan acquired")
}

func (l *Logger) LogValidation(kind, detail, hint string) {
	l.event(zerolog.WarnLevel, EventTypeValidation).
		Str("kind", kind).
		Str("hint", hint).
		Msg(detail)
}

func (l *Logger) LogStep(index int, step string) {
	l.event(zerolog.DebugLevel, EventTypeStep).Int("index", index).Msg(step)
}

func (l *Logger) LogToolCall(tool, input string) {
	l.event(zerolog.InfoLevel, EventTypeToolCall).
		Str("tool", tool).
		Str("input", input).
		Send()
}

func (l *Logger) LogToolResult(tool string, success, critical bool, elapsed time.Duration, detail string) {
	lvl := zerolog.InfoLevel
	if !success {
		lvl = zerolog.WarnLevel
	}
	l.event(lvl, EventTypeToolResult).
		Str("tool", tool).
		Bool("success", success).
		Bool("critical", critical).
		Dur("elapsed", elapsed).
		Msg(detail)
}

func (l *Logger) LogPolicyCheck(tool, effect, reason string) {
	l.event(zerolog.InfoLevel, EventTypePolicyCheck).
		Str("tool", tool).
		Str("effect", effect).
		Msg(reason)
}

// LogLLM records a prompt/response pair. The pair also goes to the LLM log
// file when one is configured.
func (l *Logger) LogLLM(model, prompt, response string, err error) {
	evt := l.event(zerolog.DebugLevel, EventTypeLLM).
		Str("model", model).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(response))
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Send()

	if l.llm != nil {
		l.llm.write(map[string]any{
			"type":      EventTypeLLM,
			"model":     model,
			"prompt":    prompt,
			"response":  response,
			"error":     errString(err),
			"timestamp": time.Now(),
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// llmLog appends JSON lines to a file, keeping one rotated copy.
type llmLog struct {
	mu      sync.Mutex
	path    string
	maxSize int64
}

func (f *llmLog) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal llm event: %v", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(f.path)
	if err == nil && info.Size() > f.maxSize {
		f.rotate()
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (f *llmLog) rotate() {
	// Simple rotation: keep one .old file
	oldPath := f.path + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(f.path, oldPath)
}
