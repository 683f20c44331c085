package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rahul/autopilot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	reply  string
	err    error
	prompt string
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if tp, ok := messages[0].Parts[0].(llms.TextContent); ok {
			m.prompt = tp.Text
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestClientGenerateTrimsOutput(t *testing.T) {
	model := &stubModel{reply: "  {\"plan\": []}\n"}
	c := NewClient(model, "stub", nil)

	out, err := c.Generate(context.Background(), "make a plan")
	require.NoError(t, err)
	assert.Equal(t, `{"plan": []}`, out)
	assert.Equal(t, "make a plan", model.prompt)
}

func TestClientGenerateEmpty(t *testing.T) {
	c := NewClient(&stubModel{reply: "   "}, "stub", nil)

	_, err := c.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClientGenerateWrapsBackendError(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewClient(&stubModel{err: boom}, "stub", nil)

	_, err := c.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewFromConfigUnknownProvider(t *testing.T) {
	_, err := NewFromConfig("carrier-pigeon", config.ProviderConfig{Model: "m"}, nil)
	assert.Error(t, err)
}
