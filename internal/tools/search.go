package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

type SearchTool struct {
	client *duckduckgo.Tool
}

func NewSearchTool(maxResults int) (*SearchTool, error) {
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &SearchTool{client: ddg}, nil
}

func (s *SearchTool) Name() string {
	return "web_search"
}

func (s *SearchTool) Description() string {
	return "Search the web using DuckDuckGo for real-time information."
}

func (s *SearchTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        s.Name(),
		Description: s.Description(),
		InputHint:   "The search query as plain text.",
		Tags:        []string{"web", "search"},
	}
}

func (s *SearchTool) Execute(ctx context.Context, input string) Outcome {
	query := strings.TrimSpace(input)
	if query == "" {
		return Failure("search failed: empty query")
	}

	res, err := s.client.Call(ctx, query)
	if err != nil {
		return Failure(fmt.Sprintf("search failed: %v", err))
	}
	return Success(res)
}
