package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const maxScrapedChars = 50000

type ScraperTool struct {
	UserAgent string
	Client    *http.Client
}

func NewScraperTool() *ScraperTool {
	return &ScraperTool{
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ScraperTool) Name() string {
	return "fetch_url"
}

func (s *ScraperTool) Description() string {
	return "Fetch a webpage URL and extract the main content as clean, sanitized text."
}

func (s *ScraperTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        s.Name(),
		Description: s.Description(),
		InputHint:   "The full URL of the page (e.g. https://example.com/article)",
		Tags:        []string{"web", "fetch"},
	}
}

func (s *ScraperTool) Execute(ctx context.Context, input string) Outcome {
	rawURL := strings.TrimSpace(input)

	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return Failure(fmt.Sprintf("failed to parse URL: %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Failure(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return Failure(fmt.Sprintf("failed to fetch URL: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure(fmt.Sprintf("failed to fetch URL: status code %d", resp.StatusCode))
	}

	// Use readability to extract content
	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return Failure(fmt.Sprintf("failed to parse article: %v", err))
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	sanitized := bluemonday.StrictPolicy().Sanitize(article.TextContent)

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		fmt.Fprintf(&b, "EXCERPT: %s\n", article.Excerpt)
	}
	b.WriteString("\n-- CONTENT --\n")

	if len(sanitized) > maxScrapedChars {
		sanitized = sanitized[:maxScrapedChars] + "\n... (content truncated) ..."
	}
	b.WriteString(sanitized)

	return Success(b.String())
}
