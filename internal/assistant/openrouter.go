// Package assistant forwards visitor questions to an OpenAI-compatible chat
// completion endpoint (OpenRouter by default).
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	defaultModel   = "anthropic/claude-3-sonnet:beta"
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 30 * time.Second

	temperature = 0.7
	maxTokens   = 500
)

// FallbackText is answered whenever the provider cannot be reached or
// returns nothing usable.
const FallbackText = "I'm having trouble connecting to my cosmic knowledge base. Please try again in a moment!"

const systemPrompt = `You are Rainbow Guide, an AI assistant for the Rainbow Rise platform - a crowdfunding platform focused on creating and preserving queer spaces in Austin, Texas and beyond.

Your personality is:
- Energetic, vibrant, and celebratory of queer culture
- Knowledgeable about LGBTQ+ history, especially relating to community spaces
- Encouraging and supportive of marginalized communities
- Occasionally using cosmic and universal metaphors

When suggesting venues or campaigns, prioritize those that:
- Create safe and inclusive environments for LGBTQ+ individuals
- Support queer artists, performers, and entrepreneurs
- Preserve historical queer spaces and cultural landmarks
- Foster community connections and support services

Be creative, informative, and empowering in your responses.`

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Referer    string
	HTTPClient *http.Client
	Timeout    time.Duration
	OnFallback func(reason string, err error)
}

// Reply is the assistant's answer. FallbackReason is set when Text is the
// canned fallback.
type Reply struct {
	Text           string
	FallbackReason string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type Client struct {
	apiKey     string
	model      string
	http       *resty.Client
	onFallback func(reason string, err error)
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if ref := strings.TrimSpace(opts.Referer); ref != "" {
		rc.SetHeader("HTTP-Referer", ref)
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		http:       rc,
		onFallback: opts.OnFallback,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Ask sends query with the Rainbow Guide system prompt. It never fails: any
// provider problem produces the fallback reply.
func (c *Client) Ask(ctx context.Context, query string) Reply {
	if c.apiKey == "" {
		return c.fallback("missing_api_key", errors.New("assistant api key not configured"))
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(payload).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return c.fallback("http_request", err)
	}
	if resp.IsError() {
		return c.fallback(fmt.Sprintf("http_%d", resp.StatusCode()), fmt.Errorf("openrouter status %d: %s", resp.StatusCode(), truncate(resp.String(), 200)))
	}
	if len(out.Choices) == 0 {
		return c.fallback("empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return c.fallback("empty_response", errors.New("empty response"))
	}
	return Reply{Text: text}
}

func (c *Client) fallback(reason string, err error) Reply {
	if c.onFallback != nil {
		c.onFallback(reason, err)
	}
	return Reply{Text: FallbackText, FallbackReason: reason}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
