// Package imagegen generates campaign artwork through an OpenAI-images
// compatible API.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"rainbowrise/internal/storage"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "dall-e-3"
	defaultSize    = "1024x1024"
	defaultTimeout = 90 * time.Second

	// MinPromptLength is the shortest prompt accepted.
	MinPromptLength = 3
)

var (
	ErrMissingAPIKey = errors.New("imagegen: API key is missing")
	ErrNoStore       = errors.New("imagegen: no object store for inline image data")
)

// ProviderError wraps any failure reported by or while talking to the image API.
type ProviderError struct {
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Message != "" && e.Status > 0:
		return fmt.Sprintf("imagegen: provider status %d: %s", e.Status, e.Message)
	case e.Message != "":
		return "imagegen: " + e.Message
	case e.Err != nil:
		return "imagegen: " + e.Err.Error()
	default:
		return fmt.Sprintf("imagegen: provider status %d", e.Status)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Size       string
	HTTPClient *http.Client
	Timeout    time.Duration
	Store      storage.ObjectStore
	// NewKey names stored objects. Defaults to generated/<uuid>.png.
	NewKey func() string
}

type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	size   string
	store  storage.ObjectStore
	newKey func() string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	size := strings.TrimSpace(opts.Size)
	if size == "" {
		size = defaultSize
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
	rc.SetBaseURL(base).SetTimeout(timeout)

	newKey := opts.NewKey
	if newKey == nil {
		newKey = func() string { return "generated/" + uuid.NewString() + ".png" }
	}
	return &Client{
		http:   rc,
		apiKey: strings.TrimSpace(opts.APIKey),
		model:  model,
		size:   size,
		store:  opts.Store,
		newKey: newKey,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks the provider for one image and returns a URL to it. Inline
// base64 payloads are written to the object store first.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}
	var (
		out     generationResponse
		errBody errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(generationRequest{Model: c.model, Prompt: prompt, N: 1, Size: c.size}).
		SetResult(&out).
		SetError(&errBody).
		Post("/images/generations")
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	if resp.IsError() {
		return "", &ProviderError{Status: resp.StatusCode(), Message: errBody.Error.Message}
	}
	if len(out.Data) == 0 {
		return "", &ProviderError{Status: resp.StatusCode(), Message: "empty response"}
	}
	item := out.Data[0]
	if url := strings.TrimSpace(item.URL); url != "" {
		return url, nil
	}
	if item.B64JSON == "" {
		return "", &ProviderError{Status: resp.StatusCode(), Message: "missing image payload"}
	}
	data, err := base64.StdEncoding.DecodeString(item.B64JSON)
	if err != nil {
		return "", &ProviderError{Message: "invalid base64 image", Err: err}
	}
	if c.store == nil {
		return "", ErrNoStore
	}
	return c.store.Put(ctx, c.newKey(), data, "image/png")
}
