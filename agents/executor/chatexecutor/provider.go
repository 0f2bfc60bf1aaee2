/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chatexecutor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/placebot/agents/metrics"
	"github.com/chainguard-dev/clog"
)

var (
	// ErrConfig is returned by Select when no provider has credentials.
	ErrConfig = errors.New("no AI provider configured: set OPENROUTER_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY")

	// ErrProvider marks a reply the provider delivered successfully at the
	// transport level that carries an error payload or no usable text.
	ErrProvider = errors.New("provider returned no usable content")
)

const meterName = "chainguard.dev/placebot/agents/executor/chatexecutor"

// Image is an inline image attachment.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	Images      []Image
	Temperature float64
}

// Provider completes a Request into reply text.
type Provider interface {
	// Name identifies the backend, e.g. "openrouter".
	Name() string
	// Model is the model the backend is asked to use.
	Model() string
	// Complete sends req and returns the reply text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Keys carries the credentials and model names for every backend. Empty
// models fall back to each backend's default.
type Keys struct {
	OpenRouter      string
	OpenRouterModel string

	OpenAI        string
	OpenAIBaseURL string
	OpenAIModel   string

	Anthropic      string
	AnthropicModel string

	Gemini      string
	GeminiModel string

	// Referer and Title are sent to OpenRouter for app attribution.
	Referer string
	Title   string
}

// Select builds the provider for the first backend that has a key.
func Select(ctx context.Context, keys Keys, opts ...Option) (Provider, error) {
	with := func(model string) []Option {
		return append([]Option{WithModel(model)}, opts...)
	}

	var (
		p   Provider
		err error
	)
	switch {
	case keys.OpenRouter != "":
		o := with(keys.OpenRouterModel)
		if keys.Referer != "" {
			o = append(o, WithHeader("HTTP-Referer", keys.Referer))
		}
		if keys.Title != "" {
			o = append(o, WithHeader("X-Title", keys.Title))
		}
		p, err = NewOpenRouter(keys.OpenRouter, o...)
	case keys.OpenAI != "":
		o := with(keys.OpenAIModel)
		if keys.OpenAIBaseURL != "" {
			o = append(o, WithBaseURL(keys.OpenAIBaseURL))
		}
		p, err = NewOpenAI(keys.OpenAI, o...)
	case keys.Anthropic != "":
		p, err = NewAnthropic(keys.Anthropic, with(keys.AnthropicModel)...)
	case keys.Gemini != "":
		p, err = NewGemini(ctx, keys.Gemini, with(keys.GeminiModel)...)
	default:
		return nil, ErrConfig
	}
	if err != nil {
		return nil, err
	}

	clog.FromContext(ctx).With("provider", p.Name()).With("model", p.Model()).Info("Selected AI provider")
	return p, nil
}

// Option configures a provider.
type Option func(*options) error

type options struct {
	model      string
	baseURL    string
	headers    http.Header
	httpClient *http.Client
	maxTokens  int64
	genai      *metrics.GenAI
}

func newOptions(defaultModel string, opts []Option) (*options, error) {
	o := &options{
		headers:   http.Header{},
		maxTokens: 4096,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.model == "" {
		o.model = defaultModel
	}
	if o.genai == nil {
		o.genai = metrics.NewGenAI(meterName)
	}
	return o, nil
}

// WithModel selects the model. An empty name keeps the default.
func WithModel(model string) Option {
	return func(o *options) error {
		o.model = strings.TrimSpace(model)
		return nil
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("base URL %q must be http or https", url)
		}
		o.baseURL = strings.TrimSuffix(url, "/")
		return nil
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) error {
		o.headers.Set(key, value)
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		o.httpClient = c
		return nil
	}
}

// WithMaxTokens caps the reply length where the backend requires a cap.
func WithMaxTokens(n int64) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		o.maxTokens = n
		return nil
	}
}

// WithMetrics records usage on m instead of a fresh instance.
func WithMetrics(m *metrics.GenAI) Option {
	return func(o *options) error {
		o.genai = m
		return nil
	}
}

// payloadError turns an error body such as
// {"error": {"message": "...", "code": 429}} into an ErrProvider.
func payloadError(provider string, raw string) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err == nil && body.Error.Message != "" {
		if body.Error.Code != nil {
			return fmt.Errorf("%w: %s: %s (code %v)", ErrProvider, provider, body.Error.Message, body.Error.Code)
		}
		return fmt.Errorf("%w: %s: %s", ErrProvider, provider, body.Error.Message)
	}
	return fmt.Errorf("%w: %s returned no choices", ErrProvider, provider)
}
