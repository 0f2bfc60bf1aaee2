/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chatexecutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "google/gemini-2.5-flash"
	defaultOpenAIModel     = "gpt-4o-mini"
)

// chatCompletions talks to any endpoint implementing the OpenAI chat
// completions API.
type chatCompletions struct {
	name   string
	model  string
	client openai.Client
	opts   *options
}

var _ Provider = (*chatCompletions)(nil)

// NewOpenRouter returns a Provider for OpenRouter.
func NewOpenRouter(apiKey string, opts ...Option) (Provider, error) {
	o, err := newOptions(defaultOpenRouterModel, append([]Option{WithBaseURL(openRouterBaseURL)}, opts...))
	if err != nil {
		return nil, err
	}
	return newChatCompletions("openrouter", apiKey, o), nil
}

// NewOpenAI returns a Provider for OpenAI or an OpenAI-compatible endpoint
// given through WithBaseURL.
func NewOpenAI(apiKey string, opts ...Option) (Provider, error) {
	o, err := newOptions(defaultOpenAIModel, opts)
	if err != nil {
		return nil, err
	}
	return newChatCompletions("openai", apiKey, o), nil
}

func newChatCompletions(name, apiKey string, o *options) *chatCompletions {
	ro := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		ro = append(ro, option.WithBaseURL(o.baseURL+"/"))
	}
	for key := range o.headers {
		ro = append(ro, option.WithHeader(key, o.headers.Get(key)))
	}
	if o.httpClient != nil {
		ro = append(ro, option.WithHTTPClient(o.httpClient))
	}
	return &chatCompletions{
		name:   name,
		model:  o.model,
		client: openai.NewClient(ro...),
		opts:   o,
	}
}

func (c *chatCompletions) Name() string  { return c.name }
func (c *chatCompletions) Model() string { return c.model }

// Complete implements Provider.
func (c *chatCompletions) Complete(ctx context.Context, req Request) (text string, err error) {
	defer func() { c.opts.genai.RecordRequest(ctx, c.name, c.model, err) }()

	log := clog.FromContext(ctx).With("provider", c.name).With("model", c.model)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	if len(req.Images) == 0 {
		messages = append(messages, openai.UserMessage(req.Prompt))
	} else {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.Prompt)}
		for _, img := range req.Images {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: img.DataURL(),
			}))
		}
		messages = append(messages, openai.UserMessage(parts))
	}

	log.With("images", len(req.Images)).Info("Sending chat completion")
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.name, err)
	}

	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		c.opts.genai.RecordTokens(ctx, c.name, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	if len(resp.Choices) == 0 {
		return "", payloadError(c.name, resp.RawJSON())
	}
	text = resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned empty content", ErrProvider, c.name)
	}
	return text, nil
}
