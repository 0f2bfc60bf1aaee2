/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package chatexecutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

type claude struct {
	model  string
	client anthropic.Client
	opts   *options
}

var _ Provider = (*claude)(nil)

// NewAnthropic returns a Provider for the Anthropic Messages API.
func NewAnthropic(apiKey string, opts ...Option) (Provider, error) {
	o, err := newOptions(defaultAnthropicModel, opts)
	if err != nil {
		return nil, err
	}

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

	return &claude{
		model:  o.model,
		client: anthropic.NewClient(ro...),
		opts:   o,
	}, nil
}

func (c *claude) Name() string  { return "anthropic" }
func (c *claude) Model() string { return c.model }

// Complete implements Provider.
func (c *claude) Complete(ctx context.Context, req Request) (text string, err error) {
	defer func() { c.opts.genai.RecordRequest(ctx, c.Name(), c.model, err) }()

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	for _, img := range req.Images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MIMEType, img.Base64()))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.opts.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	clog.FromContext(ctx).With("provider", c.Name()).With("model", c.model).With("images", len(req.Images)).Info("Sending message")
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	if msg.Usage.InputTokens > 0 || msg.Usage.OutputTokens > 0 {
		c.opts.genai.RecordTokens(ctx, c.Name(), c.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: anthropic returned no text (stop reason %q)", ErrProvider, msg.StopReason)
	}
	return sb.String(), nil
}
