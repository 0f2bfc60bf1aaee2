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
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type gemini struct {
	model  string
	client *genai.Client
	opts   *options
}

var _ Provider = (*gemini)(nil)

// NewGemini returns a Provider for the Gemini Developer API.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (Provider, error) {
	o, err := newOptions(defaultGeminiModel, opts)
	if err != nil {
		return nil, err
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: o.baseURL,
			Headers: o.headers,
		},
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &gemini{model: o.model, client: client, opts: o}, nil
}

func (g *gemini) Name() string  { return "gemini" }
func (g *gemini) Model() string { return g.model }

// Complete implements Provider.
func (g *gemini) Complete(ctx context.Context, req Request) (text string, err error) {
	defer func() { g.opts.genai.RecordRequest(ctx, g.Name(), g.model, err) }()

	parts := []*genai.Part{{Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		})
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	clog.FromContext(ctx).With("provider", g.Name()).With("model", g.model).With("images", len(req.Images)).Info("Generating content")
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{
		Role:  "user",
		Parts: parts,
	}}, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if resp.UsageMetadata != nil {
		g.opts.genai.RecordTokens(ctx, g.Name(), g.model,
			int64(resp.UsageMetadata.PromptTokenCount), int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	text = resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: gemini returned no text", ErrProvider)
	}
	return text, nil
}
