/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package chatexecutor sends one-shot chat and vision requests to a hosted
// model and returns the reply text.
//
// Every backend implements Provider with the same request and response
// contract, so callers select one at startup and never branch on the
// vendor again:
//
//	p, err := chatexecutor.Select(ctx, chatexecutor.Keys{
//	    OpenRouter: os.Getenv("OPENROUTER_API_KEY"),
//	    OpenAI:     os.Getenv("OPENAI_API_KEY"),
//	})
//	if errors.Is(err, chatexecutor.ErrConfig) {
//	    // no credentials at all
//	}
//
//	text, err := p.Complete(ctx, chatexecutor.Request{
//	    System:      "Reply with JSON only.",
//	    Prompt:      prompt,
//	    Images:      []chatexecutor.Image{{MIMEType: "image/png", Data: png}},
//	    Temperature: 0.1,
//	})
//
// Selection order is OpenRouter, OpenAI (or any OpenAI-compatible base
// URL), Anthropic, then Gemini. Providers never retry: a failed call is
// returned to the caller as is. Token usage and request outcomes are
// recorded through the metrics package.
package chatexecutor
