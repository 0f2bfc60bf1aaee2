/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records OpenTelemetry counters for model calls. Without a
// configured MeterProvider the global no-op provider makes every call free.
package metrics

import (
	"context"
	"log/slog"

	"chainguard.dev/placebot/agents/agenttrace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI provides counters for token usage and request outcomes.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	requests         metric.Int64Counter
}

// NewGenAI creates a GenAI instance on the global meter provider. A
// counter that fails to initialize is replaced by a no-op and logged.
func NewGenAI(meterName string) *GenAI {
	return newGenAI(otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0")))
}

func newGenAI(meter metric.Meter) *GenAI {
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			slog.Warn("Failed to create counter, metric will be disabled", "error", err, "counter", name)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		requests:         counter("genai.requests", "The number of model requests by outcome", "{requests}"),
	}
}

// RecordTokens records prompt and completion token usage for one call, and
// adds it to the run trace in ctx if there is one.
func (m *GenAI) RecordTokens(ctx context.Context, provider, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(agenttrace.GetExecutionContext(ctx).EnrichAttributes([]attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("model", model),
	})...)
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)

	if t := agenttrace.FromContext(ctx); t != nil {
		t.RecordTokenUsage(model, promptTokens, completionTokens)
	}
}

// RecordRequest counts one model call and whether it produced usable text.
func (m *GenAI) RecordRequest(ctx context.Context, provider, model string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
}
