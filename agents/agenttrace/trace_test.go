/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTraceRecordsSteps(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var got *Trace
	ctx := WithTracer(context.Background(), ByCode(func(tr *Trace) { got = tr }))
	ctx = WithExecutionContext(ctx, ExecutionContext{Repository: "octo/places", IssueNumber: 42})

	ctx, tr := StartTrace(ctx)
	require.Same(t, tr, FromContext(ctx))

	sctx, step := tr.StartStep(ctx, "extracting")
	FromContext(sctx).RecordTokenUsage("gpt-4o-mini", 100, 20)
	FromContext(sctx).RecordTokenUsage("gpt-4o-mini", 10, 2)
	step.Complete(nil)

	boom := errors.New("boom")
	_, step = tr.StartStep(ctx, "persisting")
	step.Complete(boom)
	tr.Complete(boom)

	require.Same(t, tr, got)
	require.Len(t, got.Steps, 2)
	require.Equal(t, "extracting", got.Steps[0].Name)
	require.ErrorIs(t, got.Steps[1].Error, boom)
	require.Len(t, got.Usage, 2)
	require.Contains(t, got.String(), "octo/places#42 (text)")
	require.Contains(t, got.String(), "persisting")

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	run := spans[2]
	require.Equal(t, "placebot.run", run.Name())
	require.Equal(t, codes.Error, run.Status().Code)
	require.Contains(t, run.Attributes(), attribute.Int64("tokens.total", 132))
	require.Contains(t, run.Attributes(), attribute.Int("issue", 42))
	require.Equal(t, run.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestFromContextWithoutTrace(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))
}

func TestDefaultTracer(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, TracerFromContext(ctx))

	// A nil ByCode drops traces.
	ctx = WithTracer(ctx, ByCode(nil))
	_, tr := StartTrace(ctx)
	tr.Complete(nil)
}

func TestEnrichAttributes(t *testing.T) {
	base := []attribute.KeyValue{attribute.String("provider", "openai")}
	got := ExecutionContext{Repository: "octo/places", Screenshot: true}.EnrichAttributes(base)
	require.Equal(t, []attribute.KeyValue{
		attribute.String("provider", "openai"),
		attribute.String("repository", "octo/places"),
		attribute.String("mode", "screenshot"),
	}, got)
	require.Len(t, base, 1)
}
