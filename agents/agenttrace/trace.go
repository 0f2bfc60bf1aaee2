/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/placebot/agents/agenttrace"

func tracer() oteltrace.Tracer {
	return otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
}

// Step is one pipeline state within a trace.
type Step struct {
	Name      string    `json:"name"`
	Error     error     `json:"error,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	trace     *Trace
	span      oteltrace.Span
}

// Usage is the token usage of one model call.
type Usage struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// Trace is one run of the bot over an issue.
type Trace struct {
	ID          string           `json:"id"`
	ExecContext ExecutionContext `json:"exec_context"`
	Steps       []*Step          `json:"steps"`
	Usage       []Usage          `json:"usage,omitempty"`
	Error       error            `json:"error,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	tracer      Tracer
	mu          sync.Mutex
	span        oteltrace.Span
}

// StartTrace begins a trace for the execution context in ctx. The returned
// context carries the trace and its span.
func StartTrace(ctx context.Context) (context.Context, *Trace) {
	execCtx := GetExecutionContext(ctx)

	attrs := execCtx.EnrichAttributes(nil)
	if execCtx.IssueNumber != 0 {
		attrs = append(attrs, attribute.Int("issue", execCtx.IssueNumber))
	}
	ctx, span := tracer().Start(ctx, "placebot.run", oteltrace.WithAttributes(attrs...))

	t := &Trace{
		ID:          uuid.NewString(),
		ExecContext: execCtx,
		Steps:       []*Step{},
		StartTime:   time.Now(),
		tracer:      TracerFromContext(ctx),
		span:        span,
	}
	return context.WithValue(ctx, traceKey, t), t
}

// StartStep begins a step named after a pipeline state. Work done for the
// step should use the returned context.
func (t *Trace) StartStep(ctx context.Context, name string) (context.Context, *Step) {
	ctx, span := tracer().Start(ctx, "placebot.step", oteltrace.WithAttributes(attribute.String("state", name)))
	return ctx, &Step{
		Name:      name,
		StartTime: time.Now(),
		trace:     t,
		span:      span,
	}
}

// Complete ends the step and adds it to its trace.
func (s *Step) Complete(err error) {
	s.Error = err
	s.EndTime = time.Now()
	endSpan(s.span, err)

	s.trace.mu.Lock()
	defer s.trace.mu.Unlock()
	s.trace.Steps = append(s.trace.Steps, s)
}

// RecordTokenUsage adds a model call's usage to the trace and its span.
func (t *Trace) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Usage = append(t.Usage, Usage{Model: model, InputTokens: inputTokens, OutputTokens: outputTokens})
	var in, out int64
	for _, u := range t.Usage {
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.span.SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", in),
		attribute.Int64("tokens.output", out),
		attribute.Int64("tokens.total", in+out),
	)
}

// Complete ends the trace and hands it to the tracer.
func (t *Trace) Complete(err error) {
	t.mu.Lock()
	t.Error = err
	t.EndTime = time.Now()
	t.mu.Unlock()

	endSpan(t.span, err)
	t.tracer.RecordTrace(t)
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Duration returns the total duration of the trace.
func (t *Trace) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String renders the trace for logs.
func (t *Trace) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	fmt.Fprintf(&sb, "Issue: %s#%d (%s)\n", t.ExecContext.Repository, t.ExecContext.IssueNumber, t.ExecContext.Mode())
	for i, s := range t.Steps {
		fmt.Fprintf(&sb, "  [%d] %s %v", i+1, s.Name, s.EndTime.Sub(s.StartTime))
		if s.Error != nil {
			fmt.Fprintf(&sb, " error: %v", s.Error)
		}
		sb.WriteString("\n")
	}
	for _, u := range t.Usage {
		fmt.Fprintf(&sb, "Tokens: %s in=%d out=%d\n", u.Model, u.InputTokens, u.OutputTokens)
	}
	if t.Error != nil {
		fmt.Fprintf(&sb, "Error: %v\n", t.Error)
	}
	return sb.String()
}

// NewDefaultTracer returns a tracer that logs completed traces.
func NewDefaultTracer(ctx context.Context) Tracer {
	logger := clog.FromContext(ctx)
	return ByCode(func(t *Trace) {
		logger.With(
			"trace_id", t.ID,
			"duration_ms", t.Duration().Milliseconds(),
			"steps", len(t.Steps),
		).Info("Run trace completed", "trace", t.String())
	})
}
