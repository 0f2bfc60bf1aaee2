/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies the issue a run is handling.
type ExecutionContext struct {
	Repository  string `json:"repository,omitempty"` // owner/name
	IssueNumber int    `json:"issue_number,omitempty"`
	Screenshot  bool   `json:"screenshot,omitempty"`
}

// Mode is "screenshot" or "text".
func (e ExecutionContext) Mode() string {
	if e.Screenshot {
		return "screenshot"
	}
	return "text"
}

// EnrichAttributes appends the bounded execution labels to base. The issue
// number is left to spans.
func (e ExecutionContext) EnrichAttributes(base []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(base), len(base)+2)
	copy(attrs, base)
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	return append(attrs, attribute.String("mode", e.Mode()))
}

type contextKey int

const (
	executionContextKey contextKey = iota
	tracerKey
	traceKey
)

// WithExecutionContext adds execution context to the Go context.
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context.
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if execCtx, ok := ctx.Value(executionContextKey).(ExecutionContext); ok {
		return execCtx
	}
	return ExecutionContext{}
}

// Tracer receives completed traces.
type Tracer interface {
	RecordTrace(*Trace)
}

// ByCode adapts a function to a Tracer. A nil ByCode drops traces.
type ByCode func(*Trace)

// RecordTrace implements Tracer.
func (f ByCode) RecordTrace(t *Trace) {
	if f != nil {
		f(t)
	}
}

// WithTracer sets the tracer that StartTrace hands completed traces to.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, t)
}

// TracerFromContext returns the tracer set with WithTracer, or one that logs
// the trace with the context's logger.
func TracerFromContext(ctx context.Context) Tracer {
	if t, ok := ctx.Value(tracerKey).(Tracer); ok {
		return t
	}
	return NewDefaultTracer(ctx)
}

// FromContext returns the trace started by StartTrace, or nil.
func FromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey).(*Trace)
	return t
}
