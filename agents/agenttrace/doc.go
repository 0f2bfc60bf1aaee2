/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records what happened while the bot handled one issue.

A Trace covers the whole run and holds one Step per pipeline state. Both are
backed by OpenTelemetry spans, so a configured exporter sees the run as a
tree, and completed traces are handed to the Tracer found in the context.
Model clients report token usage onto the trace active in their context.

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository:  "octo/places",
		IssueNumber: 42,
	})
	ctx, trace := agenttrace.StartTrace(ctx)

	sctx, step := trace.StartStep(ctx, "extracting")
	err := extract(sctx)
	step.Complete(err)

	trace.Complete(err)
*/
package agenttrace
