// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Attribute keys appended to records carrying an active span.
const (
	traceIDKey = "trace_id"
	spanIDKey  = "span_id"
)

// spanHandler decorates records with the identifiers of the span active
// on the record's context, so log lines can be joined to traces.
type spanHandler struct {
	next slog.Handler
}

// NewTraceHandler wraps a handler so every record logged under an active
// span carries trace_id and span_id attributes. Records logged without a
// span pass through untouched.
func NewTraceHandler(
	next slog.Handler,
) slog.Handler {
	return &spanHandler{next: next}
}

func (h *spanHandler) Enabled(
	ctx context.Context,
	level slog.Level,
) bool {
	return h.next.Enabled(ctx, level)
}

func (h *spanHandler) Handle(
	ctx context.Context,
	record slog.Record,
) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(traceIDKey, sc.TraceID().String()),
			slog.String(spanIDKey, sc.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, record)
}

func (h *spanHandler) WithAttrs(
	attrs []slog.Attr,
) slog.Handler {
	return &spanHandler{next: h.next.WithAttrs(attrs)}
}

func (h *spanHandler) WithGroup(
	name string,
) slog.Handler {
	return &spanHandler{next: h.next.WithGroup(name)}
}
