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

// Package stream serves decoded card events to WebSocket subscribers.
// Admission is gated by per-source rate limits and API key
// authentication, and every admission decision is audited.
package stream

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/identity"
	"github.com/cardbridge-io/cardbridge/internal/ratelimit"
	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
)

// Server wraps the Echo server publishing the event stream.
type Server struct {
	Echo *echo.Echo

	logger    *slog.Logger
	appConfig config.Config
	limiter   *ratelimit.Limiter
	audit     *audit.Logger
	metrics   *metrics.Metrics
}

// Option configures the Server.
type Option func(*Server)

// WithLimiter sets the admission rate limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithAudit sets the audit logger recording admission decisions.
func WithAudit(a *audit.Logger) Option {
	return func(s *Server) {
		s.audit = a
	}
}

// WithMetrics sets the stream instrument set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Presenter renders card lifecycle changes on the local console.
type Presenter interface {
	// ShowRecord renders a successfully read card.
	ShowRecord(rec *identity.Record)

	// ShowRemoval clears the rendered card.
	ShowRemoval()
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
