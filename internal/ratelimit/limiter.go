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

// Package ratelimit provides per-source admission control for the event
// stream: a token bucket for request rate and a counter for concurrent
// connections.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter tracks request tokens and active connections per source
// address. All methods are safe for concurrent use.
type Limiter struct {
	logger *slog.Logger

	maxRequests    int
	window         time.Duration
	maxConnections int

	mu      sync.Mutex
	sources map[string]*sourceState

	nowFn func() time.Time
}

type sourceState struct {
	tokens      int
	lastRefill  time.Time
	connections int
}

// Stats is a point-in-time snapshot of limiter state.
type Stats struct {
	// TrackedSources is the number of source addresses with state.
	TrackedSources int

	// ActiveConnections is the total connection count across sources.
	ActiveConnections int
}

// New creates a Limiter.
func New(
	logger *slog.Logger,
	maxRequests int,
	window time.Duration,
	maxConnections int,
) *Limiter {
	return &Limiter{
		logger:         logger,
		maxRequests:    maxRequests,
		window:         window,
		maxConnections: maxConnections,
		sources:        make(map[string]*sourceState),
		nowFn:          time.Now,
	}
}

// AllowRequest reports whether a request from the source is admitted.
// Tokens refill to max once a full window has elapsed since the last
// refill; an admitted request consumes one token.
func (l *Limiter) AllowRequest(
	source string,
) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state(source)

	now := l.nowFn()
	if now.Sub(s.lastRefill) >= l.window {
		s.tokens = l.maxRequests
		s.lastRefill = now
	}

	if s.tokens > 0 {
		s.tokens--

		return true
	}

	l.logger.Warn(
		"request rate limit exceeded",
		slog.String("source", source),
	)

	return false
}

// AllowConnection reports whether the source may open another
// connection; an admitted connection must later be released.
func (l *Limiter) AllowConnection(
	source string,
) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state(source)

	if s.connections < l.maxConnections {
		s.connections++

		l.logger.Debug(
			"connection allowed",
			slog.String("source", source),
			slog.Int("active", s.connections),
			slog.Int("max", l.maxConnections),
		)

		return true
	}

	l.logger.Warn(
		"connection limit exceeded",
		slog.String("source", source),
		slog.Int("active", s.connections),
	)

	return false
}

// ReleaseConnection returns a connection slot to the source. The count
// never drops below zero.
func (l *Limiter) ReleaseConnection(
	source string,
) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sources[source]
	if !ok || s.connections == 0 {
		return
	}

	s.connections--

	l.logger.Debug(
		"connection released",
		slog.String("source", source),
		slog.Int("active", s.connections),
		slog.Int("max", l.maxConnections),
	)
}

// Cleanup removes sources with no active connections whose last refill
// is older than the threshold, bounding memory for transient sources.
// It returns the number of entries removed.
func (l *Limiter) Cleanup(
	threshold time.Duration,
) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	removed := 0

	for source, s := range l.sources {
		if s.connections > 0 || now.Sub(s.lastRefill) < threshold {
			continue
		}

		delete(l.sources, source)
		removed++

		l.logger.Debug(
			"cleaned up limiter state",
			slog.String("source", source),
		)
	}

	return removed
}

// Stats returns a snapshot for monitoring.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{TrackedSources: len(l.sources)}
	for _, s := range l.sources {
		stats.ActiveConnections += s.connections
	}

	return stats
}

// state returns the source's entry, creating it with a full bucket on
// first sight. Callers must hold l.mu.
func (l *Limiter) state(
	source string,
) *sourceState {
	s, ok := l.sources[source]
	if !ok {
		s = &sourceState{
			tokens:     l.maxRequests,
			lastRefill: l.nowFn(),
		}
		l.sources[source] = s
	}

	return s
}
