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

// Package metrics exposes the stream's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts stream activity. All methods are safe on a nil
// receiver so instrumented paths run unchanged without a registry.
type Metrics struct {
	CardsReadTotal           prometheus.Counter
	RecordsRejectedTotal     prometheus.Counter
	EventsBroadcastTotal     prometheus.Counter
	AuthFailuresTotal        prometheus.Counter
	RateLimitRejectionsTotal prometheus.Counter
	SubscribersActive        prometheus.Gauge
}

// New creates the instrument set on the given registerer. A nil
// registerer falls back to the process default.
func New(
	reg prometheus.Registerer,
) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CardsReadTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardbridge_cards_read_total",
			Help: "Total number of cards successfully read and decoded",
		}),
		RecordsRejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardbridge_records_rejected_total",
			Help: "Total number of records dropped by security screening",
		}),
		EventsBroadcastTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardbridge_events_broadcast_total",
			Help: "Total number of events fanned out to subscribers",
		}),
		AuthFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardbridge_auth_failures_total",
			Help: "Total number of rejected API key verifications",
		}),
		RateLimitRejectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardbridge_rate_limit_rejections_total",
			Help: "Total number of requests and connections rejected by rate limiting",
		}),
		SubscribersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cardbridge_stream_subscribers",
			Help: "Current number of connected stream subscribers",
		}),
	}
}

// IncrementCardsRead counts a successful card read.
func (m *Metrics) IncrementCardsRead() {
	if m == nil {
		return
	}
	m.CardsReadTotal.Inc()
}

// IncrementRecordsRejected counts a record dropped by screening.
func (m *Metrics) IncrementRecordsRejected() {
	if m == nil {
		return
	}
	m.RecordsRejectedTotal.Inc()
}

// IncrementEventsBroadcast counts an event handed to the hub.
func (m *Metrics) IncrementEventsBroadcast() {
	if m == nil {
		return
	}
	m.EventsBroadcastTotal.Inc()
}

// IncrementAuthFailures counts a rejected API key verification.
func (m *Metrics) IncrementAuthFailures() {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.Inc()
}

// IncrementRateLimitRejections counts a throttled request or connection.
func (m *Metrics) IncrementRateLimitRejections() {
	if m == nil {
		return
	}
	m.RateLimitRejectionsTotal.Inc()
}

// SetSubscribers records the current subscriber count.
func (m *Metrics) SetSubscribers(
	count int,
) {
	if m == nil {
		return
	}
	m.SubscribersActive.Set(float64(count))
}
