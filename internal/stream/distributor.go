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

package stream

import (
	"context"
	"log/slog"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/card"
	"github.com/cardbridge-io/cardbridge/internal/identity"
	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
)

// Distributor consumes card events, screens decoded records, and
// broadcasts shaped payloads to stream subscribers. A record with any
// security finding is dropped before shaping.
type Distributor struct {
	logger    *slog.Logger
	shaper    *Shaper
	hub       *Hub
	audit     *audit.Logger
	metrics   *metrics.Metrics
	presenter Presenter

	events <-chan card.Event
	done   chan struct{}
}

// DistributorOptions holds the optional distributor collaborators.
type DistributorOptions struct {
	// Metrics receives broadcast and rejection counts when set.
	Metrics *metrics.Metrics

	// Presenter renders accepted records locally when set.
	Presenter Presenter
}

// NewDistributor initialize a new Distributor.
func NewDistributor(
	logger *slog.Logger,
	events <-chan card.Event,
	shaper *Shaper,
	hub *Hub,
	auditLog *audit.Logger,
	opts DistributorOptions,
) *Distributor {
	if auditLog == nil {
		auditLog = audit.New(logger, false, nil)
	}

	return &Distributor{
		logger:    logger,
		shaper:    shaper,
		hub:       hub,
		audit:     auditLog,
		metrics:   opts.Metrics,
		presenter: opts.Presenter,
		events:    events,
		done:      make(chan struct{}),
	}
}

// Start consumes the event channel in the background. The loop exits
// when the channel closes.
func (d *Distributor) Start() {
	go d.run()
}

// Stop waits for the event loop to drain, or until the context
// expires. The producer closes the event channel; Stop only observes
// the loop exit.
func (d *Distributor) Stop(
	ctx context.Context,
) error {
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Distributor) run() {
	defer close(d.done)

	for ev := range d.events {
		switch ev.Type {
		case card.EventInserted:
			d.handleInserted(ev)
		case card.EventRemoved:
			d.handleRemoved()
		}
	}

	d.logger.Debug("event distributor stopped")
}

func (d *Distributor) handleInserted(
	ev card.Event,
) {
	rec := ev.Record
	if rec == nil {
		d.logger.Warn("insert event carried no record")

		return
	}

	masked := identity.MaskCitizenID(rec.CitizenID)
	d.audit.CardRead("", masked)

	findings := identity.Screen(*rec)
	for _, f := range findings {
		d.audit.ValidationFailure(
			"",
			f.Field,
			string(f.Class),
			f.Message,
			f.Class == identity.ClassSecurity,
		)
	}

	if identity.HasSecurity(findings) {
		d.logger.Error(
			"record rejected, security findings present",
			slog.String("citizen_id", masked),
			slog.Int("findings", len(findings)),
		)
		d.metrics.IncrementRecordsRejected()

		return
	}

	d.metrics.IncrementCardsRead()

	payload, err := d.shaper.Inserted(rec)
	if err != nil {
		d.logger.Error(
			"shape insert payload",
			slog.String("error", err.Error()),
		)

		return
	}

	d.broadcast(payload)

	if d.presenter != nil {
		d.presenter.ShowRecord(rec)
	}
}

func (d *Distributor) handleRemoved() {
	d.broadcast(d.shaper.Removed())

	if d.presenter != nil {
		d.presenter.ShowRemoval()
	}
}

func (d *Distributor) broadcast(
	payload string,
) {
	delivered := d.hub.Broadcast(payload)
	if delivered == 0 {
		d.logger.Debug("no subscribers connected")
	}

	d.metrics.IncrementEventsBroadcast()
}
