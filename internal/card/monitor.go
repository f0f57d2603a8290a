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

package card

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cardbridge-io/cardbridge/internal/identity"
)

// Polling cadence. Vars rather than consts so tests can compress the
// loop.
var (
	establishRetryInterval = 2 * time.Second
	listFaultInterval      = 2 * time.Second
	emptyReadersInterval   = time.Second
	statusChangeTimeout    = 2 * time.Second
	pollTailInterval       = 500 * time.Millisecond
	sessionFaultInterval   = 500 * time.Millisecond
	readRetryInterval      = 300 * time.Millisecond
)

// readAttempts bounds field-read retries per card connection.
const readAttempts = 3

const defaultEventBuffer = 16

// Options configures monitor retry behavior around card insertion.
type Options struct {
	// SettleDelay is the pause after insertion before connecting, giving
	// the card time to power up.
	SettleDelay time.Duration
	// ConnectAttempts bounds connection retries per insertion.
	ConnectAttempts int
	// ConnectDelay is the pause between failed connection attempts.
	ConnectDelay time.Duration
	// EventBuffer sizes the outbound event channel.
	EventBuffer int
}

// Monitor owns the presence polling loop. It watches every attached
// reader, reads newly inserted cards through the engine, and emits
// lifecycle events. A reader whose card could not be read stays eligible
// so the next poll cycle retries without requiring physical removal.
type Monitor struct {
	logger  *slog.Logger
	factory SessionFactory
	engine  *Engine
	opts    Options

	events  chan Event
	session Session
	present map[string]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a Monitor. Zero option fields fall back to
// defaults matching the card protocol configuration.
func NewMonitor(
	logger *slog.Logger,
	factory SessionFactory,
	engine *Engine,
	opts Options,
) *Monitor {
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = 3
	}
	if opts.ConnectDelay <= 0 {
		opts.ConnectDelay = 500 * time.Millisecond
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	return &Monitor{
		logger:  logger,
		factory: factory,
		engine:  engine,
		opts:    opts,
		events:  make(chan Event, opts.EventBuffer),
		present: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
}

// Events returns the card lifecycle event stream. The channel closes
// when the monitor stops.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Start launches the polling loop.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.logger.Info("starting card monitor")

	go func() {
		defer close(m.done)
		m.run(ctx)
	}()
}

// Stop ends the polling loop and waits for it to exit or the context to
// expire.
func (m *Monitor) Stop(
	ctx context.Context,
) {
	if m.cancel == nil {
		return
	}
	m.cancel()

	select {
	case <-m.done:
		m.logger.Info("card monitor stopped")
	case <-ctx.Done():
		m.logger.Warn("card monitor stop timed out")
	}
}

func (m *Monitor) run(
	ctx context.Context,
) {
	defer close(m.events)
	defer m.resetSession()

	for ctx.Err() == nil {
		m.poll(ctx)
	}
}

// poll runs one monitor iteration: session health, reader enumeration,
// status wait, and presence transitions.
func (m *Monitor) poll(
	ctx context.Context,
) {
	if m.session == nil || !m.session.Healthy() {
		if m.session != nil {
			m.logger.Warn("card service session unhealthy, resetting")
			m.resetSession()
		}

		session, err := m.factory()
		if err != nil {
			m.logger.Debug("establish card service session",
				slog.String("error", err.Error()),
			)
			sleepCtx(ctx, establishRetryInterval)
			return
		}

		m.logger.Info("card service session established")
		m.session = session
	}

	readers, err := m.session.ListReaders()
	if err != nil {
		m.logger.Error("list readers",
			slog.String("error", err.Error()),
		)
		m.resetSession()
		sleepCtx(ctx, listFaultInterval)
		return
	}

	if len(readers) == 0 {
		sleepCtx(ctx, emptyReadersInterval)
		return
	}

	statuses, err := m.session.WaitStatus(readers, statusChangeTimeout)
	if err != nil {
		if !errors.Is(err, ErrWaitTimeout) {
			m.logger.Error("wait status change",
				slog.String("error", err.Error()),
			)
			m.resetSession()
		}
		sleepCtx(ctx, sessionFaultInterval)
		return
	}

	for _, status := range statuses {
		_, seen := m.present[status.Reader]
		switch {
		case status.Present && !seen:
			m.handleInsertion(ctx, status.Reader)
		case !status.Present && seen:
			m.logger.Info("card removed",
				slog.String("reader", status.Reader),
			)
			delete(m.present, status.Reader)
			m.emit(ctx, Event{Type: EventRemoved, Reader: status.Reader})
		}
	}

	sleepCtx(ctx, pollTailInterval)
}

// handleInsertion connects to a newly seated card and reads it. The
// reader is marked present only after a successful read so a flaky card
// is retried on the next cycle.
func (m *Monitor) handleInsertion(
	ctx context.Context,
	reader string,
) {
	m.logger.Info("card detected",
		slog.String("reader", reader),
	)

	for attempt := 1; attempt <= m.opts.ConnectAttempts; attempt++ {
		if !sleepCtx(ctx, m.opts.SettleDelay) {
			return
		}

		c, err := m.session.Connect(reader)
		if err != nil {
			m.logger.Warn("connect to card",
				slog.String("reader", reader),
				slog.Int("attempt", attempt),
				slog.Int("attempts", m.opts.ConnectAttempts),
				slog.String("error", err.Error()),
			)
			if attempt < m.opts.ConnectAttempts {
				if !sleepCtx(ctx, m.opts.ConnectDelay) {
					return
				}
			}
			continue
		}

		record, ok := m.readWithRetry(ctx, c)
		if err := c.Close(); err != nil {
			m.logger.Debug("close card",
				slog.String("error", err.Error()),
			)
		}

		if ok {
			m.present[reader] = struct{}{}
			m.emit(ctx, Event{Type: EventInserted, Reader: reader, Record: record})
			return
		}

		if ctx.Err() != nil {
			return
		}
	}

	m.logger.Error("card read failed, reader stays eligible for next cycle",
		slog.String("reader", reader),
		slog.Int("attempts", m.opts.ConnectAttempts),
	)
}

func (m *Monitor) readWithRetry(
	ctx context.Context,
	c Card,
) (*identity.Record, bool) {
	for attempt := 1; attempt <= readAttempts; attempt++ {
		record, err := m.engine.Read(c)
		if err == nil {
			m.logger.Info("card read complete",
				slog.String("citizen_id", identity.MaskCitizenID(record.CitizenID)),
				slog.Int("attempt", attempt),
			)
			return record, true
		}

		m.logger.Warn("read card data",
			slog.Int("attempt", attempt),
			slog.Int("attempts", readAttempts),
			slog.String("error", err.Error()),
		)
		if attempt < readAttempts {
			if !sleepCtx(ctx, readRetryInterval) {
				return nil, false
			}
		}
	}

	return nil, false
}

func (m *Monitor) emit(
	ctx context.Context,
	event Event,
) {
	select {
	case m.events <- event:
	case <-ctx.Done():
	}
}

// resetSession drops the session and forgets presence state so cards are
// re-announced once service recovers.
func (m *Monitor) resetSession() {
	if m.session != nil {
		if err := m.session.Close(); err != nil {
			m.logger.Debug("close card service session",
				slog.String("error", err.Error()),
			)
		}
		m.session = nil
	}
	m.present = make(map[string]struct{})
}

// sleepCtx pauses for d, returning false if the context ended first.
func sleepCtx(
	ctx context.Context,
	d time.Duration,
) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
