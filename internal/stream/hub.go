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
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
)

// subscriberBuffer is the per-subscriber send queue depth. A subscriber
// that falls this far behind is disconnected.
const subscriberBuffer = 100

// Hub fans broadcast payloads out to subscribers. The hub owns every
// subscriber channel: it alone closes them, either on Unsubscribe or
// when a subscriber's queue overflows.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	subs map[uuid.UUID]chan string
}

// NewHub creates an empty Hub.
func NewHub(
	logger *slog.Logger,
	m *metrics.Metrics,
) *Hub {
	return &Hub{
		logger:  logger,
		metrics: m,
		subs:    make(map[uuid.UUID]chan string),
	}
}

// Subscribe registers a new subscriber and returns its identifier and
// receive channel. The channel is closed by the hub when the subscriber
// is dropped.
func (h *Hub) Subscribe() (uuid.UUID, <-chan string) {
	id := uuid.New()
	ch := make(chan string, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	active := len(h.subs)
	h.mu.Unlock()

	h.metrics.SetSubscribers(active)
	h.logger.Debug(
		"subscriber joined",
		slog.String("subscriber", id.String()),
		slog.Int("active", active),
	)

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown
// identifiers are ignored, so dropping after an overflow disconnect is
// harmless.
func (h *Hub) Unsubscribe(
	id uuid.UUID,
) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	active := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.metrics.SetSubscribers(active)
	h.logger.Debug(
		"subscriber left",
		slog.String("subscriber", id.String()),
		slog.Int("active", active),
	)
}

// Broadcast delivers the payload to every subscriber and returns the
// number delivered. A subscriber whose queue is full is disconnected
// rather than blocking the producer.
func (h *Hub) Broadcast(
	payload string,
) int {
	h.mu.Lock()

	delivered := 0
	var dropped []uuid.UUID
	for id, ch := range h.subs {
		select {
		case ch <- payload:
			delivered++
		default:
			delete(h.subs, id)
			close(ch)
			dropped = append(dropped, id)
		}
	}
	active := len(h.subs)
	h.mu.Unlock()

	for _, id := range dropped {
		h.logger.Warn(
			"disconnecting slow subscriber",
			slog.String("subscriber", id.String()),
		)
	}
	if len(dropped) > 0 {
		h.metrics.SetSubscribers(active)
	}

	return delivered
}

// Count returns the current number of subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}
