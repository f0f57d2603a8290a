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

// Package card drives the smart-card terminal: presence polling across
// attached readers, the chained command/response transaction engine, and
// assembly of raw card fields into identity records.
package card

import (
	"github.com/cardbridge-io/cardbridge/internal/identity"
)

// EventType discriminates card lifecycle events.
type EventType int

const (
	// EventInserted signals a successfully read card.
	EventInserted EventType = iota
	// EventRemoved signals that a previously read card left the reader.
	EventRemoved
)

// String returns the protocol name of the event type.
func (t EventType) String() string {
	switch t {
	case EventInserted:
		return "inserted"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one card lifecycle notification. Inserted events carry the
// decoded record; removed events carry only the reader name.
type Event struct {
	Type   EventType
	Reader string
	Record *identity.Record
}
