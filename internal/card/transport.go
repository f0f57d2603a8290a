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
	"errors"
	"time"
)

// ErrWaitTimeout reports that a status wait elapsed with no reader state
// change. The monitor treats it as a normal idle cycle.
var ErrWaitTimeout = errors.New("status change timed out")

// Card is a connected smart card able to exchange raw command/response
// pairs.
type Card interface {
	// Transmit sends one command and returns the full response including
	// the trailing status bytes.
	Transmit(cmd []byte) ([]byte, error)
	// Close releases the card connection.
	Close() error
}

// ReaderStatus reports the presence state of one terminal.
type ReaderStatus struct {
	// Reader is the terminal name as reported by the card service.
	Reader string
	// Present is true when a card is seated and powered in the terminal.
	Present bool
}

// Session is one attachment to the platform card service.
type Session interface {
	// Healthy reports whether the session can still serve requests.
	Healthy() bool
	// ListReaders enumerates attached terminals. An empty slice with a
	// nil error means no terminals are attached.
	ListReaders() ([]string, error)
	// WaitStatus blocks until a reader changes state or the timeout
	// elapses, returning ErrWaitTimeout in the latter case.
	WaitStatus(readers []string, timeout time.Duration) ([]ReaderStatus, error)
	// Connect opens a shared connection to the card in the named reader.
	Connect(reader string) (Card, error)
	// Close releases the session.
	Close() error
}

// SessionFactory establishes a new Session. The monitor calls it on
// startup and again whenever the current session turns unhealthy.
type SessionFactory func() (Session, error)
