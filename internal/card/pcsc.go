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
	"fmt"
	"time"

	"github.com/ebfe/scard"
)

// NewPCSCSession attaches to the platform PC/SC service.
func NewPCSCSession() (Session, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}

	return &pcscSession{ctx: ctx}, nil
}

var _ Session = (*pcscSession)(nil)

type pcscSession struct {
	ctx *scard.Context
}

// Healthy probes the service by listing readers. A service with no
// attached readers is still healthy.
func (s *pcscSession) Healthy() bool {
	_, err := s.ctx.ListReaders()

	return err == nil || err == scard.ErrNoReadersAvailable
}

func (s *pcscSession) ListReaders() ([]string, error) {
	readers, err := s.ctx.ListReaders()
	if err != nil {
		// The service reports an empty terminal list as an error.
		if err == scard.ErrNoReadersAvailable {
			return nil, nil
		}

		return nil, fmt.Errorf("list readers: %w", err)
	}

	return readers, nil
}

func (s *pcscSession) WaitStatus(
	readers []string,
	timeout time.Duration,
) ([]ReaderStatus, error) {
	states := make([]scard.ReaderState, len(readers))
	for i, name := range readers {
		states[i] = scard.ReaderState{
			Reader:       name,
			CurrentState: scard.StateUnaware,
		}
	}

	if err := s.ctx.GetStatusChange(states, timeout); err != nil {
		if err == scard.ErrTimeout {
			return nil, ErrWaitTimeout
		}

		return nil, fmt.Errorf("get status change: %w", err)
	}

	statuses := make([]ReaderStatus, len(states))
	for i, state := range states {
		statuses[i] = ReaderStatus{
			Reader: state.Reader,
			Present: state.EventState&scard.StatePresent != 0 &&
				state.EventState&scard.StateEmpty == 0,
		}
	}

	return statuses, nil
}

func (s *pcscSession) Connect(
	reader string,
) (Card, error) {
	c, err := s.ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		return nil, fmt.Errorf("connect reader %q: %w", reader, err)
	}

	return &pcscCard{card: c}, nil
}

func (s *pcscSession) Close() error {
	return s.ctx.Release()
}

type pcscCard struct {
	card *scard.Card
}

func (c *pcscCard) Transmit(
	cmd []byte,
) ([]byte, error) {
	return c.card.Transmit(cmd)
}

func (c *pcscCard) Close() error {
	return c.card.Disconnect(scard.LeaveCard)
}
