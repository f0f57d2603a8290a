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

package cmd

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/cardbridge-io/cardbridge/internal/card"
	"github.com/cardbridge-io/cardbridge/internal/cli"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/stream"
)

type fakeLifecycle struct {
	mu      *sync.Mutex
	order   *[]string
	name    string
	stopped bool
}

func (f *fakeLifecycle) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.order = append(*f.order, f.name)
}

func (f *fakeLifecycle) Stop(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

type StartTestSuite struct {
	suite.Suite
}

func TestStartTestSuite(t *testing.T) {
	suite.Run(t, new(StartTestSuite))
}

func (suite *StartTestSuite) TestCompositeLifecycleStartsSequentially() {
	var mu sync.Mutex
	var order []string

	first := &fakeLifecycle{mu: &mu, order: &order, name: "first"}
	second := &fakeLifecycle{mu: &mu, order: &order, name: "second"}
	third := &fakeLifecycle{mu: &mu, order: &order, name: "third"}

	composite := &compositeLifecycle{
		components: []cli.Lifecycle{first, second, third},
	}
	composite.Start()

	assert.Equal(suite.T(), []string{"first", "second", "third"}, order)
}

func (suite *StartTestSuite) TestCompositeLifecycleStopsAll() {
	var mu sync.Mutex
	var order []string

	first := &fakeLifecycle{mu: &mu, order: &order, name: "first"}
	second := &fakeLifecycle{mu: &mu, order: &order, name: "second"}

	composite := &compositeLifecycle{
		components: []cli.Lifecycle{first, second},
	}
	composite.Stop(context.Background())

	assert.True(suite.T(), first.stopped)
	assert.True(suite.T(), second.stopped)
}

func (suite *StartTestSuite) TestDistributorLifecycleStopsAfterDrain() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := make(chan card.Event)
	shaper := stream.NewShaper(log, config.Output{}, config.Encryption{}, nil, nil)
	hub := stream.NewHub(log, nil)
	dist := stream.NewDistributor(
		log, events, shaper, hub, nil, stream.DistributorOptions{},
	)

	lc := &distributorLifecycle{dist: dist}
	lc.Start()
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	lc.Stop(ctx)
}

func (suite *StartTestSuite) TestDistributorLifecycleStopTimesOut() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := make(chan card.Event)
	shaper := stream.NewShaper(log, config.Output{}, config.Encryption{}, nil, nil)
	hub := stream.NewHub(log, nil)
	dist := stream.NewDistributor(
		log, events, shaper, hub, nil, stream.DistributorOptions{},
	)

	lc := &distributorLifecycle{dist: dist}
	lc.Start()

	ctx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Millisecond,
	)
	defer cancel()
	// Channel never closes, Stop must still return at the deadline.
	lc.Stop(ctx)

	close(events)
}
