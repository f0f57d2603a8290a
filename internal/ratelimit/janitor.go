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

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically evicts idle limiter state so that one-off
// sources do not accumulate forever.
type Janitor struct {
	logger *slog.Logger

	limiter   *Limiter
	interval  time.Duration
	threshold time.Duration
	cron      *cron.Cron
}

// NewJanitor creates a Janitor sweeping the limiter every interval,
// evicting sources idle longer than threshold.
func NewJanitor(
	logger *slog.Logger,
	limiter *Limiter,
	interval time.Duration,
	threshold time.Duration,
) *Janitor {
	return &Janitor{
		logger:    logger,
		limiter:   limiter,
		interval:  interval,
		threshold: threshold,
		cron:      cron.New(),
	}
}

// Start schedules the sweep and begins running it without blocking.
func (j *Janitor) Start() {
	spec := fmt.Sprintf("@every %s", j.interval)
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		j.logger.Error(
			"failed to schedule limiter cleanup",
			slog.String("spec", spec),
			slog.String("error", err.Error()),
		)

		return
	}

	j.cron.Start()

	j.logger.Info(
		"limiter cleanup scheduled",
		slog.String("interval", j.interval.String()),
		slog.String("threshold", j.threshold.String()),
	)
}

// Stop halts the schedule and waits for an in-flight sweep, bounded by
// ctx.
func (j *Janitor) Stop(
	ctx context.Context,
) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}

	j.logger.Info("limiter cleanup stopped")
}

func (j *Janitor) sweep() {
	removed := j.limiter.Cleanup(j.threshold)
	if removed > 0 {
		j.logger.Debug(
			"evicted idle limiter state",
			slog.Int("removed", removed),
		)
	}
}
