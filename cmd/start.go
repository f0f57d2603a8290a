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
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardbridge-io/cardbridge/internal/cli"
	"github.com/cardbridge-io/cardbridge/internal/display"
	"github.com/cardbridge-io/cardbridge/internal/ratelimit"
	"github.com/cardbridge-io/cardbridge/internal/stream"
	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
	"github.com/cardbridge-io/cardbridge/internal/telemetry"
)

// Idle rate limiter state is swept on this cadence.
const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleThreshold = 10 * time.Minute
)

// compositeLifecycle manages multiple Lifecycle components, starting them
// sequentially and stopping them concurrently.
type compositeLifecycle struct {
	components []cli.Lifecycle
}

func (c *compositeLifecycle) Start() {
	for _, comp := range c.components {
		comp.Start()
	}
}

func (c *compositeLifecycle) Stop(ctx context.Context) {
	var wg sync.WaitGroup
	for _, comp := range c.components {
		wg.Add(1)
		go func(lc cli.Lifecycle) {
			defer wg.Done()
			lc.Stop(ctx)
		}(comp)
	}
	wg.Wait()
}

// distributorLifecycle adapts the distributor's error-returning Stop to the
// Lifecycle interface.
type distributorLifecycle struct {
	dist *stream.Distributor
}

func (d *distributorLifecycle) Start() {
	d.dist.Start()
}

func (d *distributorLifecycle) Stop(ctx context.Context) {
	if err := d.dist.Stop(ctx); err != nil {
		logger.Warn("distributor did not drain before shutdown deadline")
	}
}

// startCmd represents the top-level start command.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the card reader daemon",
	Long: `Start the card monitor and the WebSocket streaming server in a single
process.

The monitor polls the PC/SC service for card insertions, reads each card,
and hands the decoded record to the streaming server for broadcast. Both
components shut down gracefully on SIGINT/SIGTERM.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		cli.ValidateDistribution(logger)
		logPlatformInfo(logger)

		shutdownTracer, err := telemetry.InitTracer(
			ctx,
			"cardbridge",
			appConfig.Telemetry.Tracing,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize tracer", err)
		}

		metricsHandler, metricsPath, shutdownMeter, err := telemetry.InitMeter(
			appConfig.Telemetry.Metrics,
		)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize meter", err)
		}

		logEffectiveConfig(logger)

		auditLog := newAuditLogger(ctx, logger.With("component", "audit"))
		crypto := newFieldCrypt(logger)
		streamMetrics := metrics.New(nil)

		monitor := newMonitor(logger.With("component", "card"))

		streamLog := logger.With("component", "stream")
		hub := stream.NewHub(streamLog, streamMetrics)
		shaper := stream.NewShaper(
			streamLog,
			appConfig.Output,
			appConfig.Server.Security.Encryption,
			crypto,
			auditLog,
		)

		distOpts := stream.DistributorOptions{Metrics: streamMetrics}
		if appConfig.Display.Enabled {
			distOpts.Presenter = display.New(
				logger.With("component", "display"),
				os.Stdout,
			)
		}
		dist := stream.NewDistributor(
			streamLog,
			monitor.Events(),
			shaper,
			hub,
			auditLog,
			distOpts,
		)

		var limiter *ratelimit.Limiter
		var janitor *ratelimit.Janitor
		if appConfig.Server.Security.RateLimit.Enabled {
			rl := appConfig.Server.Security.RateLimit
			limiter = ratelimit.New(
				logger.With("component", "ratelimit"),
				rl.MaxRequests,
				rl.Window,
				rl.MaxConnections,
			)
			janitor = ratelimit.NewJanitor(
				logger.With("component", "ratelimit"),
				limiter,
				limiterSweepInterval,
				limiterIdleThreshold,
			)
		}

		server := setupStreamServer(
			streamLog,
			hub,
			auditLog,
			limiter,
			streamMetrics,
			metricsHandler,
			metricsPath,
		)

		components := []cli.Lifecycle{
			monitor,
			&distributorLifecycle{dist: dist},
		}
		if janitor != nil {
			components = append(components, janitor)
		}
		components = append(components, server)

		composite := &compositeLifecycle{components: components}

		composite.Start()
		cli.RunServer(ctx, composite, func() {
			_ = shutdownMeter(context.Background())
			_ = shutdownTracer(context.Background())
			if err := auditLog.Close(context.Background()); err != nil {
				logger.Warn("failed to close audit export file")
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
