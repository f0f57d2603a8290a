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
	"log/slog"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/viper"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/audit/export"
	"github.com/cardbridge-io/cardbridge/internal/card"
	"github.com/cardbridge-io/cardbridge/internal/cli"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/fieldcrypt"
	"github.com/cardbridge-io/cardbridge/internal/ratelimit"
	"github.com/cardbridge-io/cardbridge/internal/stream"
	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
)

var hostInfoFn = host.Info

// logPlatformInfo records the host platform for support diagnostics.
func logPlatformInfo(
	log *slog.Logger,
) {
	info, err := hostInfoFn()
	if err != nil {
		log.Warn("failed to read host info",
			slog.String("error", err.Error()),
		)

		return
	}

	log.Info("host platform",
		slog.String("os", info.OS),
		slog.String("platform", info.Platform),
		slog.String("platform_version", info.PlatformVersion),
		slog.String("kernel_version", info.KernelVersion),
		slog.String("virtualization", info.VirtualizationSystem),
	)
}

// logEffectiveConfig records the merged configuration with secrets masked.
func logEffectiveConfig(
	log *slog.Logger,
) {
	masked, err := config.Masked(appConfig)
	if err != nil {
		log.Warn("failed to mask configuration",
			slog.String("error", err.Error()),
		)

		return
	}

	log.Debug("effective configuration",
		slog.Any("config", masked),
	)
}

// newAuditLogger creates the audit logger, opens the optional file export,
// and records the configuration source as the first entry.
func newAuditLogger(
	ctx context.Context,
	log *slog.Logger,
) *audit.Logger {
	var exporter audit.Exporter
	if appConfig.Audit.File != "" {
		exporter = export.NewFileExporter(appConfig.Audit.File)
	}

	auditLog := audit.New(log, appConfig.Audit.Enabled, exporter)
	if err := auditLog.Open(ctx); err != nil {
		cli.LogFatal(log, "failed to open audit export file", err,
			"file", appConfig.Audit.File,
		)
	}

	auditLog.ConfigLoaded(viper.ConfigFileUsed())

	return auditLog
}

// newFieldCrypt creates the field encryption service, or nil when
// encryption is disabled. The configured key takes precedence over the
// ENCRYPTION_KEY environment variable.
func newFieldCrypt(
	log *slog.Logger,
) *fieldcrypt.Service {
	enc := appConfig.Server.Security.Encryption
	if !enc.Enabled {
		return nil
	}

	var (
		crypto *fieldcrypt.Service
		err    error
	)
	if enc.Key != "" {
		crypto, err = fieldcrypt.NewFromBase64(enc.Key)
	} else {
		crypto, err = fieldcrypt.NewFromEnv()
	}
	if err != nil {
		cli.LogFatal(log, "failed to initialize field encryption", err)
	}

	return crypto
}

// newMonitor builds the card monitor from the configured command set.
func newMonitor(
	log *slog.Logger,
) *card.Monitor {
	commands, err := card.NewCommandSet(
		appConfig.Card.SelectCommand,
		appConfig.Card.FieldCommands,
		appConfig.Card.PhotoCommands,
	)
	if err != nil {
		cli.LogFatal(log, "failed to parse card commands", err)
	}

	engine := card.NewEngine(log, commands)

	return card.NewMonitor(log, card.NewPCSCSession, engine, card.Options{
		SettleDelay:     appConfig.Card.SettleDelay,
		ConnectAttempts: appConfig.Card.RetryAttempts,
		ConnectDelay:    appConfig.Card.RetryDelay,
	})
}

// setupStreamServer creates the streaming server with all handlers
// registered.
func setupStreamServer(
	log *slog.Logger,
	hub *stream.Hub,
	auditLog *audit.Logger,
	limiter *ratelimit.Limiter,
	streamMetrics *metrics.Metrics,
	metricsHandler http.Handler,
	metricsPath string,
) *stream.Server {
	auth := appConfig.Server.Security.Auth
	if auth.Enabled && len(auth.Keys()) == 0 {
		log.Error(
			"authentication enabled but no API keys configured, " +
				"all subscribers will be rejected",
		)
	}

	opts := []stream.Option{
		stream.WithAudit(auditLog),
		stream.WithMetrics(streamMetrics),
	}
	if limiter != nil {
		opts = append(opts, stream.WithLimiter(limiter))
	}

	server := stream.New(appConfig, log, opts...)

	startTime := time.Now()
	handlers := server.GetStreamHandler(hub)
	handlers = append(handlers, server.GetHealthHandler(version, startTime)...)
	handlers = append(
		handlers,
		server.GetMetricsHandler(metricsHandler, metricsPath)...)
	server.RegisterHandlers(handlers)

	return server
}
