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

package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/cardbridge-io/cardbridge/internal/config"
)

// prometheusNewFn creates the Prometheus exporter. Package-level var so
// tests can inject a failing constructor.
var prometheusNewFn = prometheus.New

// DefaultMetricsPath is the scrape endpoint path used when the
// configuration leaves it empty.
const DefaultMetricsPath = "/metrics"

// InitMeter wires the global OpenTelemetry meter provider to a
// Prometheus exporter and returns the scrape handler, the path the
// stream server should mount it at, and a shutdown function.
func InitMeter(
	cfg config.MetricsConfig,
) (http.Handler, string, func(context.Context) error, error) {
	exporter, err := prometheusNewFn()
	if err != nil {
		return nil, "", nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	path := cfg.Path
	if path == "" {
		path = DefaultMetricsPath
	}

	return promhttp.Handler(), path, provider.Shutdown, nil
}
