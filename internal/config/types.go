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

package config

import (
	"fmt"
	"time"
)

// Config represents the root structure of the YAML configuration file.
// This struct is used to unmarshal configuration data from Viper.
type Config struct {
	Server    Server    `mapstructure:"server"    mask:"struct"`
	Card      Card      `mapstructure:"card"`
	Output    Output    `mapstructure:"output"`
	Audit     Audit     `mapstructure:"audit"`
	Display   Display   `mapstructure:"display"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	// Debug enable or disable debug option set from CLI.
	Debug bool `mapstructure:"debug"`
}

// Telemetry configuration settings.
type Telemetry struct {
	Tracing TracingConfig `mapstructure:"tracing,omitempty"`
	Metrics MetricsConfig `mapstructure:"metrics,omitempty"`
}

// MetricsConfig configuration settings for Prometheus metrics.
type MetricsConfig struct {
	// Path is the HTTP path for the Prometheus scrape endpoint.
	// Defaults to "/metrics" when empty.
	Path string `mapstructure:"path"`
}

// TracingConfig configuration settings for distributed tracing.
type TracingConfig struct {
	// Enabled enables or disables tracing.
	Enabled bool `mapstructure:"enabled"`
	// Exporter selects the trace exporter: "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`
	// OTLPEndpoint is the gRPC endpoint for the OTLP exporter (e.g., "localhost:4317").
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Server configuration settings for the subscriber-facing stream server.
type Server struct {
	// Host the server will bind to.
	Host string `mapstructure:"host" validate:"required"`
	// Port the server will bind to.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// Security contains security-related configuration for the server.
	Security Security `mapstructure:"security" mask:"struct"`
}

// Addr returns the host:port the server binds to.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Security represents security-related settings for the stream server.
type Security struct {
	// Auth gates subscriber admission with API keys.
	Auth Auth `mapstructure:"auth" mask:"struct"`
	// RateLimit throttles requests and concurrent connections per source.
	RateLimit RateLimit `mapstructure:"rate_limit"`
	// Encryption seals sensitive payload fields before distribution.
	Encryption Encryption `mapstructure:"encryption" mask:"struct"`
	// CORS Cross-Origin Resource Sharing (CORS) settings for the server.
	CORS CORS `mapstructure:"cors"`
	// TLS settings for serving wss:// instead of ws://.
	TLS TLS `mapstructure:"tls"`
}

// Auth represents API key authentication settings.
type Auth struct {
	// Enabled enables or disables subscriber authentication.
	Enabled bool `mapstructure:"enabled"`
	// Header is the request header carrying the API key.
	Header string `mapstructure:"header"`
	// APIKeys lists the accepted keys. When empty the API_KEYS
	// environment variable (comma-separated) is consulted instead.
	APIKeys []string `mapstructure:"api_keys" mask:"password"`
}

// RateLimit represents per-source admission budget settings.
type RateLimit struct {
	// Enabled enables or disables rate limiting.
	Enabled bool `mapstructure:"enabled"`
	// MaxRequests admitted per source per window.
	MaxRequests int `mapstructure:"max_requests" validate:"min=1"`
	// Window is the request budget refill period.
	Window time.Duration `mapstructure:"window" validate:"min=1s"`
	// MaxConnections concurrently open per source.
	MaxConnections int `mapstructure:"max_connections" validate:"min=1"`
}

// Encryption represents payload field encryption settings.
type Encryption struct {
	// Enabled enables or disables field encryption. When enabled, a key
	// must be available or startup fails.
	Enabled bool `mapstructure:"enabled"`
	// Key is the base64 encoded 32 byte key. When empty the
	// ENCRYPTION_KEY environment variable is consulted instead.
	Key string `mapstructure:"key" mask:"password"`
	// Fields lists the output field names to encrypt. An empty list
	// encrypts every field.
	Fields []string `mapstructure:"fields"`
}

// CORS represents the CORS (Cross-Origin Resource Sharing) settings.
type CORS struct {
	// AllowAll permits any origin. Insecure outside development.
	AllowAll bool `mapstructure:"allow_all"`
	// AllowOrigins lists origins allowed when AllowAll is off. When
	// empty the ALLOWED_ORIGINS environment variable (comma-separated)
	// is consulted instead.
	AllowOrigins []string `mapstructure:"allow_origins,omitempty"`
}

// TLS represents the transport security settings.
type TLS struct {
	// Enabled enables or disables TLS.
	Enabled bool `mapstructure:"enabled"`
	// CertFile is the path to the PEM certificate.
	CertFile string `mapstructure:"cert_file"`
	// KeyFile is the path to the PEM private key.
	KeyFile string `mapstructure:"key_file"`
}

// Card configuration settings for the terminal protocol. Commands are
// hex-encoded byte strings; spaces between byte pairs are allowed.
type Card struct {
	// SelectCommand activates the identity applet.
	SelectCommand string `mapstructure:"select_command" validate:"required,apdu"`
	// FieldCommands maps field names to their read commands.
	FieldCommands map[string]string `mapstructure:"field_commands" validate:"dive,apdu"`
	// PhotoCommands lists the photo chunk read commands in order.
	PhotoCommands []string `mapstructure:"photo_commands" validate:"dive,apdu"`
	// RetryAttempts bounds connection retries per card insertion.
	RetryAttempts int `mapstructure:"retry_attempts" validate:"min=1"`
	// RetryDelay is the pause between failed connection attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// SettleDelay is the pause after insertion before connecting.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// Output configuration settings for shaping the outbound payload.
type Output struct {
	// EnabledFields allow-lists payload fields by their original names.
	// An empty list enables every field.
	EnabledFields []string `mapstructure:"enabled_fields"`
	// FieldMapping renames fields from their original names to output
	// names.
	FieldMapping map[string]string `mapstructure:"field_mapping"`
	// IncludePhoto includes the base64 photograph in the payload.
	IncludePhoto bool `mapstructure:"include_photo"`
}

// Audit configuration settings for the security event trail.
type Audit struct {
	// Enabled enables or disables audit logging.
	Enabled bool `mapstructure:"enabled"`
	// File is an optional JSONL export path. Empty disables the file
	// sink; entries still reach the application log.
	File string `mapstructure:"file"`
}

// Display configuration settings for the operator console card.
type Display struct {
	// Enabled enables or disables rendering read cards to the console.
	Enabled bool `mapstructure:"enabled"`
}
