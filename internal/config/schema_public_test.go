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

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardbridge-io/cardbridge/internal/config"
)

type ConfigPublicTestSuite struct {
	suite.Suite
}

func (s *ConfigPublicTestSuite) TestDefault() {
	cfg := config.Default()

	s.Equal("127.0.0.1:8182", cfg.Server.Addr())

	s.False(cfg.Server.Security.Auth.Enabled)
	s.Equal("X-API-Key", cfg.Server.Security.Auth.Header)
	s.Empty(cfg.Server.Security.Auth.APIKeys)

	s.True(cfg.Server.Security.RateLimit.Enabled)
	s.Equal(60, cfg.Server.Security.RateLimit.MaxRequests)
	s.Equal(60*time.Second, cfg.Server.Security.RateLimit.Window)
	s.Equal(5, cfg.Server.Security.RateLimit.MaxConnections)

	s.False(cfg.Server.Security.Encryption.Enabled)
	s.True(cfg.Server.Security.CORS.AllowAll)
	s.False(cfg.Server.Security.TLS.Enabled)

	s.Equal("00A4040008A000000054480001", cfg.Card.SelectCommand)
	s.Len(cfg.Card.FieldCommands, 9)
	s.Equal("80B0000402000D", cfg.Card.FieldCommands["citizen_id"])
	s.Len(cfg.Card.PhotoCommands, 20)
	s.Equal("80B0017B0200FF", cfg.Card.PhotoCommands[0])
	s.Equal("80B014680200FF", cfg.Card.PhotoCommands[19])
	s.Equal(3, cfg.Card.RetryAttempts)
	s.Equal(500*time.Millisecond, cfg.Card.RetryDelay)
	s.Equal(500*time.Millisecond, cfg.Card.SettleDelay)

	s.True(cfg.Output.IncludePhoto)
	s.Empty(cfg.Output.EnabledFields)
	s.Empty(cfg.Output.FieldMapping)

	s.True(cfg.Audit.Enabled)
	s.Empty(cfg.Audit.File)
	s.True(cfg.Display.Enabled)

	s.NoError(config.Validate(&cfg))
}

func (s *ConfigPublicTestSuite) TestValidate() {
	tests := []struct {
		name        string
		mutate      func(*config.Config)
		expectError bool
		errContains string
	}{
		{
			name:        "when default config",
			mutate:      func(*config.Config) {},
			expectError: false,
		},
		{
			name: "when host is missing",
			mutate: func(c *config.Config) {
				c.Server.Host = ""
			},
			expectError: true,
			errContains: "Host",
		},
		{
			name: "when port is out of range",
			mutate: func(c *config.Config) {
				c.Server.Port = 70000
			},
			expectError: true,
			errContains: "Port",
		},
		{
			name: "when select command is not hex",
			mutate: func(c *config.Config) {
				c.Card.SelectCommand = "not-a-command"
			},
			expectError: true,
			errContains: "apdu",
		},
		{
			name: "when a field command has odd length",
			mutate: func(c *config.Config) {
				c.Card.FieldCommands["citizen_id"] = "80B00"
			},
			expectError: true,
			errContains: "apdu",
		},
		{
			name: "when a photo command is not hex",
			mutate: func(c *config.Config) {
				c.Card.PhotoCommands[0] = "ZZZZ"
			},
			expectError: true,
			errContains: "apdu",
		},
		{
			name: "when rate limit window is below one second",
			mutate: func(c *config.Config) {
				c.Server.Security.RateLimit.Window = 500 * time.Millisecond
			},
			expectError: true,
			errContains: "Window",
		},
		{
			name: "when max requests is zero",
			mutate: func(c *config.Config) {
				c.Server.Security.RateLimit.MaxRequests = 0
			},
			expectError: true,
			errContains: "MaxRequests",
		},
		{
			name: "when retry attempts is zero",
			mutate: func(c *config.Config) {
				c.Card.RetryAttempts = 0
			},
			expectError: true,
			errContains: "RetryAttempts",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			cfg := config.Default()
			tt.mutate(&cfg)

			err := config.Validate(&cfg)

			if tt.expectError {
				s.Error(err)
				if tt.errContains != "" {
					s.Contains(err.Error(), tt.errContains)
				}
			} else {
				s.NoError(err)
			}
		})
	}
}

func TestConfigPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigPublicTestSuite))
}
