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

package stream_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"golang.org/x/net/websocket"

	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/ratelimit"
	"github.com/cardbridge-io/cardbridge/internal/stream"
)

const testAPIKey = "valid-secret-key-123"

type ServerPublicTestSuite struct {
	suite.Suite

	logger *slog.Logger
}

func (s *ServerPublicTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func (s *ServerPublicTestSuite) baseConfig() config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.Security.RateLimit.Enabled = false

	return cfg
}

// wsURL converts an httptest server URL into a websocket URL.
func wsURL(
	httpURL string,
	path string,
) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func (s *ServerPublicTestSuite) dial(
	serverURL string,
	apiKey string,
) (*websocket.Conn, error) {
	wsCfg, err := websocket.NewConfig(wsURL(serverURL, "/ws"), "http://localhost/")
	s.Require().NoError(err)

	if apiKey != "" {
		wsCfg.Header.Set("X-API-Key", apiKey)
	}

	return websocket.DialConfig(wsCfg)
}

func (s *ServerPublicTestSuite) TestNew() {
	tests := []struct {
		name      string
		appConfig config.Config
	}{
		{
			name:      "creates server with default config",
			appConfig: config.Default(),
		},
		{
			name: "creates server with restricted CORS origins",
			appConfig: func() config.Config {
				cfg := config.Default()
				cfg.Server.Security.CORS = config.CORS{
					AllowAll: false,
					AllowOrigins: []string{
						"http://localhost:3000",
						"https://example.com",
					},
				}

				return cfg
			}(),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			server := stream.New(tt.appConfig, s.logger)

			s.NotNil(server)
			s.NotNil(server.Echo)
		})
	}
}

func (s *ServerPublicTestSuite) TestStartAndStop() {
	server := stream.New(s.baseConfig(), s.logger)
	server.Start()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server.Stop(ctx)
}

func (s *ServerPublicTestSuite) TestGetHealthHandler() {
	server := stream.New(s.baseConfig(), s.logger)
	server.RegisterHandlers(
		server.GetHealthHandler("1.2.3", time.Now().Add(-90*time.Second)),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Echo.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"ok"`)
	s.Contains(rec.Body.String(), `"version":"1.2.3"`)
	s.Contains(rec.Body.String(), `"uptime"`)
}

func (s *ServerPublicTestSuite) TestGetMetricsHandler() {
	metricsHandler := http.HandlerFunc(func(
		w http.ResponseWriter,
		_ *http.Request,
	) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(
			[]byte(
				"# HELP test_metric A test metric.\n# TYPE test_metric gauge\ntest_metric 42\n",
			),
		)
	})

	server := stream.New(s.baseConfig(), s.logger)
	server.RegisterHandlers(server.GetMetricsHandler(metricsHandler, "/metrics"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.Echo.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "test_metric 42")
}

func (s *ServerPublicTestSuite) TestStreamAuth() {
	cfg := s.baseConfig()
	cfg.Server.Security.Auth = config.Auth{
		Enabled: true,
		Header:  "X-API-Key",
		APIKeys: []string{testAPIKey},
	}

	server := stream.New(cfg, s.logger)
	hub := stream.NewHub(s.logger, nil)
	server.RegisterHandlers(server.GetStreamHandler(hub))

	ts := httptest.NewServer(server.Echo)
	defer ts.Close()

	s.Run("rejects a request without a key", func() {
		resp, err := http.Get(ts.URL + "/ws")
		s.Require().NoError(err)
		defer func() { _ = resp.Body.Close() }()

		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("rejects a request with an unknown key", func() {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/ws", nil)
		s.Require().NoError(err)
		req.Header.Set("X-API-Key", "wrong-key")

		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		defer func() { _ = resp.Body.Close() }()

		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("streams events to an authenticated subscriber", func() {
		ws, err := s.dial(ts.URL, testAPIKey)
		s.Require().NoError(err)
		defer func() { _ = ws.Close() }()

		s.Require().Eventually(func() bool {
			return hub.Count() == 1
		}, 2*time.Second, 10*time.Millisecond)

		delivered := hub.Broadcast(`{"mode":"readsmartcard"}`)
		s.Equal(1, delivered)

		s.Require().NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))

		var msg string
		s.Require().NoError(websocket.Message.Receive(ws, &msg))
		s.Equal(`{"mode":"readsmartcard"}`, msg)
	})
}

func (s *ServerPublicTestSuite) TestStreamRequestLimit() {
	cfg := s.baseConfig()
	cfg.Server.Security.RateLimit.Enabled = true

	limiter := ratelimit.New(s.logger, 1, time.Minute, 5)
	server := stream.New(cfg, s.logger, stream.WithLimiter(limiter))
	hub := stream.NewHub(s.logger, nil)
	server.RegisterHandlers(server.GetStreamHandler(hub))

	ts := httptest.NewServer(server.Echo)
	defer ts.Close()

	// The first request consumes the only token. It passes admission
	// and fails the websocket handshake instead.
	first, err := http.Get(ts.URL + "/ws")
	s.Require().NoError(err)
	defer func() { _ = first.Body.Close() }()
	s.Equal(http.StatusBadRequest, first.StatusCode)

	second, err := http.Get(ts.URL + "/ws")
	s.Require().NoError(err)
	defer func() { _ = second.Body.Close() }()
	s.Equal(http.StatusTooManyRequests, second.StatusCode)
}

func (s *ServerPublicTestSuite) TestStreamConnectionLimit() {
	cfg := s.baseConfig()
	cfg.Server.Security.RateLimit.Enabled = true

	limiter := ratelimit.New(s.logger, 100, time.Minute, 1)
	server := stream.New(cfg, s.logger, stream.WithLimiter(limiter))
	hub := stream.NewHub(s.logger, nil)
	server.RegisterHandlers(server.GetStreamHandler(hub))

	ts := httptest.NewServer(server.Echo)
	defer ts.Close()

	first, err := s.dial(ts.URL, "")
	s.Require().NoError(err)

	_, err = s.dial(ts.URL, "")
	s.Error(err)

	// Closing the first session frees its slot for a new subscriber.
	s.Require().NoError(first.Close())

	s.Require().Eventually(func() bool {
		ws, err := s.dial(ts.URL, "")
		if err != nil {
			return false
		}
		_ = ws.Close()

		return true
	}, 2*time.Second, 50*time.Millisecond)
}

func (s *ServerPublicTestSuite) TestCORSPreflight() {
	cfg := s.baseConfig()
	cfg.Server.Security.CORS = config.CORS{
		AllowAll:     false,
		AllowOrigins: []string{"http://app.example.com"},
	}

	server := stream.New(cfg, s.logger)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{
			name:       "allows a configured origin",
			origin:     "http://app.example.com",
			wantOrigin: "http://app.example.com",
		},
		{
			name:       "denies an unknown origin",
			origin:     "http://evil.example.com",
			wantOrigin: "",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
			rec := httptest.NewRecorder()

			server.Echo.ServeHTTP(rec, req)

			s.Equal(tt.wantOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
}

func TestServerPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ServerPublicTestSuite))
}
