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

package stream

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/config"
)

// New initialize a new Server and configure an Echo server.
func New(
	appConfig config.Config,
	logger *slog.Logger,
	opts ...Option,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(otelecho.Middleware("cardbridge-stream"))
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(corsConfig(appConfig.Server.Security.CORS, logger)))

	s := &Server{
		Echo:      e,
		logger:    logger,
		appConfig: appConfig,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.audit == nil {
		s.audit = audit.New(logger, false, nil)
	}

	return s
}

// corsConfig builds the CORS policy. Allow-all admits any origin;
// restricted mode admits only the configured origins, GET requests,
// and the content-type and authorization headers. Restricted mode with
// no origins admits none.
func corsConfig(
	cors config.CORS,
	logger *slog.Logger,
) middleware.CORSConfig {
	if cors.AllowAll {
		logger.Warn("CORS allow_all is enabled, do not use in production")

		return middleware.CORSConfig{}
	}

	origins := cors.Origins()
	if len(origins) == 0 {
		logger.Error("CORS restricted mode enabled but no allowed origins configured")
	} else {
		logger.Info(
			"CORS restricted to allowed origins",
			slog.Any("origins", origins),
		)
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}

	return middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			_, ok := allowed[origin]

			return ok, nil
		},
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}
}

// RegisterHandlers registers the provided route registrations.
func (s *Server) RegisterHandlers(
	handlers []func(e *echo.Echo),
) {
	for _, register := range handlers {
		register(s.Echo)
	}
}

// Start starts the Echo server on the configured address, with TLS when
// configured.
func (s *Server) Start() {
	go func() {
		listenAddr := s.appConfig.Server.Addr()
		tlsCfg := s.appConfig.Server.Security.TLS

		if tlsCfg.Enabled {
			s.logger.Info(
				"starting server",
				slog.String("addr", listenAddr),
				slog.Bool("tls", true),
			)
			err := s.Echo.StartTLS(listenAddr, tlsCfg.CertFile, tlsCfg.KeyFile)
			if err != nil && err != http.ErrServerClosed {
				s.logger.Error(
					"failed to start server",
					slog.String("error", err.Error()),
				)
			}

			return
		}

		s.logger.Info("starting server", slog.String("addr", listenAddr))
		s.logger.Warn("TLS is disabled, event traffic is not encrypted")
		if err := s.Echo.Start(listenAddr); err != nil && err != http.ErrServerClosed {
			s.logger.Error(
				"failed to start server",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Stop gracefully shuts down the Echo server.
func (s *Server) Stop(
	ctx context.Context,
) {
	s.logger.Info("stopping server")

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.logger.Error(
			"server shutdown failed",
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("server stopped gracefully")
	}
}
