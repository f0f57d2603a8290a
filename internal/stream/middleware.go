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
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const maxKeyHintLen = 8

// admissionMiddleware gates a streaming connection. Checks run in
// order: request rate, connection count, then API key. A rejected
// request never reaches the key check, and an admitted connection
// holds its slot until the session ends.
func (s *Server) admissionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			source := c.RealIP()
			sec := s.appConfig.Server.Security

			if sec.RateLimit.Enabled && s.limiter != nil {
				if !s.limiter.AllowRequest(source) {
					s.audit.RateLimitExceeded(source, "request")
					s.metrics.IncrementRateLimitRejections()

					return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
				}

				if !s.limiter.AllowConnection(source) {
					s.audit.RateLimitExceeded(source, "connection")
					s.metrics.IncrementRateLimitRejections()

					return echo.NewHTTPError(http.StatusTooManyRequests, "too many connections")
				}
				defer s.limiter.ReleaseConnection(source)
			}

			if sec.Auth.Enabled {
				key := c.Request().Header.Get(sec.Auth.Header)
				if key == "" {
					s.audit.AuthFailure(source, "missing API key")
					s.metrics.IncrementAuthFailures()

					return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
				}

				if !matchKey(key, sec.Auth.Keys()) {
					s.audit.AuthFailure(source, "invalid API key")
					s.metrics.IncrementAuthFailures()

					return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
				}

				s.audit.AuthSuccess(source, keyHint(key))
			}

			s.audit.ConnectionOpened(source)
			opened := time.Now()

			err := next(c)

			s.audit.ConnectionClosed(source, time.Since(opened))

			if err != nil {
				s.logger.Debug(
					"stream session ended with error",
					slog.String("source", source),
					slog.String("error", err.Error()),
				)
			}

			return err
		}
	}
}

// matchKey compares the presented key against every accepted key in
// constant time. No accepted keys means no match.
func matchKey(
	presented string,
	accepted []string,
) bool {
	match := false
	for _, key := range accepted {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			match = true
		}
	}

	return match
}

// keyHint returns a loggable prefix of an API key, or an empty string
// when the key is too short to truncate safely.
func keyHint(
	key string,
) string {
	if len(key) > maxKeyHintLen {
		return key[:maxKeyHintLen]
	}

	return ""
}
