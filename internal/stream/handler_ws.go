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
	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"
)

// GetStreamHandler returns websocket stream handlers for registration.
// Both the root path and /ws serve the event stream, and both pass
// through admission.
func (s *Server) GetStreamHandler(
	hub *Hub,
) []func(e *echo.Echo) {
	handler := s.streamHandler(hub)
	admission := s.admissionMiddleware()

	return []func(e *echo.Echo){
		func(e *echo.Echo) {
			e.GET("/", handler, admission)
			e.GET("/ws", handler, admission)
		},
	}
}

// streamHandler upgrades the request and relays hub events to the
// client until the subscription channel closes, the peer disconnects,
// or a send fails. The handler blocks for the life of the session,
// which keeps the connection slot held in the admission middleware.
func (s *Server) streamHandler(
	hub *Hub,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		websocket.Handler(func(ws *websocket.Conn) {
			defer func() { _ = ws.Close() }()

			id, events := hub.Subscribe()
			defer hub.Unsubscribe(id)

			// Inbound frames are discarded; the reader exists to
			// observe the peer closing the connection.
			closed := make(chan struct{})
			go func() {
				var discard string
				for {
					if err := websocket.Message.Receive(ws, &discard); err != nil {
						close(closed)

						return
					}
				}
			}()

			for {
				select {
				case msg, ok := <-events:
					if !ok {
						return
					}

					if err := websocket.Message.Send(ws, msg); err != nil {
						s.logger.Debug(
							"websocket send failed, closing session",
							slog.String("subscriber", id.String()),
							slog.String("error", err.Error()),
						)

						return
					}
				case <-closed:
					s.logger.Debug(
						"websocket peer disconnected",
						slog.String("subscriber", id.String()),
					)

					return
				}
			}
		}).ServeHTTP(c.Response(), c.Request())

		return nil
	}
}
