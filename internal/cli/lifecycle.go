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

package cli

import (
	"context"
	"time"
)

// shutdownGrace bounds how long components get to drain on shutdown.
const shutdownGrace = 10 * time.Second

// Lifecycle is implemented by the daemon's long-running components: the
// card monitor, the event distributor, and the stream server.
type Lifecycle interface {
	// Start begins the component's work without blocking.
	Start()
	// Stop drains the component, honoring the context deadline.
	Stop(ctx context.Context)
}

// RunServer blocks until ctx is cancelled, stops the server under the
// shutdown grace period, then runs the cleanup functions in order.
func RunServer(
	ctx context.Context,
	server Lifecycle,
	cleanupFns ...func(),
) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownGrace,
	)
	defer cancel()

	server.Stop(shutdownCtx)

	for _, fn := range cleanupFns {
		fn()
	}
}
