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

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// localAddr attributes events raised by the reader itself rather than a
// remote peer.
const localAddr = "127.0.0.1"

// Exporter persists audit entries to an external sink.
type Exporter interface {
	// Open prepares the sink for writing.
	Open(ctx context.Context) error
	// Write persists a single audit entry.
	Write(ctx context.Context, entry Entry) error
	// Close flushes and releases the sink.
	Close(ctx context.Context) error
}

// Logger records audit events. Every entry is written to the application
// log; when an exporter is configured each entry is also persisted through
// it. A disabled logger drops all events.
type Logger struct {
	logger   *slog.Logger
	enabled  bool
	exporter Exporter
	mu       sync.Mutex
}

// New creates an audit logger. A nil exporter keeps entries in the
// application log only.
func New(
	logger *slog.Logger,
	enabled bool,
	exporter Exporter,
) *Logger {
	if enabled {
		logger.Info("audit logging enabled")
	} else {
		logger.Warn("audit logging disabled, security events will not be recorded")
	}

	return &Logger{
		logger:   logger,
		enabled:  enabled,
		exporter: exporter,
	}
}

// Open prepares the configured exporter, if any.
func (l *Logger) Open(
	ctx context.Context,
) error {
	if l.exporter == nil {
		return nil
	}

	return l.exporter.Open(ctx)
}

// Close flushes and closes the configured exporter, if any.
func (l *Logger) Close(
	ctx context.Context,
) error {
	if l.exporter == nil {
		return nil
	}

	return l.exporter.Close(ctx)
}

// AuthSuccess records a successful API key verification. The keyHint is
// the non-sensitive prefix of the matched key and may be empty.
func (l *Logger) AuthSuccess(
	source string,
	keyHint string,
) {
	message := "Authentication successful"
	if keyHint != "" {
		message = fmt.Sprintf("Authentication successful (key: %s...)", keyHint)
	}

	l.emit(Entry{
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		SourceIP: l.attribute(source),
		Action:   ActionAuthSuccess,
		Message:  message,
	})
}

// AuthFailure records a rejected API key verification.
func (l *Logger) AuthFailure(
	source string,
	reason string,
) {
	l.emit(Entry{
		Category: CategoryAuthentication,
		Severity: SeverityWarning,
		SourceIP: l.attribute(source),
		Action:   ActionAuthFailure,
		Message:  fmt.Sprintf("Authentication failed: %s", reason),
	})
}

// RateLimitExceeded records a throttled request or connection attempt.
// The limitType names the exhausted budget, "request" or "connection".
func (l *Logger) RateLimitExceeded(
	source string,
	limitType string,
) {
	l.emit(Entry{
		Category: CategoryRateLimit,
		Severity: SeverityWarning,
		SourceIP: l.attribute(source),
		Action:   ActionRateLimitExceeded,
		Message:  fmt.Sprintf("%s rate limit exceeded", limitType),
	})
}

// ConnectionOpened records an established WebSocket session.
func (l *Logger) ConnectionOpened(
	source string,
) {
	l.emit(Entry{
		Category: CategoryConnection,
		Severity: SeverityInfo,
		SourceIP: l.attribute(source),
		Action:   ActionConnectionOpen,
		Message:  "WebSocket connection established",
	})
}

// ConnectionClosed records a terminated WebSocket session and how long
// it lasted.
func (l *Logger) ConnectionClosed(
	source string,
	duration time.Duration,
) {
	l.emit(Entry{
		Category: CategoryConnection,
		Severity: SeverityInfo,
		SourceIP: l.attribute(source),
		Action:   ActionConnectionClose,
		Message:  fmt.Sprintf("WebSocket connection closed (duration: %dms)", duration.Milliseconds()),
	})
}

// ValidationFailure records a screening finding against a card record.
// Security findings are escalated to error severity under the security
// category; all other findings are warnings.
func (l *Logger) ValidationFailure(
	source string,
	field string,
	errorType string,
	details string,
	securityThreat bool,
) {
	entry := Entry{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		SourceIP: l.attribute(source),
		Action:   ActionValidationFailure,
		Message:  fmt.Sprintf("Validation failed for field '%s': %s - %s", field, errorType, details),
	}

	if securityThreat {
		entry.Category = CategorySecurityError
		entry.Severity = SeverityError
		entry.Message = fmt.Sprintf("Security threat detected in field '%s': %s", field, details)
	}

	l.emit(entry)
}

// CardRead records a completed card read. The citizen identifier must
// already be masked by the caller.
func (l *Logger) CardRead(
	source string,
	maskedID string,
) {
	l.emit(Entry{
		Category: CategoryCardRead,
		Severity: SeverityInfo,
		SourceIP: l.attribute(source),
		Action:   ActionCardRead,
		Message:  fmt.Sprintf("Card read completed (citizen: %s)", maskedID),
	})
}

// ConfigLoaded records that configuration was applied at startup.
func (l *Logger) ConfigLoaded(
	path string,
) {
	message := "Configuration loaded (defaults)"
	if path != "" {
		message = fmt.Sprintf("Configuration loaded from %s", path)
	}

	l.emit(Entry{
		Category: CategoryConfiguration,
		Severity: SeverityInfo,
		SourceIP: localAddr,
		Action:   ActionConfigLoaded,
		Message:  message,
	})
}

// EncryptFailure records a field that could not be encrypted and was
// withheld from the outbound payload.
func (l *Logger) EncryptFailure(
	field string,
	reason string,
) {
	l.emit(Entry{
		Category: CategorySecurityError,
		Severity: SeverityError,
		SourceIP: localAddr,
		Action:   ActionEncryptFailure,
		Message:  fmt.Sprintf("Encryption failed for field '%s': %s", field, reason),
	})
}

// attribute falls back to the loopback address when the event has no
// remote peer.
func (l *Logger) attribute(
	source string,
) string {
	if source == "" {
		return localAddr
	}

	return source
}

func (l *Logger) emit(
	entry Entry,
) {
	if !l.enabled {
		return
	}

	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()

	attrs := []any{
		slog.String("id", entry.ID),
		slog.String("category", string(entry.Category)),
		slog.String("severity", entry.Severity.String()),
		slog.String("source_ip", entry.SourceIP),
		slog.String("action", entry.Action),
	}

	switch entry.Severity {
	case SeverityInfo:
		l.logger.Info(entry.Message, attrs...)
	case SeverityWarning:
		l.logger.Warn(entry.Message, attrs...)
	default:
		l.logger.Error(entry.Message, attrs...)
	}

	if l.exporter == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.exporter.Write(context.Background(), entry); err != nil {
		l.logger.Error("write audit entry",
			slog.String("error", err.Error()),
		)
	}
}
