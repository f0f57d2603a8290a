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

// Package audit records security-relevant events as structured entries with
// category and severity metadata. Entries always reach the application log;
// an optional Exporter additionally persists them to an external sink.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category classifies an audit event by subsystem.
type Category string

const (
	// CategoryAuthentication covers API key verification events.
	CategoryAuthentication Category = "authentication"
	// CategoryRateLimit covers request and connection throttling events.
	CategoryRateLimit Category = "rate_limit"
	// CategoryConnection covers WebSocket session lifecycle events.
	CategoryConnection Category = "connection"
	// CategoryCardRead covers completed card read events.
	CategoryCardRead Category = "card_read"
	// CategoryConfiguration covers configuration lifecycle events.
	CategoryConfiguration Category = "configuration"
	// CategorySecurityError covers injection attempts and crypto failures.
	CategorySecurityError Category = "security_error"
	// CategoryValidation covers non-security record screening findings.
	CategoryValidation Category = "validation"
)

// Severity ranks audit events. Higher values are more serious.
type Severity int

const (
	// SeverityInfo marks routine events.
	SeverityInfo Severity = iota
	// SeverityWarning marks events worth operator attention.
	SeverityWarning
	// SeverityError marks security-relevant failures.
	SeverityError
	// SeverityCritical marks events requiring immediate response.
	SeverityCritical
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its lowercase name.
func (s *Severity) UnmarshalJSON(
	data []byte,
) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch name {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity: %q", name)
	}

	return nil
}

// Actions are the machine-readable event names recorded in entries.
const (
	ActionAuthSuccess       = "auth_success"
	ActionAuthFailure       = "auth_failure"
	ActionRateLimitExceeded = "rate_limit_exceeded"
	ActionConnectionOpen    = "connection_open"
	ActionConnectionClose   = "connection_close"
	ActionValidationFailure = "validation_failure"
	ActionCardRead          = "card_read"
	ActionConfigLoaded      = "config_loaded"
	ActionEncryptFailure    = "encrypt_failure"
)

// Entry represents a single audit log record.
type Entry struct {
	// ID is the unique identifier for this audit entry.
	ID string `json:"id"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Category classifies the event by subsystem.
	Category Category `json:"category"`
	// Severity ranks how serious the event is.
	Severity Severity `json:"severity"`
	// SourceIP is the address the event is attributed to. Events raised
	// by the reader itself carry the loopback address.
	SourceIP string `json:"source_ip"`
	// Action is the machine-readable event name.
	Action string `json:"action"`
	// Message is the human-readable event description.
	Message string `json:"message"`
}
