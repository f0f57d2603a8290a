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
	"time"

	"github.com/cardbridge-io/cardbridge/internal/card"
)

// Default returns the configuration used when no file is present.
// Overrides from the file merge over these values, so a partial file
// only needs the keys it changes.
func Default() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8182,
			Security: Security{
				Auth: Auth{
					Enabled: false,
					Header:  "X-API-Key",
				},
				RateLimit: RateLimit{
					Enabled:        true,
					MaxRequests:    60,
					Window:         60 * time.Second,
					MaxConnections: 5,
				},
				CORS: CORS{
					AllowAll: true,
				},
			},
		},
		Card: Card{
			SelectCommand: "00A4040008A000000054480001",
			FieldCommands: map[string]string{
				card.FieldCitizenID:   "80B0000402000D",
				card.FieldThaiName:    "80B00011020064",
				card.FieldEnglishName: "80B00075020064",
				card.FieldBirthDate:   "80B000D9020008",
				card.FieldGender:      "80B000E1020001",
				card.FieldIssuer:      "80B000F6020064",
				card.FieldIssueDate:   "80B00167020008",
				card.FieldExpireDate:  "80B0016F020008",
				card.FieldAddress:     "80B01579020064",
			},
			PhotoCommands: defaultPhotoCommands(),
			RetryAttempts: 3,
			RetryDelay:    500 * time.Millisecond,
			SettleDelay:   500 * time.Millisecond,
		},
		Output: Output{
			IncludePhoto: true,
		},
		Audit: Audit{
			Enabled: true,
		},
		Display: Display{
			Enabled: true,
		},
	}
}

// defaultPhotoCommands returns the twenty photograph chunk reads in
// order. Each command advances the file offset by 0xFF bytes.
func defaultPhotoCommands() []string {
	return []string{
		"80B0017B0200FF",
		"80B0027A0200FF",
		"80B003790200FF",
		"80B004780200FF",
		"80B005770200FF",
		"80B006760200FF",
		"80B007750200FF",
		"80B008740200FF",
		"80B009730200FF",
		"80B00A720200FF",
		"80B00B710200FF",
		"80B00C700200FF",
		"80B00D6F0200FF",
		"80B00E6E0200FF",
		"80B00F6D0200FF",
		"80B0106C0200FF",
		"80B0116B0200FF",
		"80B0126A0200FF",
		"80B013690200FF",
		"80B014680200FF",
	}
}
