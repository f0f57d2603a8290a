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
	"os"
	"strings"
)

// Environment variables consulted when the corresponding configuration
// lists are empty. Values are comma separated.
const (
	EnvAPIKeys        = "API_KEYS"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
)

// Keys returns the accepted API keys. Keys from the configuration file
// take precedence; the API_KEYS environment variable is consulted only
// when the file provides none.
func (a Auth) Keys() []string {
	if len(a.APIKeys) > 0 {
		return a.APIKeys
	}

	return splitEnvList(EnvAPIKeys)
}

// Origins returns the allowed CORS origins. Origins from the
// configuration file take precedence; the ALLOWED_ORIGINS environment
// variable is consulted only when the file provides none.
func (c CORS) Origins() []string {
	if len(c.AllowOrigins) > 0 {
		return c.AllowOrigins
	}

	return splitEnvList(EnvAllowedOrigins)
}

// splitEnvList splits a comma separated environment variable, trimming
// whitespace and dropping empty entries.
func splitEnvList(
	name string,
) []string {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
