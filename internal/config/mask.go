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
	"fmt"

	masker "github.com/ggwhite/go-masker/v2"
)

// Masked returns a copy of the configuration safe for logging. Fields
// tagged as secrets are replaced with masked placeholders.
func Masked(
	cfg Config,
) (Config, error) {
	m := masker.NewMaskerMarshaler()

	out, err := m.Struct(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("mask config: %w", err)
	}

	masked, ok := out.(*Config)
	if !ok {
		return Config{}, fmt.Errorf("mask config: unexpected type %T", out)
	}

	keys := make([]string, 0, len(cfg.Server.Security.Auth.APIKeys))
	for _, k := range cfg.Server.Security.Auth.APIKeys {
		mk, err := m.Marshal(masker.MaskerTypePassword, k)
		if err != nil {
			return Config{}, fmt.Errorf("mask config: %w", err)
		}
		keys = append(keys, mk)
	}
	masked.Server.Security.Auth.APIKeys = keys

	return *masked, nil
}
