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

// Package decode converts raw card field bytes into normalized Unicode text.
//
// Card fields arrive TIS-620 encoded (decoded here through the Windows-874
// code page) with '#' as the sub-field delimiter and unused capacity padded
// with bytes outside the encoding.
package decode

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// delimiter separates sub-fields inside a raw composite field.
const delimiter = 0x23 // '#'

// Text decodes a single-value field. Delimiter bytes are replaced with
// spaces and runs of whitespace are collapsed.
func Text(
	raw []byte,
) (string, error) {
	decoded, err := charmap.Windows874.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding windows-874: %w", err)
	}

	return collapse(strings.ReplaceAll(string(decoded), "#", " ")), nil
}

// Parts decodes a composite field by splitting the raw bytes on the
// delimiter. The result always has exactly n elements: missing segments are
// padded with empty strings, extra segments are dropped. Empty segments are
// preserved so positional layouts survive the split.
func Parts(
	raw []byte,
	n int,
) ([]string, error) {
	segments := bytes.Split(raw, []byte{delimiter})

	parts := make([]string, n)
	for i := 0; i < n && i < len(segments); i++ {
		decoded, err := charmap.Windows874.NewDecoder().Bytes(segments[i])
		if err != nil {
			return nil, fmt.Errorf("decoding windows-874: %w", err)
		}
		parts[i] = collapse(string(decoded))
	}

	return parts, nil
}

// collapse trims leading/trailing whitespace, collapses interior runs to a
// single space, and normalizes to composed form (NFC).
func collapse(
	s string,
) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
