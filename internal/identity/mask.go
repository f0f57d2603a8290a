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

package identity

import (
	"fmt"
	"strings"
)

// MaskCitizenID redacts a citizen ID for logs and operator display,
// keeping only the last 4 digits.
func MaskCitizenID(
	id string,
) string {
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}

	return strings.Repeat("*", len(id)-4) + id[len(id)-4:]
}

// MaskAddress redacts an address for logs and operator display, keeping
// only the province to prevent location identification.
func MaskAddress(
	province string,
) string {
	if province == "" {
		return "[masked address]"
	}

	return fmt.Sprintf("[hidden] %s", province)
}
