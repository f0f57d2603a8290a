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

package validation

import (
	"encoding/hex"
	"strings"

	"github.com/go-playground/validator/v10"
)

func init() {
	// Cannot error: tag is non-empty and function is non-nil.
	_ = instance.RegisterValidation("apdu", validAPDU)
}

// validAPDU checks whether the value is a card command encoded as hex
// byte pairs. Spaces between pairs are allowed; the command must decode
// to at least one byte.
func validAPDU(fl validator.FieldLevel) bool {
	raw := strings.ReplaceAll(fl.Field().String(), " ", "")
	if raw == "" || len(raw)%2 != 0 {
		return false
	}

	_, err := hex.DecodeString(raw)

	return err == nil
}
