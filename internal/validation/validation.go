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

// Package validation wires the shared validator used for config and
// APDU command checks.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var instance = validator.New()

// customHints maps validator tags to a hint appended to the default error.
var customHints = map[string]func(fe validator.FieldError) string{
	"apdu": func(fe validator.FieldError) string {
		return fmt.Sprintf("command %q is not hex encoded byte pairs", fe.Value())
	},
}

// Struct validates a struct and returns the error message and false if invalid.
func Struct(
	v any,
) (string, bool) {
	return check(instance.Struct(v))
}

// Var validates a single value against a tag and returns the error
// message and false if invalid.
func Var(
	field any,
	tag string,
) (string, bool) {
	return check(instance.Var(field, tag))
}

// check folds a validator error into a display string. Field errors get
// their custom hint appended; anything else (non-struct input, a broken
// tag expression) surfaces as-is.
func check(
	err error,
) (string, bool) {
	if err == nil {
		return "", true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error(), false
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fe.Error()
		if hint, ok := customHints[fe.Tag()]; ok {
			msg = fmt.Sprintf("%s: %s", msg, hint(fe))
		}
		msgs = append(msgs, msg)
	}

	return strings.Join(msgs, "; "), false
}

// Instance returns the shared validator for registering custom validators.
func Instance() *validator.Validate {
	return instance
}
