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

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cardbridge-io/cardbridge/internal/validation"
)

type APDUPublicTestSuite struct {
	suite.Suite
}

type commandInput struct {
	Command string `validate:"required,apdu"`
}

func (s *APDUPublicTestSuite) TestValidAPDU() {
	tests := []struct {
		name     string
		input    commandInput
		wantOK   bool
		contains []string
	}{
		{
			name:   "when command is plain hex",
			input:  commandInput{Command: "80B0000402000D"},
			wantOK: true,
		},
		{
			name:   "when command has spaced byte pairs",
			input:  commandInput{Command: "00 A4 04 00 08 A0 00 00 00 54 48 00 01"},
			wantOK: true,
		},
		{
			name:   "when command is lowercase hex",
			input:  commandInput{Command: "80b0017b0200ff"},
			wantOK: true,
		},
		{
			name:     "when command is empty",
			input:    commandInput{Command: ""},
			wantOK:   false,
			contains: []string{"required"},
		},
		{
			name:     "when command is only spaces",
			input:    commandInput{Command: "   "},
			wantOK:   false,
			contains: []string{"apdu", "not hex encoded"},
		},
		{
			name:     "when command has odd length",
			input:    commandInput{Command: "80B00"},
			wantOK:   false,
			contains: []string{"apdu", "80B00"},
		},
		{
			name:     "when command has non hex characters",
			input:    commandInput{Command: "80GZ0004"},
			wantOK:   false,
			contains: []string{"apdu", "not hex encoded"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			errMsg, ok := validation.Struct(tt.input)
			s.Equal(tt.wantOK, ok)

			if !ok {
				for _, c := range tt.contains {
					s.Contains(errMsg, c)
				}
			}
		})
	}
}

func TestAPDUPublicTestSuite(t *testing.T) {
	suite.Run(t, new(APDUPublicTestSuite))
}
