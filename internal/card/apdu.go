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

package card

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseCommand decodes a hex-encoded card command. Spaces between byte
// pairs are allowed and stripped before decoding.
func ParseCommand(
	s string,
) ([]byte, error) {
	clean := strings.ReplaceAll(s, " ", "")
	if clean == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", s, err)
	}

	return cmd, nil
}

// getResponse builds the follow-up command that fetches le pending bytes
// after a 61 XX status.
func getResponse(
	le byte,
) []byte {
	return []byte{0x00, 0xC0, 0x00, 0x00, le}
}

// DescribeStatus maps an ISO 7816-4 status word pair to a diagnostic
// description. Used for logging only; control flow keys off the raw bytes.
func DescribeStatus(
	sw1 byte,
	sw2 byte,
) string {
	switch sw1 {
	case 0x61:
		return "More data available"
	case 0x6C:
		return "Wrong Le field"
	case 0x63:
		if sw2 >= 0xC0 && sw2 <= 0xCF {
			return "Counter verification"
		}
	}

	switch uint16(sw1)<<8 | uint16(sw2) {
	case 0x9000:
		return "Success"
	case 0x6200:
		return "No information given"
	case 0x6281:
		return "Part of returned data may be corrupted"
	case 0x6282:
		return "End of file reached before reading"
	case 0x6300:
		return "Verification failed"
	case 0x6400:
		return "State of non-volatile memory unchanged"
	case 0x6500:
		return "State of non-volatile memory changed"
	case 0x6581:
		return "Memory failure"
	case 0x6600:
		return "Security-related issue"
	case 0x6700:
		return "Wrong length"
	case 0x6800:
		return "Functions in CLA not supported"
	case 0x6881:
		return "Logical channel not supported"
	case 0x6882:
		return "Secure messaging not supported"
	case 0x6982:
		return "Security status not satisfied"
	case 0x6983:
		return "Authentication method blocked"
	case 0x6984:
		return "Referenced data invalidated"
	case 0x6985:
		return "Conditions of use not satisfied"
	case 0x6986:
		return "Command not allowed (no EF selected)"
	case 0x6A80:
		return "Incorrect parameters in command data field"
	case 0x6A81:
		return "Function not supported"
	case 0x6A82:
		return "File not found"
	case 0x6A83:
		return "Record not found"
	case 0x6A84:
		return "Not enough memory space"
	case 0x6A86:
		return "Incorrect parameters P1-P2"
	case 0x6A88:
		return "Referenced data not found"
	case 0x6B00:
		return "Wrong parameters P1-P2"
	case 0x6D00:
		return "Instruction code not supported"
	case 0x6E00:
		return "Class not supported"
	case 0x6F00:
		return "No precise diagnosis"
	default:
		return "Unknown error"
	}
}
