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

package decode

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// addressSegments is the widest observed layout of the raw address field.
const addressSegments = 8

// Address holds the positional components recovered from the card's
// address field. Tambol is the subdistrict, Amphur the district.
type Address struct {
	HouseNo  string
	Village  string
	Lane     string
	Road     string
	Tambol   string
	Amphur   string
	Province string
	// Combined joins the non-empty components into a single line.
	Combined string
}

// ParseAddress recovers structured address components from the raw field.
//
// The field has two observed layouts, 7-segment and 8-segment, told apart
// by whether position 4 is empty once non-Thai characters are stripped.
// The subdistrict/district/province triple sits at positions 4/5/6 in the
// 7-segment layout and 5/6/7 in the 8-segment one. Genuinely ambiguous
// cards can misassign the triple; there is no card-type indicator to
// cross-check against.
func ParseAddress(
	raw []byte,
) (Address, error) {
	decoded, err := charmap.Windows874.NewDecoder().Bytes(truncateAddress(raw))
	if err != nil {
		return Address{}, fmt.Errorf("decoding windows-874: %w", err)
	}

	segments := strings.Split(string(decoded), "#")
	parts := make([]string, addressSegments)
	for i := 0; i < addressSegments && i < len(segments); i++ {
		parts[i] = collapse(segments[i])
	}

	addr := Address{
		HouseNo: parts[0],
		Village: parts[1],
		Lane:    parts[2],
		Road:    parts[3],
	}

	tambolIdx := 4
	if stripNonThai(parts[4]) == "" {
		tambolIdx = 5
	}
	addr.Tambol = stripNonThai(parts[tambolIdx])
	addr.Amphur = stripNonThai(parts[tambolIdx+1])
	addr.Province = stripNonThai(parts[tambolIdx+2])

	addr.Combined = joinNonEmpty(
		addr.HouseNo,
		addr.Village,
		addr.Road,
		addr.Lane,
		addr.Tambol,
		addr.Amphur,
		addr.Province,
	)

	return addr, nil
}

// truncateAddress cuts the raw bytes at the first byte that is not ASCII
// printable, the sub-field delimiter, or a TIS-620 Thai character. The card
// pads unused address capacity with bytes outside those ranges.
func truncateAddress(
	raw []byte,
) []byte {
	for i, b := range raw {
		switch {
		case b == delimiter:
		case b >= 0x20 && b <= 0x7E:
		case b >= 0xA1 && b <= 0xFB:
		default:
			return raw[:i]
		}
	}

	return raw
}

// stripNonThai keeps Thai consonants, vowels/tone marks, extended signs,
// and spaces, then drops single-character words left behind as decode
// artifacts.
func stripNonThai(
	s string,
) string {
	var b strings.Builder
	for _, r := range s {
		if isThaiLetter(r) || r == ' ' {
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			kept = append(kept, w)
		}
	}

	return strings.Join(kept, " ")
}

func isThaiLetter(
	r rune,
) bool {
	return (r >= 'ก' && r <= 'ฮ') ||
		(r >= 'ะ' && r <= 'ฺ') ||
		(r >= 'เ' && r <= '๎')
}

func joinNonEmpty(
	parts ...string,
) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, " ")
}
