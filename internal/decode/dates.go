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
	"strconv"
)

// Card dates are 8-digit YYYYMMDD strings in the Buddhist Era calendar.
const (
	// unboundedExpiry is the sentinel cards carry for an expiry with no
	// end date.
	unboundedExpiry = "99999999"
	// farFuture replaces the sentinel so downstream formatting stays
	// uniform.
	farFuture = "29991231"
)

// thaiMonths are the Thai month abbreviations indexed by month-1.
var thaiMonths = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// NormalizeExpiry rewrites the unbounded expiry sentinel to a concrete
// far-future date. Other values pass through unchanged.
func NormalizeExpiry(
	s string,
) string {
	if s == unboundedExpiry {
		return farFuture
	}

	return s
}

// SlashDate renders an 8-digit date as YYYY/MM/DD. Values that are not
// exactly 8 digits are returned unchanged.
func SlashDate(
	s string,
) string {
	if !isEightDigits(s) {
		return s
	}

	return s[:4] + "/" + s[4:6] + "/" + s[6:]
}

// ThaiDate renders an 8-digit date with the Thai month abbreviation, e.g.
// "25470214" becomes "14 ก.พ. 2547". Values that are not exactly 8 digits,
// or whose month is out of range, are returned unchanged.
func ThaiDate(
	s string,
) string {
	if !isEightDigits(s) {
		return s
	}

	month, _ := strconv.Atoi(s[4:6])
	if month < 1 || month > 12 {
		return s
	}
	day, _ := strconv.Atoi(s[6:])

	return fmt.Sprintf("%d %s %s", day, thaiMonths[month-1], s[:4])
}

func isEightDigits(
	s string,
) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
