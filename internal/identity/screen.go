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
	"regexp"
	"strconv"
	"strings"
)

// Class categorizes a screening finding.
type Class string

const (
	// ClassFormat marks structural problems such as wrong length or
	// invalid characters.
	ClassFormat Class = "Format"

	// ClassIntegrity marks data that is well formed but fails an
	// internal consistency check.
	ClassIntegrity Class = "Integrity"

	// ClassSecurity marks content associated with injection attacks.
	ClassSecurity Class = "Security"
)

// Finding is a single screening result for one record field.
type Finding struct {
	// Field is the human readable field label.
	Field string

	// Class categorizes the finding.
	Class Class

	// Message describes what failed.
	Message string
}

const (
	citizenIDLength  = 13
	maxNameLength    = 200
	maxAddressLength = 500
)

// Characters associated with injection payloads. Any occurrence is a
// security finding, not merely a format one.
const suspiciousChars = `<>{}[]\|;&$`

const (
	fieldCitizenID   = "Citizen ID"
	fieldBirthDate   = "Birth date"
	fieldIssueDate   = "Issue date"
	fieldExpireDate  = "Expire date"
	fieldGender      = "Gender"
	fieldThaiName    = "Thai name"
	fieldEnglishName = "English name"
	fieldAddress     = "Address"
)

var datePattern = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})$`)

// Screen checks every field of a decoded record and returns the findings.
// Bad card data never panics or errors; it only produces findings. Each
// field reports at most one finding, the first check that fails.
func Screen(
	rec Record,
) []Finding {
	thaiName := fmt.Sprintf(
		"%s %s %s %s",
		rec.ThaiPrefix,
		rec.ThaiFirstName,
		rec.ThaiMiddleName,
		rec.ThaiLastName,
	)

	var findings []Finding

	for _, f := range []*Finding{
		checkCitizenID(rec.CitizenID),
		checkDate(fieldBirthDate, rec.BirthDate),
		checkDate(fieldIssueDate, rec.IssueDate),
		checkDate(fieldExpireDate, rec.ExpireDate),
		checkSex(rec.Sex),
		checkText(fieldThaiName, "Name", thaiName, maxNameLength),
		checkText(fieldEnglishName, "Name", rec.EnFullName, maxNameLength),
		checkText(fieldAddress, "Address", rec.Address, maxAddressLength),
	} {
		if f != nil {
			findings = append(findings, *f)
		}
	}

	return findings
}

// HasSecurity reports whether any finding is a security threat.
func HasSecurity(
	findings []Finding,
) bool {
	for _, f := range findings {
		if f.Class == ClassSecurity {
			return true
		}
	}

	return false
}

// ValidChecksum reports whether a 13 digit citizen ID carries a correct
// mod 11 check digit. The first 12 digits are each weighted by
// (13 - position); the check digit is (11 - sum mod 11) mod 10.
func ValidChecksum(
	id string,
) bool {
	if len(id) != citizenIDLength {
		return false
	}

	sum := 0

	for i := 0; i < citizenIDLength-1; i++ {
		d := id[i]
		if d < '0' || d > '9' {
			return false
		}

		sum += int(d-'0') * (citizenIDLength - i)
	}

	check := id[citizenIDLength-1]
	if check < '0' || check > '9' {
		return false
	}

	return (11-sum%11)%10 == int(check-'0')
}

func checkCitizenID(
	id string,
) *Finding {
	clean := strings.TrimSpace(id)

	if len(clean) != citizenIDLength {
		return &Finding{
			Field:   fieldCitizenID,
			Class:   ClassFormat,
			Message: fmt.Sprintf("Invalid length: expected 13 digits, got %d", len(clean)),
		}
	}

	for i := 0; i < len(clean); i++ {
		if clean[i] < '0' || clean[i] > '9' {
			return &Finding{
				Field:   fieldCitizenID,
				Class:   ClassFormat,
				Message: "Contains non-digit characters",
			}
		}
	}

	if !ValidChecksum(clean) {
		return &Finding{
			Field:   fieldCitizenID,
			Class:   ClassIntegrity,
			Message: "Invalid checksum",
		}
	}

	return nil
}

func checkDate(
	field string,
	date string,
) *Finding {
	m := datePattern.FindStringSubmatch(date)
	if m == nil {
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: "Invalid date format: expected YYYYMMDD or YYYY-MM-DD",
		}
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	switch {
	case year < 1900 || year > 2100:
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: fmt.Sprintf("Invalid year: %d", year),
		}
	case month < 1 || month > 12:
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: fmt.Sprintf("Invalid month: %d", month),
		}
	case day < 1 || day > 31:
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: fmt.Sprintf("Invalid day: %d", day),
		}
	}

	return nil
}

func checkSex(
	sex string,
) *Finding {
	clean := strings.TrimSpace(sex)

	if clean != "1" && clean != "2" {
		return &Finding{
			Field:   fieldGender,
			Class:   ClassFormat,
			Message: fmt.Sprintf("Invalid gender code: expected '1' or '2', got '%s'", clean),
		}
	}

	return nil
}

func checkText(
	field string,
	kind string,
	value string,
	maxLen int,
) *Finding {
	clean := strings.TrimSpace(value)

	if clean == "" {
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: fmt.Sprintf("%s cannot be empty", kind),
		}
	}

	if len(clean) > maxLen {
		return &Finding{
			Field:   field,
			Class:   ClassFormat,
			Message: fmt.Sprintf("%s too long: %d characters", kind, len(clean)),
		}
	}

	if strings.ContainsAny(clean, suspiciousChars) {
		return &Finding{
			Field:   field,
			Class:   ClassSecurity,
			Message: "Contains suspicious characters",
		}
	}

	return nil
}
