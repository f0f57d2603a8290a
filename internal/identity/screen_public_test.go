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

package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/cardbridge-io/cardbridge/internal/identity"
)

type ScreenPublicTestSuite struct {
	suite.Suite
}

func TestScreenPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ScreenPublicTestSuite))
}

func (suite *ScreenPublicTestSuite) validRecord() identity.Record {
	return identity.Record{
		CitizenID:     "1101700203344",
		ThaiPrefix:    "นาย",
		ThaiFirstName: "สมชาย",
		ThaiLastName:  "ใจดี",
		EnPrefix:      "Mr.",
		EnFirstName:   "Somchai",
		EnLastName:    "Jaidee",
		EnFullName:    "Mr. Somchai Jaidee",
		BirthDate:     "19900115",
		Sex:           "1",
		Nationality:   "THA",
		IssueDate:     "20150301",
		ExpireDate:    "20250228",
		HouseNo:       "99/1",
		Tambol:        "คลองตัน",
		Amphur:        "คลองเตย",
		Province:      "กรุงเทพ",
		Address:       "99/1 คลองตัน คลองเตย กรุงเทพ",
	}
}

func (suite *ScreenPublicTestSuite) TestScreen() {
	tests := []struct {
		name   string
		mutate func(rec *identity.Record)
		want   []identity.Finding
	}{
		{
			name:   "when record is clean no findings",
			mutate: func(rec *identity.Record) {},
			want:   nil,
		},
		{
			name: "when citizen id is short",
			mutate: func(rec *identity.Record) {
				rec.CitizenID = "110170020334"
			},
			want: []identity.Finding{
				{
					Field:   "Citizen ID",
					Class:   identity.ClassFormat,
					Message: "Invalid length: expected 13 digits, got 12",
				},
			},
		},
		{
			name: "when citizen id carries letters",
			mutate: func(rec *identity.Record) {
				rec.CitizenID = "110170020334a"
			},
			want: []identity.Finding{
				{
					Field:   "Citizen ID",
					Class:   identity.ClassFormat,
					Message: "Contains non-digit characters",
				},
			},
		},
		{
			name: "when citizen id checksum is wrong",
			mutate: func(rec *identity.Record) {
				rec.CitizenID = "1234567890123"
			},
			want: []identity.Finding{
				{
					Field:   "Citizen ID",
					Class:   identity.ClassIntegrity,
					Message: "Invalid checksum",
				},
			},
		},
		{
			name: "when birth date year is out of range",
			mutate: func(rec *identity.Record) {
				rec.BirthDate = "25470214"
			},
			want: []identity.Finding{
				{
					Field:   "Birth date",
					Class:   identity.ClassFormat,
					Message: "Invalid year: 2547",
				},
			},
		},
		{
			name: "when issue date month is out of range",
			mutate: func(rec *identity.Record) {
				rec.IssueDate = "20151301"
			},
			want: []identity.Finding{
				{
					Field:   "Issue date",
					Class:   identity.ClassFormat,
					Message: "Invalid month: 13",
				},
			},
		},
		{
			name: "when expire date is malformed",
			mutate: func(rec *identity.Record) {
				rec.ExpireDate = "2025/02/28"
			},
			want: []identity.Finding{
				{
					Field:   "Expire date",
					Class:   identity.ClassFormat,
					Message: "Invalid date format: expected YYYYMMDD or YYYY-MM-DD",
				},
			},
		},
		{
			name: "when hyphenated date is accepted",
			mutate: func(rec *identity.Record) {
				rec.BirthDate = "1990-01-15"
			},
			want: nil,
		},
		{
			name: "when gender code is unknown",
			mutate: func(rec *identity.Record) {
				rec.Sex = "3"
			},
			want: []identity.Finding{
				{
					Field:   "Gender",
					Class:   identity.ClassFormat,
					Message: "Invalid gender code: expected '1' or '2', got '3'",
				},
			},
		},
		{
			name: "when english name carries an injection payload",
			mutate: func(rec *identity.Record) {
				rec.EnFullName = "<script>alert(1)</script>"
			},
			want: []identity.Finding{
				{
					Field:   "English name",
					Class:   identity.ClassSecurity,
					Message: "Contains suspicious characters",
				},
			},
		},
		{
			name: "when address is empty",
			mutate: func(rec *identity.Record) {
				rec.Address = ""
			},
			want: []identity.Finding{
				{
					Field:   "Address",
					Class:   identity.ClassFormat,
					Message: "Address cannot be empty",
				},
			},
		},
		{
			name: "when english name exceeds the limit",
			mutate: func(rec *identity.Record) {
				rec.EnFullName = strings.Repeat("A", 201)
			},
			want: []identity.Finding{
				{
					Field:   "English name",
					Class:   identity.ClassFormat,
					Message: "Name too long: 201 characters",
				},
			},
		},
		{
			name: "when multiple fields fail each reports once",
			mutate: func(rec *identity.Record) {
				rec.CitizenID = "123"
				rec.Sex = "x"
			},
			want: []identity.Finding{
				{
					Field:   "Citizen ID",
					Class:   identity.ClassFormat,
					Message: "Invalid length: expected 13 digits, got 3",
				},
				{
					Field:   "Gender",
					Class:   identity.ClassFormat,
					Message: "Invalid gender code: expected '1' or '2', got 'x'",
				},
			},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			rec := suite.validRecord()
			tc.mutate(&rec)

			got := identity.Screen(rec)

			assert.Equal(suite.T(), tc.want, got)
		})
	}
}

func (suite *ScreenPublicTestSuite) TestValidChecksum() {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "when checksum matches", id: "1101700203344", want: true},
		{name: "when another checksum matches", id: "3100600123450", want: true},
		{name: "when check digit is off by one", id: "1101700203345", want: false},
		{name: "when sequential digits mismatch", id: "1234567890123", want: false},
		{name: "when too short", id: "110170020334", want: false},
		{name: "when too long", id: "11017002033441", want: false},
		{name: "when non digit present", id: "110170020334x", want: false},
		{name: "when empty", id: "", want: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.want, identity.ValidChecksum(tc.id))
		})
	}
}

func (suite *ScreenPublicTestSuite) TestHasSecurity() {
	tests := []struct {
		name     string
		findings []identity.Finding
		want     bool
	}{
		{
			name:     "when no findings",
			findings: nil,
			want:     false,
		},
		{
			name: "when only format findings",
			findings: []identity.Finding{
				{Field: "Gender", Class: identity.ClassFormat, Message: "x"},
			},
			want: false,
		},
		{
			name: "when a security finding is present",
			findings: []identity.Finding{
				{Field: "Gender", Class: identity.ClassFormat, Message: "x"},
				{Field: "Thai name", Class: identity.ClassSecurity, Message: "y"},
			},
			want: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.want, identity.HasSecurity(tc.findings))
		})
	}
}
