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

// Package identity holds the decoded card-holder record and the screening
// rules applied to it before distribution.
package identity

// Record is a fully decoded national ID card. Dates are kept in the raw
// YYYYMMDD Buddhist Era form read from the card; presentation formatting
// is applied by consumers.
type Record struct {
	// CitizenID is the 13 digit citizen identifier.
	CitizenID string

	// Thai name components split from the card's delimited name field.
	ThaiPrefix     string
	ThaiFirstName  string
	ThaiMiddleName string
	ThaiLastName   string

	// English name components plus the collapsed full form.
	EnPrefix     string
	EnFirstName  string
	EnMiddleName string
	EnLastName   string
	EnFullName   string

	// BirthDate is the date of birth in YYYYMMDD form.
	BirthDate string

	// Sex is "1" for male and "2" for female.
	Sex string

	// Nationality is the ISO 3166-1 alpha-3 nationality code.
	Nationality string

	// Issuer is the authority that issued the card.
	Issuer string

	// IssueDate and ExpireDate are in YYYYMMDD form.
	IssueDate  string
	ExpireDate string

	// Address components recovered from the card's delimited address
	// field, plus the joined full address.
	HouseNo  string
	Village  string
	Lane     string
	Road     string
	Tambol   string
	Amphur   string
	Province string
	Address  string

	// Photo is the base64 encoded card-holder photograph.
	Photo string
}
