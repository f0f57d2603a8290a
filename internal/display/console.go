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

// Package display renders card events on the operator's terminal.
// Citizen IDs and addresses are always masked; the full record never
// reaches the terminal.
package display

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cardbridge-io/cardbridge/internal/decode"
	"github.com/cardbridge-io/cardbridge/internal/identity"
)

// Theme colors for terminal rendering.
var (
	purple = lipgloss.Color("99")
	gray   = lipgloss.Color("245")
	teal   = lipgloss.Color("#06ffa5")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(purple)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(purple)
	valueStyle = lipgloss.NewStyle().Foreground(teal)
	dimStyle   = lipgloss.NewStyle().Foreground(gray)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1)
)

// Console writes card summaries to a terminal.
type Console struct {
	logger *slog.Logger
	out    io.Writer
}

// New creates a Console writing to out.
func New(
	logger *slog.Logger,
	out io.Writer,
) *Console {
	return &Console{
		logger: logger,
		out:    out,
	}
}

type cardRow struct {
	label string
	value string
}

// ShowRecord renders a bordered card summary. Dates use the Thai month
// form; the citizen ID and address are masked.
func (c *Console) ShowRecord(
	rec *identity.Record,
) {
	c.logger.Debug(
		"rendering card",
		slog.String("citizen_id", identity.MaskCitizenID(rec.CitizenID)),
	)

	rows := []cardRow{
		{"Citizen ID:", identity.MaskCitizenID(rec.CitizenID)},
		{"Name (TH):", thaiName(rec)},
		{"Name (EN):", rec.EnFullName},
		{"Date of Birth:", decode.ThaiDate(rec.BirthDate)},
		{"Sex:", rec.Sex},
		{"Card Issuer:", rec.Issuer},
		{"Issue Date:", decode.ThaiDate(rec.IssueDate)},
		{"Expire Date:", decode.ThaiDate(rec.ExpireDate)},
		{"Address:", maskedAddress(rec)},
	}

	width := 0
	for _, r := range rows {
		if r.value != "" && len(r.label) > width {
			width = len(r.label)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Card Information"))
	for _, r := range rows {
		if r.value == "" {
			continue
		}

		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", width, r.label)))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(r.value))
	}

	fmt.Fprintln(c.out, cardStyle.Render(b.String()))
}

// ShowRemoval renders the removal notice.
func (c *Console) ShowRemoval() {
	fmt.Fprintln(c.out, dimStyle.Render("Card removed. Waiting for card..."))
}

// maskedAddress hides everything but the province. A record with no
// address data renders no row at all.
func maskedAddress(
	rec *identity.Record,
) string {
	if rec.Address == "" && rec.Province == "" {
		return ""
	}

	return identity.MaskAddress(rec.Province)
}

func thaiName(
	rec *identity.Record,
) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{
		rec.ThaiPrefix,
		rec.ThaiFirstName,
		rec.ThaiMiddleName,
		rec.ThaiLastName,
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}
