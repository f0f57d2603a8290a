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
	"log/slog"

	"github.com/cardbridge-io/cardbridge/internal/decode"
	"github.com/cardbridge-io/cardbridge/internal/identity"
)

// Field names recognized by the read sequence. They key the configured
// command list.
const (
	FieldCitizenID   = "citizen_id"
	FieldThaiName    = "full_name_th"
	FieldEnglishName = "full_name_en"
	FieldBirthDate   = "date_of_birth"
	FieldGender      = "gender"
	FieldIssuer      = "card_issuer"
	FieldIssueDate   = "issue_date"
	FieldExpireDate  = "expire_date"
	FieldAddress     = "address"
)

// nameSegments is the layout of the card's name fields:
// prefix#first#middle#last.
const nameSegments = 4

// CommandSet holds the parsed commands of the card's read protocol.
type CommandSet struct {
	// Select activates the identity applet.
	Select []byte
	// Fields maps field names to their read commands.
	Fields map[string][]byte
	// Photo lists the photo chunk read commands in issuance order.
	Photo [][]byte
}

// NewCommandSet parses hex-encoded command strings into a CommandSet.
func NewCommandSet(
	selectHex string,
	fieldHex map[string]string,
	photoHex []string,
) (*CommandSet, error) {
	sel, err := ParseCommand(selectHex)
	if err != nil {
		return nil, fmt.Errorf("select command: %w", err)
	}

	fields := make(map[string][]byte, len(fieldHex))
	for name, h := range fieldHex {
		cmd, err := ParseCommand(h)
		if err != nil {
			return nil, fmt.Errorf("field %q command: %w", name, err)
		}
		fields[name] = cmd
	}

	photo := make([][]byte, 0, len(photoHex))
	for i, h := range photoHex {
		cmd, err := ParseCommand(h)
		if err != nil {
			return nil, fmt.Errorf("photo chunk %d command: %w", i+1, err)
		}
		photo = append(photo, cmd)
	}

	return &CommandSet{
		Select: sel,
		Fields: fields,
		Photo:  photo,
	}, nil
}

// Engine executes the read protocol against a connected card and
// assembles the decoded identity record.
type Engine struct {
	logger   *slog.Logger
	commands *CommandSet
}

// NewEngine creates an Engine for the given command set.
func NewEngine(
	logger *slog.Logger,
	commands *CommandSet,
) *Engine {
	return &Engine{
		logger:   logger,
		commands: commands,
	}
}

// Read runs the full read sequence: applet selection, field reads, name
// and address recovery, and photo chunk assembly.
func (e *Engine) Read(
	card Card,
) (*identity.Record, error) {
	if _, err := e.exchange(card, e.commands.Select); err != nil {
		return nil, fmt.Errorf("select applet: %w", err)
	}

	citizenID, err := e.readText(card, FieldCitizenID)
	if err != nil {
		return nil, err
	}

	birthDate, err := e.readText(card, FieldBirthDate)
	if err != nil {
		return nil, err
	}

	sex, err := e.readText(card, FieldGender)
	if err != nil {
		return nil, err
	}

	// The issuer field is absent on some card generations; tolerate it.
	issuer, err := e.readText(card, FieldIssuer)
	if err != nil {
		e.logger.Warn("read issuer field",
			slog.String("error", err.Error()),
		)
		issuer = ""
	}

	issueDate, err := e.readText(card, FieldIssueDate)
	if err != nil {
		return nil, err
	}

	expireDate, err := e.readText(card, FieldExpireDate)
	if err != nil {
		return nil, err
	}

	thaiName, err := e.readName(card, FieldThaiName)
	if err != nil {
		return nil, err
	}

	englishRaw, err := e.readRaw(card, FieldEnglishName)
	if err != nil {
		return nil, err
	}
	englishName, err := decode.Parts(englishRaw, nameSegments)
	if err != nil {
		return nil, fmt.Errorf("decode field %q: %w", FieldEnglishName, err)
	}
	englishFull, err := decode.Text(englishRaw)
	if err != nil {
		return nil, fmt.Errorf("decode field %q: %w", FieldEnglishName, err)
	}

	addrRaw, err := e.readRaw(card, FieldAddress)
	if err != nil {
		return nil, err
	}
	addr, err := decode.ParseAddress(addrRaw)
	if err != nil {
		return nil, fmt.Errorf("decode field %q: %w", FieldAddress, err)
	}

	photo := e.readPhoto(card)

	return &identity.Record{
		CitizenID:      citizenID,
		ThaiPrefix:     thaiName[0],
		ThaiFirstName:  thaiName[1],
		ThaiMiddleName: thaiName[2],
		ThaiLastName:   thaiName[3],
		EnPrefix:       englishName[0],
		EnFirstName:    englishName[1],
		EnMiddleName:   englishName[2],
		EnLastName:     englishName[3],
		EnFullName:     englishFull,
		BirthDate:      birthDate,
		Sex:            sex,
		Nationality:    "THA",
		Issuer:         issuer,
		IssueDate:      issueDate,
		ExpireDate:     decode.NormalizeExpiry(expireDate),
		HouseNo:        addr.HouseNo,
		Village:        addr.Village,
		Lane:           addr.Lane,
		Road:           addr.Road,
		Tambol:         addr.Tambol,
		Amphur:         addr.Amphur,
		Province:       addr.Province,
		Address:        addr.Combined,
		Photo:          photo,
	}, nil
}

// readText reads a single-value field and decodes it to collapsed text.
// Fields with no configured command decode to an empty string.
func (e *Engine) readText(
	card Card,
	name string,
) (string, error) {
	raw, err := e.readRaw(card, name)
	if err != nil {
		return "", err
	}

	text, err := decode.Text(raw)
	if err != nil {
		return "", fmt.Errorf("decode field %q: %w", name, err)
	}

	return text, nil
}

// readName reads a composite name field and splits it into its
// positional segments.
func (e *Engine) readName(
	card Card,
	name string,
) ([]string, error) {
	raw, err := e.readRaw(card, name)
	if err != nil {
		return nil, err
	}

	parts, err := decode.Parts(raw, nameSegments)
	if err != nil {
		return nil, fmt.Errorf("decode field %q: %w", name, err)
	}

	return parts, nil
}

func (e *Engine) readRaw(
	card Card,
	name string,
) ([]byte, error) {
	cmd, ok := e.commands.Fields[name]
	if !ok {
		e.logger.Warn("field has no configured command",
			slog.String("field", name),
		)
		return nil, nil
	}

	e.logger.Debug("reading field",
		slog.String("field", name),
		slog.String("command", hex.EncodeToString(cmd)),
	)

	data, err := e.exchange(card, cmd)
	if err != nil {
		return nil, fmt.Errorf("read field %q: %w", name, err)
	}

	return data, nil
}

// readPhoto fetches the configured photo chunks. Failed chunks are
// skipped; the remaining chunks still assemble in issuance order.
func (e *Engine) readPhoto(
	card Card,
) string {
	if len(e.commands.Photo) == 0 {
		return ""
	}

	chunks := make([][]byte, 0, len(e.commands.Photo))
	var total int
	for i, cmd := range e.commands.Photo {
		data, err := e.exchange(card, cmd)
		if err != nil {
			e.logger.Warn("read photo chunk",
				slog.Int("chunk", i+1),
				slog.Int("chunks", len(e.commands.Photo)),
				slog.String("error", err.Error()),
			)
			continue
		}
		chunks = append(chunks, data)
		total += len(data)
	}

	if len(chunks) < len(e.commands.Photo) {
		e.logger.Warn("photo incomplete",
			slog.Int("read", len(chunks)),
			slog.Int("chunks", len(e.commands.Photo)),
			slog.Int("bytes", total),
		)
	} else {
		e.logger.Debug("photo complete",
			slog.Int("chunks", len(chunks)),
			slog.Int("bytes", total),
		)
	}

	return decode.Photo(chunks)
}

// exchange transmits one command and reassembles the response. A 61 XX
// status starts a chained fetch: follow-up commands request XX pending
// bytes at a time until a terminal status arrives. The loop has no fixed
// iteration bound and terminates strictly on a non-61 status.
func (e *Engine) exchange(
	card Card,
	cmd []byte,
) ([]byte, error) {
	resp, err := card.Transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("transmit: %w", err)
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("short response: %d bytes", len(resp))
	}

	sw1, sw2 := resp[len(resp)-2], resp[len(resp)-1]
	switch {
	case sw1 == 0x90 && sw2 == 0x00:
		return resp[:len(resp)-2], nil
	case sw1 == 0x61:
	default:
		return nil, fmt.Errorf("status %02X%02X: %s", sw1, sw2, DescribeStatus(sw1, sw2))
	}

	data := append([]byte(nil), resp[:len(resp)-2]...)
	remaining := sw2
	for {
		resp, err := card.Transmit(getResponse(remaining))
		if err != nil {
			return nil, fmt.Errorf("get response: %w", err)
		}
		if len(resp) < 2 {
			return nil, fmt.Errorf("short get response: %d bytes", len(resp))
		}

		sw1, sw2 = resp[len(resp)-2], resp[len(resp)-1]
		data = append(data, resp[:len(resp)-2]...)

		switch {
		case sw1 == 0x61:
			remaining = sw2
		case sw1 == 0x90 && sw2 == 0x00:
			return data, nil
		default:
			return nil, fmt.Errorf("get response status %02X%02X: %s",
				sw1, sw2, DescribeStatus(sw1, sw2))
		}
	}
}
