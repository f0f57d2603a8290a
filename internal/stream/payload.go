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

package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/decode"
	"github.com/cardbridge-io/cardbridge/internal/fieldcrypt"
	"github.com/cardbridge-io/cardbridge/internal/identity"
)

// Payload mode discriminators subscribers switch on.
const (
	ModeInserted = "readsmartcard"
	ModeRemoved  = "removedsmartcard"
)

// photoField is the payload name of the base64 photograph.
const photoField = "PhotoRaw"

// Shaper turns identity records into outbound payloads: field
// allow-listing, renaming, date presentation, and per-field encryption.
// A field that cannot be encrypted is withheld from the payload and
// audited, never sent in plaintext.
type Shaper struct {
	logger *slog.Logger
	audit  *audit.Logger
	crypto *fieldcrypt.Service

	output config.Output
	encCfg config.Encryption

	enabled map[string]struct{}
	sealed  map[string]struct{}
}

// NewShaper creates a Shaper. The crypto service may be nil when
// encryption is disabled; when encryption is enabled without a service,
// every sealed field is withheld.
func NewShaper(
	logger *slog.Logger,
	outputCfg config.Output,
	encCfg config.Encryption,
	crypto *fieldcrypt.Service,
	auditLog *audit.Logger,
) *Shaper {
	enabled := make(map[string]struct{}, len(outputCfg.EnabledFields))
	for _, name := range outputCfg.EnabledFields {
		enabled[name] = struct{}{}
	}

	sealed := make(map[string]struct{}, len(encCfg.Fields))
	for _, name := range encCfg.Fields {
		sealed[name] = struct{}{}
	}

	if encCfg.Enabled && len(sealed) == 0 {
		logger.Warn(
			"encryption enabled with an empty field list, sealing every payload field",
		)
	}

	if auditLog == nil {
		auditLog = audit.New(logger, false, nil)
	}

	return &Shaper{
		logger:  logger,
		audit:   auditLog,
		crypto:  crypto,
		output:  outputCfg,
		encCfg:  encCfg,
		enabled: enabled,
		sealed:  sealed,
	}
}

// payloadField pairs a field's original name with its rendered value.
type payloadField struct {
	name  string
	value string
}

// canonicalFields lists the payload fields under their original names in
// card order. Dates render as YYYY/MM/DD.
func canonicalFields(rec *identity.Record) []payloadField {
	return []payloadField{
		{"Citizenid", rec.CitizenID},
		{"Th_Prefix", rec.ThaiPrefix},
		{"Th_Firstname", rec.ThaiFirstName},
		{"Th_Middlename", rec.ThaiMiddleName},
		{"Th_Lastname", rec.ThaiLastName},
		{"full_name_en", rec.EnFullName},
		{"Birthday", decode.SlashDate(rec.BirthDate)},
		{"Sex", rec.Sex},
		{"card_issuer", rec.Issuer},
		{"issue_date", decode.SlashDate(rec.IssueDate)},
		{"expire_date", decode.SlashDate(rec.ExpireDate)},
		{"Address", rec.Address},
		{"addrHouseNo", rec.HouseNo},
		{"addrVillageNo", rec.Village},
		{"addrTambol", rec.Tambol},
		{"addrAmphur", rec.Amphur},
	}
}

// Inserted builds the broadcast payload for a read card.
func (s *Shaper) Inserted(
	rec *identity.Record,
) (string, error) {
	fields := canonicalFields(rec)
	if s.output.IncludePhoto {
		fields = append(fields, payloadField{photoField, rec.Photo})
	}

	payload := map[string]string{"mode": ModeInserted}
	for _, f := range fields {
		if !s.fieldEnabled(f.name) {
			continue
		}

		name := s.outputName(f.name)
		value := f.value
		if s.shouldEncrypt(name) {
			sealedValue, err := s.seal(value)
			if err != nil {
				s.logger.Error(
					"encrypt payload field",
					slog.String("field", name),
					slog.String("error", err.Error()),
				)
				s.audit.EncryptFailure(name, err.Error())

				continue
			}
			value = sealedValue
		}

		payload[name] = value
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	return string(out), nil
}

// Removed builds the broadcast payload for a card leaving the reader.
func (s *Shaper) Removed() string {
	return fmt.Sprintf("{%q:%q}", "mode", ModeRemoved)
}

// fieldEnabled reports whether the field, by its original name, is on
// the allow list. An empty list enables every field.
func (s *Shaper) fieldEnabled(
	name string,
) bool {
	if len(s.enabled) == 0 {
		return true
	}
	_, ok := s.enabled[name]

	return ok
}

// outputName returns the configured rename for a field, or the original
// name when no mapping exists.
func (s *Shaper) outputName(
	name string,
) string {
	if mapped, ok := s.output.FieldMapping[name]; ok {
		return mapped
	}

	return name
}

// shouldEncrypt reports whether the field, by its output name, must be
// sealed. With encryption enabled and no configured field list, every
// field is sealed.
func (s *Shaper) shouldEncrypt(
	outputName string,
) bool {
	if !s.encCfg.Enabled {
		return false
	}
	if len(s.sealed) == 0 {
		return true
	}
	_, ok := s.sealed[outputName]

	return ok
}

func (s *Shaper) seal(
	plaintext string,
) (string, error) {
	if s.crypto == nil {
		return "", errors.New("encryption service unavailable")
	}

	return s.crypto.Encrypt(plaintext)
}
