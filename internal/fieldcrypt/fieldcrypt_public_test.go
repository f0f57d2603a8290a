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

package fieldcrypt_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/cardbridge-io/cardbridge/internal/fieldcrypt"
)

type FieldcryptPublicTestSuite struct {
	suite.Suite

	service *fieldcrypt.Service
}

func TestFieldcryptPublicTestSuite(t *testing.T) {
	suite.Run(t, new(FieldcryptPublicTestSuite))
}

func (suite *FieldcryptPublicTestSuite) SetupTest() {
	key := make([]byte, fieldcrypt.KeySize)
	for i := range key {
		key[i] = byte(i)
	}

	service, err := fieldcrypt.New(key)
	assert.NoError(suite.T(), err)

	suite.service = service
}

func (suite *FieldcryptPublicTestSuite) TestNew() {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{name: "when key is 32 bytes", keyLen: 32, wantErr: false},
		{name: "when key is 16 bytes", keyLen: 16, wantErr: true},
		{name: "when key is empty", keyLen: 0, wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := fieldcrypt.New(make([]byte, tc.keyLen))

			if tc.wantErr {
				assert.Error(suite.T(), err)
			} else {
				assert.NoError(suite.T(), err)
			}
		})
	}
}

func (suite *FieldcryptPublicTestSuite) TestNewFromBase64() {
	tests := []struct {
		name    string
		encoded string
		wantErr bool
	}{
		{
			name:    "when key decodes to 32 bytes",
			encoded: base64.StdEncoding.EncodeToString(make([]byte, 32)),
			wantErr: false,
		},
		{
			name:    "when key decodes short",
			encoded: base64.StdEncoding.EncodeToString(make([]byte, 8)),
			wantErr: true,
		},
		{
			name:    "when key is not base64",
			encoded: "not-base64!!!",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := fieldcrypt.NewFromBase64(tc.encoded)

			if tc.wantErr {
				assert.Error(suite.T(), err)
			} else {
				assert.NoError(suite.T(), err)
			}
		})
	}
}

func (suite *FieldcryptPublicTestSuite) TestNewFromEnv() {
	suite.Run("when variable is set", func() {
		key, err := fieldcrypt.GenerateKey()
		assert.NoError(suite.T(), err)
		suite.T().Setenv(fieldcrypt.EnvKey, key)

		_, err = fieldcrypt.NewFromEnv()

		assert.NoError(suite.T(), err)
	})

	suite.Run("when variable is missing", func() {
		suite.T().Setenv(fieldcrypt.EnvKey, "")

		_, err := fieldcrypt.NewFromEnv()

		assert.Error(suite.T(), err)
	})
}

func (suite *FieldcryptPublicTestSuite) TestRoundTrip() {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "when ascii", plaintext: "1101700203344"},
		{name: "when thai", plaintext: "นายทดสอบ ระบบ"},
		{name: "when empty", plaintext: ""},
		{name: "when long", plaintext: string(make([]byte, 4096))},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			encoded, err := suite.service.Encrypt(tc.plaintext)
			assert.NoError(suite.T(), err)
			assert.NotEqual(suite.T(), tc.plaintext, encoded)

			decrypted, err := suite.service.Decrypt(encoded)

			assert.NoError(suite.T(), err)
			assert.Equal(suite.T(), tc.plaintext, decrypted)
		})
	}
}

func (suite *FieldcryptPublicTestSuite) TestNoncesAreUnique() {
	first, err := suite.service.Encrypt("same input")
	assert.NoError(suite.T(), err)

	second, err := suite.service.Encrypt("same input")
	assert.NoError(suite.T(), err)

	assert.NotEqual(suite.T(), first, second)
}

func (suite *FieldcryptPublicTestSuite) TestDecryptRejectsTampering() {
	encoded, err := suite.service.Encrypt("sensitive value")
	assert.NoError(suite.T(), err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(suite.T(), err)

	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = suite.service.Decrypt(tampered)

	assert.Error(suite.T(), err)
}

func (suite *FieldcryptPublicTestSuite) TestDecryptRejectsWrongKey() {
	encoded, err := suite.service.Encrypt("sensitive value")
	assert.NoError(suite.T(), err)

	otherKey := make([]byte, fieldcrypt.KeySize)
	for i := range otherKey {
		otherKey[i] = byte(255 - i)
	}

	other, err := fieldcrypt.New(otherKey)
	assert.NoError(suite.T(), err)

	_, err = other.Decrypt(encoded)

	assert.Error(suite.T(), err)
}

func (suite *FieldcryptPublicTestSuite) TestDecryptRejectsGarbage() {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "when not base64", encoded: "%%%"},
		{
			name:    "when shorter than a nonce",
			encoded: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.service.Decrypt(tc.encoded)

			assert.Error(suite.T(), err)
		})
	}
}

func (suite *FieldcryptPublicTestSuite) TestGenerateKey() {
	encoded, err := fieldcrypt.GenerateKey()
	assert.NoError(suite.T(), err)

	key, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), key, fieldcrypt.KeySize)

	service, err := fieldcrypt.New(key)
	assert.NoError(suite.T(), err)

	out, err := service.Encrypt("probe")
	assert.NoError(suite.T(), err)

	decrypted, err := service.Decrypt(out)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "probe", decrypted)
}
