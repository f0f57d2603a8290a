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

// Package fieldcrypt provides AES-256-GCM authenticated encryption for
// sensitive record fields before they leave the process.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12

	// EnvKey is the environment variable holding the base64 encoded key.
	EnvKey = "ENCRYPTION_KEY"
)

// Service encrypts and decrypts individual field values. The wire form
// is base64(nonce || ciphertext || tag) with a fresh random nonce per
// message.
type Service struct {
	aead cipher.AEAD
}

// New creates a Service from a raw 32 byte key.
func New(
	key []byte,
) (*Service, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf(
			"invalid key size: expected %d bytes, got %d",
			KeySize,
			len(key),
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Service{aead: aead}, nil
}

// NewFromBase64 creates a Service from a base64 encoded key.
func NewFromBase64(
	encoded string,
) (*Service, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}

	return New(key)
}

// NewFromEnv creates a Service from the ENCRYPTION_KEY environment
// variable.
func NewFromEnv() (*Service, error) {
	encoded := os.Getenv(EnvKey)
	if encoded == "" {
		return nil, fmt.Errorf("%s environment variable not set", EnvKey)
	}

	return NewFromBase64(encoded)
}

// Encrypt seals a plaintext value and returns the base64 wire form.
func (s *Service) Encrypt(
	plaintext string,
) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a base64 wire form value. It fails if the ciphertext
// was tampered with or sealed under a different key.
func (s *Service) Decrypt(
	encoded string,
) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	if len(combined) < NonceSize {
		return "", errors.New("encrypted data too short")
	}

	plaintext, err := s.aead.Open(nil, combined[:NonceSize], combined[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plaintext), nil
}

// GenerateKey returns a new random base64 encoded AES-256 key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(key), nil
}
