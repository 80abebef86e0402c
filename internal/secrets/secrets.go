// Package secrets encrypts OAuth tokens before they are written to the
// database, so a leaked database file does not leak account access.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const nonceLength = 12 // AES-GCM recommended nonce length

// Cipher encrypts and decrypts short secrets with AES-256-GCM. The key is
// derived from a user-supplied passphrase with HKDF-SHA256, so the same
// passphrase always opens the same database.
type Cipher struct {
	key []byte
}

// NewCipher derives an encryption key from the given passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase is required")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("ledgerline token encryption"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return &Cipher{key: key}, nil
}

// Encrypt seals plain text and returns a base64 payload of nonce || ciphertext.
func (c *Cipher) Encrypt(plain string) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a payload produced by Encrypt.
func (c *Cipher) Decrypt(payload string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode payload: %w", err)
	}
	if len(data) < nonceLength {
		return "", fmt.Errorf("payload too short")
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, data[:nonceLength], data[nonceLength:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return string(plain), nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
