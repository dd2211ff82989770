// Package credential resolves encrypted exchange API credentials.
package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Decryptor turns a stored ciphertext back into a plaintext credential.
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// keyInfo binds derived keys to this usage so the same passphrase cannot be
// reused for another purpose.
var keyInfo = []byte("trading-bot-engine/credential")

// ChaCha seals and opens credentials with ChaCha20-Poly1305. Ciphertexts are
// base64-encoded nonce||sealed blobs.
type ChaCha struct {
	aead cipher.AEAD
}

// NewChaCha builds a ChaCha codec from a passphrase of any length. The
// symmetric key is derived with HKDF-SHA512.
func NewChaCha(passphrase string) (*ChaCha, error) {
	if passphrase == "" {
		return nil, errors.New("credential passphrase is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha512.New, []byte(passphrase), nil, keyInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive credential key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return &ChaCha{aead: aead}, nil
}

// Encrypt seals a plaintext credential. Used by provisioning tooling and
// tests; the engine itself only decrypts.
func (c *ChaCha) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (c *ChaCha) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errors.New("ciphertext is too short")
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	return string(plaintext), nil
}
