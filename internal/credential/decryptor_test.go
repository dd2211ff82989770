package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaChaRoundTrip(t *testing.T) {
	c, err := NewChaCha("correct horse battery staple")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("api-key-123")
	require.NoError(t, err)
	assert.NotEqual(t, "api-key-123", ciphertext)

	plaintext, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "api-key-123", plaintext)
}

func TestChaChaRejectsEmptyPassphrase(t *testing.T) {
	_, err := NewChaCha("")
	require.Error(t, err)
}

func TestChaChaRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewChaCha("passphrase")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("secret")
	require.NoError(t, err)

	// Flip one character of the base64 payload.
	tampered := []byte(ciphertext)
	if tampered[len(tampered)-5] == 'A' {
		tampered[len(tampered)-5] = 'B'
	} else {
		tampered[len(tampered)-5] = 'A'
	}

	_, err = c.Decrypt(string(tampered))
	require.Error(t, err)
}

func TestChaChaRejectsWrongKey(t *testing.T) {
	enc, err := NewChaCha("key-one")
	require.NoError(t, err)
	dec, err := NewChaCha("key-two")
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("secret")
	require.NoError(t, err)

	_, err = dec.Decrypt(ciphertext)
	require.Error(t, err)
}

func TestChaChaRejectsGarbage(t *testing.T) {
	c, err := NewChaCha("passphrase")
	require.NoError(t, err)

	_, err = c.Decrypt("not base64 !!!")
	require.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	require.Error(t, err)
}
