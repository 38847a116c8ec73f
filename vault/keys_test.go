package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	key, err := DeriveKey("correct horse battery staple", salt)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	// deterministic for the same passphrase and salt
	again, err := DeriveKey("correct horse battery staple", salt)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	// different passphrase or salt changes the key
	other, err := DeriveKey("another passphrase", salt)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	salt2, err := NewSalt()
	require.NoError(t, err)
	rekeyed, err := DeriveKey("correct horse battery staple", salt2)
	require.NoError(t, err)
	assert.NotEqual(t, key, rekeyed)
}

func TestDeriveKeyValidation(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	_, err = DeriveKey("", salt)
	assert.Error(t, err, "empty passphrase must be rejected")

	_, err = DeriveKey("passphrase", []byte("short"))
	assert.Error(t, err, "wrong salt length must be rejected")
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, a, SaltSize)

	b, err := NewSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDerivedKeyDrivesCipher(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("passphrase", salt)
	require.NoError(t, err)

	c, err := NewCipher(key)
	require.NoError(t, err)
	encrypted, err := c.Encrypt([]byte("field value"))
	require.NoError(t, err)
	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, []byte("field value"), decrypted)
}
