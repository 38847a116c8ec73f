// Package vault supplies the field-level encryption primitives consumed by
// the finbase field value store: AES-256-GCM encryption of individual field
// values and argon2id derivation of the data key from a passphrase.
//
// The framework depends only on the plaintext/ciphertext contract; key
// management beyond derivation is out of scope.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// NonceSize is the AES-GCM nonce size prefixed to every ciphertext.
const NonceSize = 12

// KeySize is the required data-key length in bytes (AES-256).
const KeySize = 32

// Cipher encrypts and decrypts field values with a fixed data key.
// The ciphertext layout is nonce (12 bytes) + sealed data + auth tag.
type Cipher struct {
	key []byte
}

// NewCipher returns a Cipher for the given 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Cipher{key: k}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	aesGCM, err := c.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aesGCM.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, len(nonce)+len(sealed))
	result = append(result, nonce...)
	result = append(result, sealed...)
	return result, nil
}

// Decrypt opens a ciphertext produced by Encrypt, verifying the auth tag.
func (c *Cipher) Decrypt(encrypted []byte) ([]byte, error) {
	if len(encrypted) < NonceSize {
		return nil, fmt.Errorf("encrypted data too short")
	}
	aesGCM, err := c.gcm()
	if err != nil {
		return nil, err
	}
	nonce := encrypted[:NonceSize]
	sealed := encrypted[NonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: authentication failed or corrupted data: %w", err)
	}
	return plaintext, nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
