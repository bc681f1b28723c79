// Package encryption seals sensitive free-text fields at rest with fernet tokens.
package encryption

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrDecrypt is returned when a stored value is not a valid token for the configured key.
var ErrDecrypt = errors.New("failed to decrypt value")

// Cipher encrypts and decrypts strings with a fernet key.
// The empty string is passed through unchanged in both directions.
type Cipher struct {
	keys []*fernet.Key
}

// New creates a Cipher from a base64-encoded 32-byte fernet key.
func New(encodedKey string) (*Cipher, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	return &Cipher{keys: []*fernet.Key{key}}, nil
}

// GenerateKey returns a new random key in the encoding New accepts.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return key.Encode(), nil
}

// Encrypt returns the fernet token for plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// Decrypt returns the plaintext sealed in token. Tokens never expire.
func (c *Cipher) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, c.keys)
	if msg == nil {
		return "", ErrDecrypt
	}
	return string(msg), nil
}
