// Package cypher implements core.Cypher with AES-256-GCM. Keys are either
// random or derived from a password with scrypt.
package cypher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/deltegui/bankconsole/core"
)

const keySize = 32

// Scrypt parameters for password derived keys.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var ErrShortCiphertext = errors.New("cypher: ciphertext too short")

// salt is fixed so every console instance sharing a secret derives the same
// key and can read the others' cookies.
var salt = []byte("bankconsole/cookie")

type AESCypher struct {
	aead cipher.AEAD
}

var _ core.Cypher = (*AESCypher)(nil)

// New creates a cypher with a random key. Cookies do not survive restarts.
func New() (*AESCypher, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("cannot generate cypher key: %w", err)
	}
	return fromKey(key)
}

func NewWithPassword(password []byte) (*AESCypher, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("cannot derive cypher key: %w", err)
	}
	return fromKey(key)
}

func NewWithPasswordAsString(password string) (*AESCypher, error) {
	return NewWithPassword([]byte(password))
}

func fromKey(key []byte) (*AESCypher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cannot create aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cannot create gcm: %w", err)
	}
	return &AESCypher{aead: aead}, nil
}

func (c *AESCypher) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cannot read nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, data, nil), nil
}

func (c *AESCypher) Decrypt(data []byte) ([]byte, error) {
	size := c.aead.NonceSize()
	if len(data) < size {
		return nil, ErrShortCiphertext
	}
	nonce, ciphertext := data[:size], data[size:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot decrypt: %w", err)
	}
	return plain, nil
}
