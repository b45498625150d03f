package cypher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole/cypher"
)

func TestEncryptDecrypt(t *testing.T) {
	cy, err := cypher.New()
	require.NoError(t, err)
	encrypted, err := cy.Encrypt([]byte("session-id"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("session-id"), encrypted)

	plain, err := cy.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "session-id", string(plain))
}

func TestPasswordKeysAreShared(t *testing.T) {
	a, err := cypher.NewWithPasswordAsString("s3cret")
	require.NoError(t, err)
	b, err := cypher.NewWithPasswordAsString("s3cret")
	require.NoError(t, err)
	other, err := cypher.NewWithPasswordAsString("other")
	require.NoError(t, err)

	cookie, err := cypher.EncodeCookie(a, "en")
	require.NoError(t, err)
	value, err := cypher.DecodeCookie(b, cookie)
	require.NoError(t, err)
	assert.Equal(t, "en", string(value))

	_, err = cypher.DecodeCookie(other, cookie)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cy, err := cypher.New()
	require.NoError(t, err)
	_, err = cypher.DecodeCookie(cy, "%%%")
	assert.Error(t, err)
	_, err = cy.Decrypt([]byte{1, 2})
	assert.ErrorIs(t, err, cypher.ErrShortCiphertext)
}
