package content

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

func encryptCBCForTest(t *testing.T, key, iv, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	padded := padPKCS5ForTest(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext
}

func padPKCS5ForTest(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func TestLegacyCBCStrategy_Decrypt(t *testing.T) {
	strategy := NewLegacyCBCStrategy()
	key := dataKey32(t)
	iv := make([]byte, aes.BlockSize)
	_, err := rand.Read(iv)
	require.NoError(t, err)

	plaintext := []byte("legacy object body")
	ciphertext := encryptCBCForTest(t, key, iv, plaintext)

	decrypted, err := strategy.Decrypt(context.Background(), key, iv, 0, bytes.NewReader(ciphertext))
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestLegacyCBCStrategy_Encrypt_Refused(t *testing.T) {
	strategy := NewLegacyCBCStrategy()
	_, _, err := strategy.Encrypt(context.Background(), dataKey32(t), bytes.NewReader(nil))
	assert.ErrorIs(t, err, cryptoDomain.ErrLegacyRefused)
}

func TestLegacyCBCStrategy_BadPadding(t *testing.T) {
	strategy := NewLegacyCBCStrategy()
	key := dataKey32(t)
	iv := make([]byte, aes.BlockSize)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, make([]byte, aes.BlockSize))

	_, err = strategy.Decrypt(context.Background(), key, iv, 0, bytes.NewReader(ciphertext))
	assert.ErrorIs(t, err, cryptoDomain.ErrTamperedEnvelope)
}

func TestLegacyCBCStrategy_WrongIVLength(t *testing.T) {
	strategy := NewLegacyCBCStrategy()
	_, err := strategy.Decrypt(context.Background(), dataKey32(t), []byte{1, 2, 3}, 0, bytes.NewReader(nil))
	assert.ErrorIs(t, err, cryptoDomain.ErrTamperedEnvelope)
}
