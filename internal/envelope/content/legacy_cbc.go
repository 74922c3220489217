package content

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"io"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

// LegacyCBCStrategy decrypts objects written under AES/CBC-PKCS5 (§4.1).
// Unauthenticated: decryption succeeds as long as the padding is well-formed,
// regardless of whether the ciphertext was tampered with. Callers are
// expected to surface isLegacy so this weaker guarantee is visible.
type LegacyCBCStrategy struct{}

// NewLegacyCBCStrategy builds the legacy CBC/PKCS5 decrypt-only strategy.
func NewLegacyCBCStrategy() *LegacyCBCStrategy {
	return &LegacyCBCStrategy{}
}

func (s *LegacyCBCStrategy) SuiteID() cryptoDomain.SuiteID { return cryptoDomain.SuiteAESCBCPKCS5 }

func (s *LegacyCBCStrategy) Legacy() bool { return true }

// Encrypt is refused: the encrypt side must never emit a legacy suite (§4.1).
func (s *LegacyCBCStrategy) Encrypt(context.Context, []byte, io.Reader) ([]byte, []byte, error) {
	return nil, nil, cryptoDomain.ErrLegacyRefused
}

func (s *LegacyCBCStrategy) Decrypt(
	_ context.Context,
	dataKey []byte,
	iv []byte,
	_ int,
	ciphertext io.Reader,
) ([]byte, error) {
	if len(dataKey) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if len(iv) != aes.BlockSize {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}

	ciphertextBytes, err := io.ReadAll(ciphertext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrIO, err.Error())
	}
	if len(ciphertextBytes) == 0 || len(ciphertextBytes)%aes.BlockSize != 0 {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	plaintext := make([]byte, len(ciphertextBytes))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertextBytes)

	return unpadPKCS5(plaintext)
}

// unpadPKCS5 strips PKCS#5 padding, validating every padding byte so a
// corrupted ciphertext is surfaced as TamperedEnvelope rather than silently
// truncated to the wrong length.
func unpadPKCS5(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, cryptoDomain.ErrTamperedEnvelope
		}
	}
	return data[:len(data)-padLen], nil
}
