package content

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"io"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

// LegacyCTRStrategy decrypts objects written under AES/CTR (§4.1).
// Unauthenticated: a bit-flip in the ciphertext flips the corresponding
// plaintext bit silently, with no tag to detect it.
type LegacyCTRStrategy struct{}

// NewLegacyCTRStrategy builds the legacy CTR decrypt-only strategy.
func NewLegacyCTRStrategy() *LegacyCTRStrategy {
	return &LegacyCTRStrategy{}
}

func (s *LegacyCTRStrategy) SuiteID() cryptoDomain.SuiteID { return cryptoDomain.SuiteAESCTR }

func (s *LegacyCTRStrategy) Legacy() bool { return true }

// Encrypt is refused: the encrypt side must never emit a legacy suite (§4.1).
func (s *LegacyCTRStrategy) Encrypt(context.Context, []byte, io.Reader) ([]byte, []byte, error) {
	return nil, nil, cryptoDomain.ErrLegacyRefused
}

func (s *LegacyCTRStrategy) Decrypt(
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

	plaintext := make([]byte, len(ciphertextBytes))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(plaintext, ciphertextBytes)

	return plaintext, nil
}
