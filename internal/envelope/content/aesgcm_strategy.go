// Package content implements the content-encryption layer of envelope
// encryption (§4.4): turning a plaintext data key into ciphertext and back,
// independent of how the data key itself was wrapped.
package content

import (
	"context"
	"io"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/errors"
)

// Strategy encrypts or decrypts a full object body under one suite. The
// active strategy set contains exactly one encrypt-capable member
// (AES-256-GCM); legacy strategies are decrypt-only.
type Strategy interface {
	SuiteID() cryptoDomain.SuiteID
	Legacy() bool

	// Encrypt seals plaintext under dataKey, returning ciphertext and the IV
	// used. Only the active strategy implements this; legacy strategies
	// return ErrLegacyRefused.
	Encrypt(ctx context.Context, dataKey []byte, plaintext io.Reader) (ciphertext []byte, iv []byte, err error)

	// Decrypt authenticates and opens ciphertext produced by Encrypt (or, for
	// legacy strategies, by the historical external algorithm it decrypts).
	Decrypt(ctx context.Context, dataKey []byte, iv []byte, tagLength int, ciphertext io.Reader) ([]byte, error)
}

// AESGCMStrategy is the active content strategy (§4.4): AES-256-GCM, 12-byte
// IV from a cryptographic RNG, 128-bit tag. Reuses the same AEADManager the
// AES keyring's key-wrap strategy uses. The whole ciphertext is buffered
// before decryption completes, so a failed tag check never yields partial
// plaintext — cipher.AEAD.Open already withholds output until the tag
// verifies, and buffering the reader keeps that guarantee explicit here too.
type AESGCMStrategy struct {
	aeadManager cryptoService.AEADManager
}

// NewAESGCMStrategy builds the active content strategy.
func NewAESGCMStrategy(aeadManager cryptoService.AEADManager) *AESGCMStrategy {
	return &AESGCMStrategy{aeadManager: aeadManager}
}

func (s *AESGCMStrategy) SuiteID() cryptoDomain.SuiteID { return cryptoDomain.SuiteAESGCM256 }

func (s *AESGCMStrategy) Legacy() bool { return false }

// Encrypt seals plaintext under dataKey. The IV is generated internally by
// the AEAD cipher from a cryptographic RNG and returned for the metadata
// strategy to store (§4.4: IVs MUST be unique for the life of a data key).
// No encryption context is bound as AAD at this layer (§9 decision: context
// is stored-only at the content layer; suite binding happens at key-wrap).
func (s *AESGCMStrategy) Encrypt(
	_ context.Context,
	dataKey []byte,
	plaintext io.Reader,
) ([]byte, []byte, error) {
	if len(dataKey) != 32 {
		return nil, nil, cryptoDomain.ErrInvalidKeySize
	}

	cipher, err := s.aeadManager.CreateCipher(dataKey)
	if err != nil {
		return nil, nil, err
	}

	plaintextBytes, err := io.ReadAll(plaintext)
	if err != nil {
		return nil, nil, errors.Wrap(cryptoDomain.ErrIO, err.Error())
	}

	ciphertext, iv, err := cipher.Encrypt(plaintextBytes, nil)
	if err != nil {
		return nil, nil, errors.Wrap(cryptoDomain.ErrWrapFailure, err.Error())
	}

	return ciphertext, iv, nil
}

// Decrypt authenticates and opens ciphertext. Ciphertext is buffered in full
// before any plaintext is released, so a failed tag check never leaks a
// partial plaintext prefix to the caller (§4.4, §7 AuthenticationFailure).
func (s *AESGCMStrategy) Decrypt(
	_ context.Context,
	dataKey []byte,
	iv []byte,
	tagLength int,
	ciphertext io.Reader,
) ([]byte, error) {
	if len(dataKey) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if !cryptoDomain.ValidTagLengthsBits[tagLength*8] {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	cipher, err := s.aeadManager.CreateCipher(dataKey)
	if err != nil {
		return nil, err
	}

	ciphertextBytes, err := io.ReadAll(ciphertext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrIO, err.Error())
	}

	plaintext, err := cipher.Decrypt(ciphertextBytes, iv, nil)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailure
	}
	return plaintext, nil
}
