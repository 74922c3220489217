package keyring

import (
	"context"
	"crypto/aes"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/errors"
)

const (
	providerAESGCM  = "AES/GCM"
	providerAESWrap = "AESWrap"
	providerAESRaw  = "AES"
)

// aesGCMEncryptStrategy wraps a plaintext data key with AES-GCM, the active
// strategy for the AES keyring (§4.2.1).
type aesGCMEncryptStrategy struct {
	wrappingKey []byte
	aeadManager cryptoService.AEADManager
}

func (s *aesGCMEncryptStrategy) ProviderID() string { return providerAESGCM }

func (s *aesGCMEncryptStrategy) Wrap(
	_ context.Context,
	suite cryptoDomain.AlgorithmSuite,
	plaintextDataKey []byte,
	_ cryptoDomain.EncryptionContext,
) (cryptoDomain.EncryptedDataKey, error) {
	cipher, err := s.aeadManager.CreateCipher(s.wrappingKey)
	if err != nil {
		return cryptoDomain.EncryptedDataKey{}, err
	}

	aad := []byte(suite.ID)
	ciphertext, nonce, err := cipher.Encrypt(plaintextDataKey, aad)
	if err != nil {
		return cryptoDomain.EncryptedDataKey{}, err
	}

	return cryptoDomain.EncryptedDataKey{
		KeyProviderID: providerAESGCM,
		Ciphertext:    append(nonce, ciphertext...),
	}, nil
}

// aesGCMDecryptStrategy is the active AES-GCM unwrap counterpart.
type aesGCMDecryptStrategy struct {
	wrappingKey []byte
	aeadManager cryptoService.AEADManager
}

func (s *aesGCMDecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == providerAESGCM
}

func (s *aesGCMDecryptStrategy) Legacy() bool { return false }

func (s *aesGCMDecryptStrategy) Unwrap(
	_ context.Context,
	suite cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	const nonceLen = 12
	if len(edk.Ciphertext) < nonceLen {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}
	nonce := edk.Ciphertext[:nonceLen]
	ciphertext := edk.Ciphertext[nonceLen:]

	cipher, err := s.aeadManager.CreateCipher(s.wrappingKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(ciphertext, nonce, []byte(suite.ID))
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}
	return plaintext, nil
}

// aesWrapDecryptStrategy unwraps a legacy RFC 3394 AES key-wrapped data key.
// Decrypt-only: this keyring never emits "AESWrap" EDKs.
type aesWrapDecryptStrategy struct {
	wrappingKey []byte
}

func (s *aesWrapDecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == providerAESWrap
}

func (s *aesWrapDecryptStrategy) Legacy() bool { return true }

func (s *aesWrapDecryptStrategy) Unwrap(
	_ context.Context,
	_ cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	block, err := aes.NewCipher(s.wrappingKey)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}
	plaintext, err := aesUnwrapRFC3394(block, edk.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}
	return plaintext, nil
}

// aesRawDecryptStrategy unwraps a legacy data key that was "wrapped" with
// bare AES-ECB, a historical provider id this keyring must still accept on
// read. Decrypt-only: never emitted.
type aesRawDecryptStrategy struct {
	wrappingKey []byte
}

func (s *aesRawDecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == providerAESRaw
}

func (s *aesRawDecryptStrategy) Legacy() bool { return true }

func (s *aesRawDecryptStrategy) Unwrap(
	_ context.Context,
	_ cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	if len(edk.Ciphertext)%aes.BlockSize != 0 || len(edk.Ciphertext) == 0 {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	block, err := aes.NewCipher(s.wrappingKey)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}

	plaintext := make([]byte, len(edk.Ciphertext))
	for offset := 0; offset < len(edk.Ciphertext); offset += aes.BlockSize {
		block.Decrypt(plaintext[offset:offset+aes.BlockSize], edk.Ciphertext[offset:offset+aes.BlockSize])
	}
	return plaintext, nil
}

// NewAESKeyring builds the AES keyring ("Janitor", §4.2.1): AES-GCM active
// wrap/unwrap, plus legacy AESWrap (RFC 3394) and raw-ECB unwrap-only strategies.
func NewAESKeyring(wrappingKey []byte, aeadManager cryptoService.AEADManager) *Keyring {
	encrypt := &aesGCMEncryptStrategy{wrappingKey: wrappingKey, aeadManager: aeadManager}
	decryptors := []DecryptStrategy{
		&aesGCMDecryptStrategy{wrappingKey: wrappingKey, aeadManager: aeadManager},
		&aesWrapDecryptStrategy{wrappingKey: wrappingKey},
		&aesRawDecryptStrategy{wrappingKey: wrappingKey},
	}
	return New("aes", encrypt, decryptors)
}
