package service

import (
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

// AEADManagerService implements the AEADManager interface for creating AEAD cipher instances.
//
// AES-256-GCM is the only algorithm in the closed suite registry (§4.1), so
// this factory has a single branch. It still exists as a seam: strategies
// depend on the AEADManager interface, not on AESGCMCipher directly, so
// tests can substitute a fake.
//
// Usage example:
//
//	manager := NewAEADManager()
//	key := make([]byte, 32) // 256-bit key
//	rand.Read(key)
//
//	cipher, err := manager.CreateCipher(key)
//	if err != nil {
//	    // handle error
//	}
//
//	ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService instance.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits), generated with a
// cryptographically secure random number generator.
//
// Returns:
//   - An AEAD cipher instance ready for encryption/decryption
//   - ErrInvalidKeySize if the key is not 32 bytes
func (am *AEADManagerService) CreateCipher(key []byte) (AEAD, error) {
	if len(key) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return NewAESGCM(key)
}
