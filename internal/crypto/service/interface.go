// Package service provides cryptographic service interfaces and implementations.
//
// This package implements the service layer for envelope encryption, providing
// concrete implementations of authenticated encryption algorithms backing the
// keyring and content strategies in internal/envelope.
//
// # Services Overview
//
// AEADManagerService: Factory for creating AEAD cipher instances. AES-256-GCM
// is the only algorithm in the closed suite registry (§4.1); it is both the
// active content cipher and the AEAD primitive behind the active AES-GCM key
// wrap strategy.
//
// AESGCMCipher: Implements AEAD using AES-256-GCM.
//
// KMSService: Opens a gocloud.dev/secrets.Keeper for the configured KMS
// provider, used by the KMS keyring strategy.
//
// # Thread Safety
//
// All service implementations are stateless and thread-safe. Multiple goroutines
// can safely use the same service instances for concurrent operations.
package service

import (
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// AEAD encryption provides both confidentiality and authenticity guarantees,
// protecting against unauthorized access and tampering. Implementations ensure
// that any modification to the ciphertext or AAD will be detected during decryption.
//
// Security requirements:
//   - Nonces must be unique for each encryption with the same key
//   - Keys must be 256 bits
//   - The same AAD used during encryption must be provided during decryption
//
// Implementations: AESGCMCipher
type AEAD interface {
	// Encrypt encrypts plaintext with optional additional authenticated data (AAD).
	//
	// A unique nonce is automatically generated for each encryption operation.
	// The nonce must be stored alongside the ciphertext for later decryption.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	//
	// This method verifies the authentication tag before returning plaintext,
	// ensuring the ciphertext hasn't been tampered with. If authentication
	// fails, no plaintext is returned.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
//
// This interface acts as a factory so callers don't depend on the concrete
// cipher type. AES-256-GCM is the only supported algorithm.
//
// Implementation: AEADManagerService
type AEADManager interface {
	// CreateCipher creates an AES-256-GCM cipher instance.
	//
	// The key must be exactly 32 bytes (256 bits).
	//
	// Returns:
	//   - An AEAD cipher instance ready for encryption/decryption
	//   - ErrInvalidKeySize if the key is not 32 bytes
	CreateCipher(key []byte) (AEAD, error)
}

// KMSKeeper is the subset of gocloud.dev/secrets.Keeper the KMS keyring
// strategy depends on, aliased here so service callers don't import the
// domain package directly for it.
type KMSKeeper = cryptoDomain.KMSKeeper
