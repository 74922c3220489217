// Package domain defines core cryptographic domain models for envelope encryption.
// Implements Keyring -> EncryptedDataKey -> Content hierarchy with AES-256-GCM
// as the only active algorithm suite and a closed set of legacy read-only suites.
package domain

import (
	"github.com/allisson/secrets/internal/errors"
)

// Envelope encryption error kinds (§7). Each wraps a generic sentinel from
// internal/errors so callers can classify with errors.Is, while the message
// carries the specific cause.
var (
	// ErrConfiguration indicates a misconfiguration: wrong wrapping-key
	// algorithm, unknown suite id, or an attempt to encrypt with a
	// legacy-only keyring.
	ErrConfiguration = errors.Wrap(errors.ErrInvalidInput, "configuration error")

	// ErrUnsupportedAlgorithm indicates the requested algorithm suite or
	// cipher algorithm is not in the closed registry.
	ErrUnsupportedAlgorithm = errors.Wrap(ErrConfiguration, "unsupported algorithm")

	// ErrInvalidKeySize indicates a cryptographic key is not the required length.
	ErrInvalidKeySize = errors.Wrap(ErrConfiguration, "invalid key size")

	// ErrWrapFailure indicates the underlying crypto primitive refused to
	// wrap a data key (invalid key length, bad padding parameters).
	ErrWrapFailure = errors.Wrap(errors.ErrInvalidInput, "key wrap failure")

	// ErrUnwrapFailure indicates no EncryptedDataKey was decryptable by any
	// registered strategy. Per-candidate causes are not exposed to avoid a
	// timing/information oracle (§7).
	ErrUnwrapFailure = errors.Wrap(errors.ErrInvalidInput, "key unwrap failure")

	// ErrTamperedEnvelope indicates a structural check failed: bad
	// pseudo-data-key length byte, cipher-name mismatch, or tag length
	// outside the valid set.
	ErrTamperedEnvelope = errors.Wrap(errors.ErrInvalidInput, "tampered envelope")

	// ErrAuthenticationFailure indicates GCM tag verification failed on content.
	ErrAuthenticationFailure = errors.Wrap(errors.ErrInvalidInput, "authentication failure")

	// ErrLegacyRefused indicates the caller did not opt into legacy
	// algorithms but the stored metadata indicates one.
	ErrLegacyRefused = errors.Wrap(errors.ErrForbidden, "legacy algorithm refused")

	// ErrIO indicates the storage SDK reported a transport error, surfaced verbatim.
	ErrIO = errors.Wrap(errors.New("io error"), "storage io error")

	// ErrReservedContextKey indicates the caller supplied an encryption
	// context entry using the key reserved for internal suite binding.
	ErrReservedContextKey = errors.Wrap(ErrConfiguration, "reserved encryption context key")

	// ErrInvalidMatdesc indicates x-amz-matdesc is not valid JSON.
	ErrInvalidMatdesc = errors.Wrap(errors.ErrInvalidInput, "invalid encryption context json")

	// ErrMissingEnvelope indicates the object has no client-side encryption metadata.
	ErrMissingEnvelope = errors.Wrap(errors.ErrNotFound, "object is not client-encrypted")

	// ErrRangeNotSupported indicates a ranged GET was requested against a GCM-encrypted object.
	ErrRangeNotSupported = errors.Wrap(ErrConfiguration, "byte-range decryption not supported for this suite")
)

// Wrapping-key and KMS loading errors, reused by WrappingKeyChain and the KMS keyring.
var (
	// ErrWrappingKeysNotSet indicates the WRAPPING_KEYS environment variable is not configured.
	ErrWrappingKeysNotSet = errors.Wrap(errors.ErrInvalidInput, "WRAPPING_KEYS not set")

	// ErrActiveWrappingKeyIDNotSet indicates ACTIVE_WRAPPING_KEY_ID is not configured.
	ErrActiveWrappingKeyIDNotSet = errors.Wrap(errors.ErrInvalidInput, "ACTIVE_WRAPPING_KEY_ID not set")

	// ErrInvalidWrappingKeysFormat indicates the WRAPPING_KEYS format is invalid.
	ErrInvalidWrappingKeysFormat = errors.Wrap(errors.ErrInvalidInput, "invalid WRAPPING_KEYS format")

	// ErrInvalidWrappingKeyBase64 indicates a wrapping key is not valid base64.
	ErrInvalidWrappingKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid wrapping key base64")

	// ErrActiveWrappingKeyNotFound indicates the active wrapping key ID was not found in the chain.
	ErrActiveWrappingKeyNotFound = errors.Wrap(errors.ErrInvalidInput, "active wrapping key not found")

	// ErrKMSProviderNotSet indicates KMS_PROVIDER is required but not configured.
	ErrKMSProviderNotSet = errors.Wrap(
		errors.ErrInvalidInput,
		"KMS_PROVIDER is required but not configured (use 'localsecrets' for local development)",
	)

	// ErrKMSKeyURINotSet indicates KMS_KEY_URI is required but not configured.
	ErrKMSKeyURINotSet = errors.Wrap(errors.ErrInvalidInput, "KMS_KEY_URI is required but not configured")

	// ErrKMSDecryptionFailed indicates KMS decryption failed.
	ErrKMSDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "KMS decryption failed")

	// ErrKMSEncryptionFailed indicates KMS encryption failed.
	ErrKMSEncryptionFailed = errors.Wrap(errors.ErrInvalidInput, "KMS encryption failed")

	// ErrKMSOpenKeeperFailed indicates opening the KMS keeper failed.
	ErrKMSOpenKeeperFailed = errors.Wrap(errors.ErrInvalidInput, "failed to open KMS keeper")
)
