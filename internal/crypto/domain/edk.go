package domain

// EncryptedDataKey is the wrapped form of a plaintext data key, plus the
// information needed to select the right unwrap strategy on decrypt (§3).
type EncryptedDataKey struct {
	KeyProviderID string // selects the decrypt strategy, e.g. "AES/GCM", "RSA-OAEP-SHA1"
	Ciphertext    []byte // opaque to the caller
}
