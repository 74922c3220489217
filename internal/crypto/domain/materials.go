package domain

// EncryptionMaterials is assembled by a MaterialsManager and populated by a
// Keyring's OnEncrypt. The plaintext data key SHOULD be zeroized by the
// caller once the content strategy has consumed it (§3).
type EncryptionMaterials struct {
	Suite             AlgorithmSuite
	EncryptionContext EncryptionContext
	PlaintextDataKey  []byte // nil until the keyring populates it
	EncryptedDataKeys []EncryptedDataKey
}

// Zero overwrites the plaintext data key in place. Safe to call multiple times.
func (m *EncryptionMaterials) Zero() {
	if m == nil {
		return
	}
	Zero(m.PlaintextDataKey)
}

// DecryptionMaterials is assembled by a MaterialsManager from a parsed
// ObjectEnvelope and populated by a Keyring's OnDecrypt. Suite comes from the
// stored envelope, never from the caller (§4.3).
type DecryptionMaterials struct {
	Suite             AlgorithmSuite
	EncryptionContext EncryptionContext
	CandidateEDKs     []EncryptedDataKey
	PlaintextDataKey  []byte // nil until the keyring populates it
}

// Zero overwrites the plaintext data key in place. Safe to call multiple times.
func (m *DecryptionMaterials) Zero() {
	if m == nil {
		return
	}
	Zero(m.PlaintextDataKey)
}
