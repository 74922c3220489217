// Package keyring implements the key-wrapping layer of envelope encryption
// (§4.2): generating and wrapping a plaintext data key on encrypt, and
// unwrapping the first decryptable EncryptedDataKey on decrypt.
package keyring

import (
	"context"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

// EncryptStrategy wraps a freshly generated plaintext data key, producing one
// EncryptedDataKey. Exactly one EncryptStrategy runs per OnEncrypt call,
// chosen by the keyring's active strategy (§4.2.1).
type EncryptStrategy interface {
	// ProviderID is stored in the EncryptedDataKey and used to select the
	// matching DecryptStrategy on the way back.
	ProviderID() string
	Wrap(ctx context.Context, suite cryptoDomain.AlgorithmSuite, plaintextDataKey []byte, encCtx cryptoDomain.EncryptionContext) (cryptoDomain.EncryptedDataKey, error)
}

// DecryptStrategy attempts to unwrap one candidate EncryptedDataKey. A
// keyring may register several: one active, zero or more legacy (§4.2.2).
type DecryptStrategy interface {
	// Accepts reports whether this strategy is able to unwrap edk at all,
	// based on KeyProviderID, before attempting any cryptographic operation.
	Accepts(edk cryptoDomain.EncryptedDataKey) bool
	// Unwrap recovers the plaintext data key. Legacy implies the caller must
	// have opted into legacy algorithms; the keyring enforces that gate, not
	// the strategy.
	Unwrap(ctx context.Context, suite cryptoDomain.AlgorithmSuite, edk cryptoDomain.EncryptedDataKey, encCtx cryptoDomain.EncryptionContext) ([]byte, error)
	// Legacy reports whether this strategy represents a decrypt-only legacy algorithm.
	Legacy() bool
}

// Keyring wraps and unwraps data keys on behalf of a MaterialsManager (§4.2).
// A single Keyring owns exactly one EncryptStrategy (its active provider) and
// any number of DecryptStrategy implementations, active and legacy.
type Keyring struct {
	name       string
	encrypt    EncryptStrategy
	decryptors []DecryptStrategy
	rng        cryptoDomain.SecureRandom
}

// New builds a Keyring from an active encrypt strategy and every decrypt
// strategy it should be able to unwrap (the active strategy's own decrypt
// counterpart must be included explicitly, alongside any legacy ones).
func New(name string, encrypt EncryptStrategy, decryptors []DecryptStrategy) *Keyring {
	return &Keyring{
		name:       name,
		encrypt:    encrypt,
		decryptors: decryptors,
		rng:        cryptoDomain.DefaultRandom,
	}
}

// WithRandom overrides the SecureRandom source, for deterministic tests.
func (k *Keyring) WithRandom(rng cryptoDomain.SecureRandom) *Keyring {
	k.rng = rng
	return k
}

// OnEncrypt generates a fresh plaintext data key for suite when materials has
// none yet, and wraps it with the keyring's single active strategy, appending
// the result to materials' EncryptedDataKeys (§4.2.1).
func (k *Keyring) OnEncrypt(ctx context.Context, materials *cryptoDomain.EncryptionMaterials) error {
	if k.encrypt == nil {
		return errors.Wrap(cryptoDomain.ErrConfiguration, "keyring has no active encrypt strategy: "+k.name)
	}

	if materials.PlaintextDataKey == nil {
		dataKey := make([]byte, materials.Suite.DataKeyLength)
		if _, err := k.rng.Read(dataKey); err != nil {
			return errors.Wrap(cryptoDomain.ErrWrapFailure, err.Error())
		}
		materials.PlaintextDataKey = dataKey
	}

	edk, err := k.encrypt.Wrap(ctx, materials.Suite, materials.PlaintextDataKey, materials.EncryptionContext)
	if err != nil {
		cryptoDomain.Zero(materials.PlaintextDataKey)
		return errors.Wrap(cryptoDomain.ErrWrapFailure, err.Error())
	}
	materials.EncryptedDataKeys = append(materials.EncryptedDataKeys, edk)
	return nil
}

// OnDecrypt tries every registered DecryptStrategy against every candidate
// EncryptedDataKey, in order, and populates materials.PlaintextDataKey with
// the first successful unwrap. allowLegacy gates legacy strategies: if false,
// they are skipped entirely rather than attempted and rejected, so a legacy
// envelope never causes cryptographic work without opt-in (§4.3, §7).
//
// On total failure only the aggregate ErrUnwrapFailure is returned; no
// per-candidate cause is exposed, preventing a decryption oracle (§7).
func (k *Keyring) OnDecrypt(ctx context.Context, materials *cryptoDomain.DecryptionMaterials, allowLegacy bool) error {
	for _, edk := range materials.CandidateEDKs {
		for _, strategy := range k.decryptors {
			if strategy.Legacy() && !allowLegacy {
				continue
			}
			if !strategy.Accepts(edk) {
				continue
			}
			plaintext, err := strategy.Unwrap(ctx, materials.Suite, edk, materials.EncryptionContext)
			if err != nil {
				continue
			}
			materials.PlaintextDataKey = plaintext
			return nil
		}
	}
	return cryptoDomain.ErrUnwrapFailure
}
