// Package materialsmanager implements the default, stateless policy layer
// between the put/get pipeline and a keyring (§4.3).
package materialsmanager

import (
	"context"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/envelope/metadata"
	"github.com/allisson/secrets/internal/errors"
)

// keyring is the narrow collaborator this manager delegates to. Satisfied by
// *keyring.Keyring; defined locally to avoid a dependency from
// materialsmanager back onto the keyring package's concrete type.
type keyring interface {
	OnEncrypt(ctx context.Context, materials *cryptoDomain.EncryptionMaterials) error
	OnDecrypt(ctx context.Context, materials *cryptoDomain.DecryptionMaterials, allowLegacy bool) error
}

// Manager is the default materials manager: stateless policy that pins the
// suite on encrypt, trusts only the stored envelope for the suite on
// decrypt, and enforces that the caller's encryption context matches the
// stored one exactly (§4.3).
type Manager struct {
	keyring keyring
}

// New builds the default materials manager over a keyring.
func New(kr keyring) *Manager {
	return &Manager{keyring: kr}
}

// EncryptRequest carries the inputs to GetEncryptionMaterials.
type EncryptRequest struct {
	EncryptionContext cryptoDomain.EncryptionContext
}

// GetEncryptionMaterials fixes the suite to the single active suite, clones
// the caller's encryption context so later caller-side mutation can't affect
// materials already built, and delegates key generation/wrapping to the
// keyring (§4.3).
func (m *Manager) GetEncryptionMaterials(ctx context.Context, req EncryptRequest) (*cryptoDomain.EncryptionMaterials, error) {
	encCtx := req.EncryptionContext.Clone()
	if err := encCtx.Validate(); err != nil {
		return nil, err
	}

	materials := &cryptoDomain.EncryptionMaterials{
		Suite:             cryptoDomain.ActiveSuite(),
		EncryptionContext: encCtx,
	}

	if err := m.keyring.OnEncrypt(ctx, materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// DecryptRequest carries the inputs to DecryptMaterials: the parsed object
// envelope and the caller's expected encryption context.
type DecryptRequest struct {
	Envelope          metadata.ObjectEnvelope
	EncryptionContext cryptoDomain.EncryptionContext
	AllowLegacy       bool
}

// DecryptMaterials takes the algorithm suite from the stored envelope (never
// from the caller), requires the caller's encryption context to byte-wise
// equal the stored canonical form, and delegates unwrap to the keyring. A
// legacy stored suite is refused unless the caller opted in via AllowLegacy
// (§4.3, §7 LegacyRefused).
func (m *Manager) DecryptMaterials(ctx context.Context, req DecryptRequest) (*cryptoDomain.DecryptionMaterials, error) {
	suite, err := cryptoDomain.SuiteByID(req.Envelope.CEKAlg)
	if err != nil {
		if req.Envelope.IsLegacy {
			suite, err = legacySuiteForEnvelope(req.Envelope)
		}
		if err != nil {
			return nil, err
		}
	}

	if suite.Legacy && !req.AllowLegacy {
		return nil, cryptoDomain.ErrLegacyRefused
	}

	if !req.EncryptionContext.Equal(req.Envelope.EncryptionContext) {
		return nil, errors.Wrap(cryptoDomain.ErrTamperedEnvelope, "encryption context does not match stored matdesc")
	}

	materials := &cryptoDomain.DecryptionMaterials{
		Suite:             suite,
		EncryptionContext: req.Envelope.EncryptionContext.Clone(),
		CandidateEDKs:     []cryptoDomain.EncryptedDataKey{req.Envelope.EDK},
	}

	if err := m.keyring.OnDecrypt(ctx, materials, req.AllowLegacy); err != nil {
		return nil, err
	}
	return materials, nil
}

// legacySuiteForEnvelope resolves the content suite for a v1 envelope, which
// carries no x-amz-cek-alg. Legacy v1 envelopes always used CBC; CTR-encoded
// objects carry a v2 envelope with an explicit x-amz-cek-alg and never reach
// this fallback.
func legacySuiteForEnvelope(env metadata.ObjectEnvelope) (cryptoDomain.AlgorithmSuite, error) {
	return cryptoDomain.SuiteByID(cryptoDomain.SuiteAESCBCPKCS5)
}
