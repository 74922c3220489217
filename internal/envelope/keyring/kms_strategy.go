package keyring

import (
	"context"
	"strings"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

// kmsProviderID builds the provider id per §4.2.3: "kms+context" followed by
// the key URI's scheme, e.g. "kms+context:awskms". Mirrors the teacher's
// maskKeyURI scheme-dispatch idiom without ever storing the full URI.
func kmsProviderID(keyURI string) string {
	scheme := keyURI
	if idx := strings.Index(keyURI, "://"); idx != -1 {
		scheme = keyURI[:idx]
	}
	return "kms+context:" + scheme
}

// kmsEncryptStrategy delegates wrapping to an out-of-process KMS keeper. The
// EDK ciphertext is opaque: whatever the keeper returns.
type kmsEncryptStrategy struct {
	keeper     cryptoDomain.KMSKeeper
	providerID string
}

func (s *kmsEncryptStrategy) ProviderID() string { return s.providerID }

func (s *kmsEncryptStrategy) Wrap(
	ctx context.Context,
	_ cryptoDomain.AlgorithmSuite,
	plaintextDataKey []byte,
	_ cryptoDomain.EncryptionContext,
) (cryptoDomain.EncryptedDataKey, error) {
	ciphertext, err := s.keeper.Encrypt(ctx, plaintextDataKey)
	if err != nil {
		return cryptoDomain.EncryptedDataKey{}, errors.Wrap(cryptoDomain.ErrKMSEncryptionFailed, err.Error())
	}
	return cryptoDomain.EncryptedDataKey{
		KeyProviderID: s.providerID,
		Ciphertext:    ciphertext,
	}, nil
}

// kmsDecryptStrategy is the active unwrap counterpart.
type kmsDecryptStrategy struct {
	keeper     cryptoDomain.KMSKeeper
	providerID string
}

func (s *kmsDecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == s.providerID
}

func (s *kmsDecryptStrategy) Legacy() bool { return false }

func (s *kmsDecryptStrategy) Unwrap(
	ctx context.Context,
	_ cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	plaintext, err := s.keeper.Decrypt(ctx, edk.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrKMSDecryptionFailed, err.Error())
	}
	return plaintext, nil
}

// NewKMSKeyring builds a keyring over a gocloud.dev/secrets.Keeper (§4.2.3,
// §2.1 item 7). keyURI is used only to derive the provider id; the keeper
// itself must already be open and bound to that URI.
func NewKMSKeyring(keyURI string, keeper cryptoDomain.KMSKeeper) *Keyring {
	providerID := kmsProviderID(keyURI)
	encrypt := &kmsEncryptStrategy{keeper: keeper, providerID: providerID}
	decryptors := []DecryptStrategy{
		&kmsDecryptStrategy{keeper: keeper, providerID: providerID},
	}
	return New("kms", encrypt, decryptors)
}
