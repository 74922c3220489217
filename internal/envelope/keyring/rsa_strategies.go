package keyring

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // required for interop with the legacy RSA-OAEP-SHA1 provider id
	"crypto/sha256"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

const (
	providerRSAOAEPSHA1       = "RSA-OAEP-SHA1"
	providerInfoRSAOAEPSHA256 = "RSA/ECB/OAEPWithSHA-256AndMGF1Padding"
)

// rsaOAEPSHA1EncryptStrategy wraps a pseudo-data-key with RSA-OAEP/SHA-1
// (§4.2.2): byte 0 is the data key length, followed by the data key, followed
// by the UTF-8 content suite cipher name. This binds the wrapped key to the
// content algorithm without needing the content suite as separate AAD.
type rsaOAEPSHA1EncryptStrategy struct {
	publicKey *rsa.PublicKey
}

func (s *rsaOAEPSHA1EncryptStrategy) ProviderID() string { return providerRSAOAEPSHA1 }

func (s *rsaOAEPSHA1EncryptStrategy) Wrap(
	_ context.Context,
	suite cryptoDomain.AlgorithmSuite,
	plaintextDataKey []byte,
	_ cryptoDomain.EncryptionContext,
) (cryptoDomain.EncryptedDataKey, error) {
	if len(plaintextDataKey) != 16 && len(plaintextDataKey) != 24 && len(plaintextDataKey) != 32 {
		return cryptoDomain.EncryptedDataKey{}, cryptoDomain.ErrInvalidKeySize
	}

	pseudoKey := make([]byte, 0, 1+len(plaintextDataKey)+len(suite.ID))
	pseudoKey = append(pseudoKey, byte(len(plaintextDataKey)))
	pseudoKey = append(pseudoKey, plaintextDataKey...)
	pseudoKey = append(pseudoKey, []byte(suite.ID)...)

	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, s.publicKey, pseudoKey, nil) //nolint:gosec
	if err != nil {
		return cryptoDomain.EncryptedDataKey{}, errors.Wrap(cryptoDomain.ErrWrapFailure, err.Error())
	}

	return cryptoDomain.EncryptedDataKey{
		KeyProviderID: providerRSAOAEPSHA1,
		Ciphertext:    ciphertext,
	}, nil
}

// rsaOAEPSHA1DecryptStrategy is the active unwrap counterpart: validates the
// pseudo-data-key layout before trusting the recovered bytes (§9 decision:
// Go's byte is unsigned so there's no signed-length ambiguity, but the
// length byte is still checked against {16,24,32} explicitly).
type rsaOAEPSHA1DecryptStrategy struct {
	privateKey *rsa.PrivateKey
}

func (s *rsaOAEPSHA1DecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == providerRSAOAEPSHA1
}

func (s *rsaOAEPSHA1DecryptStrategy) Legacy() bool { return false }

func (s *rsaOAEPSHA1DecryptStrategy) Unwrap(
	_ context.Context,
	suite cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	pseudoKey, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, s.privateKey, edk.Ciphertext, nil) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}
	if len(pseudoKey) < 1 {
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	length := int(pseudoKey[0])
	if length != 16 && length != 24 && length != 32 {
		cryptoDomain.Zero(pseudoKey)
		return nil, cryptoDomain.ErrTamperedEnvelope
	}
	if len(pseudoKey) < 1+length {
		cryptoDomain.Zero(pseudoKey)
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	dataKey := pseudoKey[1 : 1+length]
	cipherName := pseudoKey[1+length:]
	if string(cipherName) != string(suite.ID) {
		cryptoDomain.Zero(pseudoKey)
		return nil, cryptoDomain.ErrTamperedEnvelope
	}

	return dataKey, nil
}

// rsaECBOAEPSHA256DecryptStrategy unwraps a legacy bare data key: no
// pseudo-key wrapper, OAEP/SHA-256. Decrypt-only; identified by the provider
// id the original scheme stamped on the EDK (carried in x-amz-wrap-alg and
// decoded into KeyProviderID, same as every other provider id).
type rsaECBOAEPSHA256DecryptStrategy struct {
	privateKey *rsa.PrivateKey
}

func (s *rsaECBOAEPSHA256DecryptStrategy) Accepts(edk cryptoDomain.EncryptedDataKey) bool {
	return edk.KeyProviderID == providerInfoRSAOAEPSHA256
}

func (s *rsaECBOAEPSHA256DecryptStrategy) Legacy() bool { return true }

func (s *rsaECBOAEPSHA256DecryptStrategy) Unwrap(
	_ context.Context,
	_ cryptoDomain.AlgorithmSuite,
	edk cryptoDomain.EncryptedDataKey,
	_ cryptoDomain.EncryptionContext,
) ([]byte, error) {
	dataKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, s.privateKey, edk.Ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrUnwrapFailure, err.Error())
	}
	if len(dataKey) != 16 && len(dataKey) != 24 && len(dataKey) != 32 {
		cryptoDomain.Zero(dataKey)
		return nil, cryptoDomain.ErrTamperedEnvelope
	}
	return dataKey, nil
}

// NewRSAKeyring builds the RSA keyring (§4.2.2): RSA-OAEP-SHA1 pseudo-data-key
// active wrap/unwrap, plus legacy RSA-ECB-OAEP-SHA256 bare-key unwrap-only.
func NewRSAKeyring(privateKey *rsa.PrivateKey) *Keyring {
	encrypt := &rsaOAEPSHA1EncryptStrategy{publicKey: &privateKey.PublicKey}
	decryptors := []DecryptStrategy{
		&rsaOAEPSHA1DecryptStrategy{privateKey: privateKey},
		&rsaECBOAEPSHA256DecryptStrategy{privateKey: privateKey},
	}
	return New("rsa", encrypt, decryptors)
}
