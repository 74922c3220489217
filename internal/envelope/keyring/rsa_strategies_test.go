package keyring

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/envelope/metadata"
)

func generateRSAKeyForTest(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestRSAKeyring_RoundTrip(t *testing.T) {
	key := generateRSAKeyForTest(t)
	kr := NewRSAKeyring(key)

	materials := &cryptoDomain.EncryptionMaterials{Suite: cryptoDomain.ActiveSuite()}
	require.NoError(t, kr.OnEncrypt(context.Background(), materials))
	require.Len(t, materials.EncryptedDataKeys, 1)
	assert.Equal(t, providerRSAOAEPSHA1, materials.EncryptedDataKeys[0].KeyProviderID)

	decMaterials := &cryptoDomain.DecryptionMaterials{
		Suite:         cryptoDomain.ActiveSuite(),
		CandidateEDKs: materials.EncryptedDataKeys,
	}
	require.NoError(t, kr.OnDecrypt(context.Background(), decMaterials, false))
	assert.Equal(t, materials.PlaintextDataKey, decMaterials.PlaintextDataKey)
}

func TestRSAKeyring_CipherNameMismatchIsTamperedEnvelope(t *testing.T) {
	key := generateRSAKeyForTest(t)
	strategy := &rsaOAEPSHA1DecryptStrategy{privateKey: key}

	otherSuite := cryptoDomain.AlgorithmSuite{ID: "AES/CTR/NoPadding"}
	encryptStrategy := &rsaOAEPSHA1EncryptStrategy{publicKey: &key.PublicKey}
	edk, err := encryptStrategy.Wrap(context.Background(), otherSuite, make([]byte, 32), nil)
	require.NoError(t, err)

	_, err = strategy.Unwrap(context.Background(), cryptoDomain.ActiveSuite(), edk, nil)
	assert.ErrorIs(t, err, cryptoDomain.ErrTamperedEnvelope)
}

func TestRSALegacyECBOAEPSHA256_DecryptOnly(t *testing.T) {
	key := generateRSAKeyForTest(t)
	dataKey := make([]byte, 32)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &key.PublicKey, dataKey, nil)
	require.NoError(t, err)

	edk := cryptoDomain.EncryptedDataKey{
		KeyProviderID: providerInfoRSAOAEPSHA256,
		Ciphertext:    ciphertext,
	}

	kr := NewRSAKeyring(key)
	decMaterials := &cryptoDomain.DecryptionMaterials{
		Suite:         cryptoDomain.ActiveSuite(),
		CandidateEDKs: []cryptoDomain.EncryptedDataKey{edk},
	}

	t.Run("refused without legacy opt-in", func(t *testing.T) {
		err := kr.OnDecrypt(context.Background(), decMaterials, false)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailure)
	})

	t.Run("succeeds with legacy opt-in", func(t *testing.T) {
		err := kr.OnDecrypt(context.Background(), decMaterials, true)
		require.NoError(t, err)
		assert.Equal(t, dataKey, decMaterials.PlaintextDataKey)
	})
}

// TestRSALegacyECBOAEPSHA256_DecodeThenUnwrap builds the object metadata the
// way a stored legacy-RSA object actually carries it (x-amz-wrap-alg holds
// the padding scheme name, decoded into EDK.KeyProviderID) and checks the
// strategy accepts what metadata.Decode produces, not a hand-built EDK.
func TestRSALegacyECBOAEPSHA256_DecodeThenUnwrap(t *testing.T) {
	key := generateRSAKeyForTest(t)
	dataKey := make([]byte, 32)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &key.PublicKey, dataKey, nil)
	require.NoError(t, err)

	meta := map[string]string{
		metadata.KeyV1:      base64.StdEncoding.EncodeToString(ciphertext),
		metadata.KeyIV:      base64.StdEncoding.EncodeToString(make([]byte, 16)),
		metadata.KeyMatdesc: "{}",
		metadata.KeyWrapAlg: providerInfoRSAOAEPSHA256,
	}

	env, err := metadata.Decode(meta)
	require.NoError(t, err)
	require.True(t, env.IsLegacy)

	kr := NewRSAKeyring(key)
	decMaterials := &cryptoDomain.DecryptionMaterials{
		Suite:         cryptoDomain.ActiveSuite(),
		CandidateEDKs: []cryptoDomain.EncryptedDataKey{env.EDK},
	}

	err = kr.OnDecrypt(context.Background(), decMaterials, true)
	require.NoError(t, err)
	assert.Equal(t, dataKey, decMaterials.PlaintextDataKey)
}
