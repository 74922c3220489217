// Package metadata encodes and decodes the envelope encryption fields carried
// in an object's user metadata (§4.5).
package metadata

import (
	"encoding/base64"
	"strconv"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
)

// Metadata key names, exact for wire compatibility (§4.5, §6). Callers of
// this package work with these un-prefixed logical names; the storage
// adapter is responsible for the `x-amz-meta-` wire prefix.
const (
	KeyV2       = "x-amz-key-v2"
	KeyV1       = "x-amz-key"
	KeyIV       = "x-amz-iv"
	KeyMatdesc  = "x-amz-matdesc"
	KeyWrapAlg  = "x-amz-wrap-alg"
	KeyCEKAlg   = "x-amz-cek-alg"
	KeyTagLen   = "x-amz-tag-len"
	KeyUnencLen = "x-amz-unencrypted-content-length"
)

// EnvelopeVersion names the content-layer AAD policy this codec implements:
// "2" means the encryption context is never bound as content AAD (§9
// decision 2). Decode sets it as the Version of every envelope it parses,
// legacy ones included; Encode does not write it into the metadata, so stored
// objects carry no version key.
const EnvelopeVersion = "2"

// ObjectEnvelope is the parsed form of an object's encryption metadata.
type ObjectEnvelope struct {
	Version           string
	EDK               cryptoDomain.EncryptedDataKey
	IV                []byte
	EncryptionContext cryptoDomain.EncryptionContext
	CEKAlg            cryptoDomain.SuiteID // empty for legacy v1, which carries no cek-alg
	TagLengthBits     int                  // 0 for unauthenticated legacy suites
	IsLegacy          bool
	UnencryptedLength int64 // -1 if absent; legacy envelopes record the original plaintext length
}

// Encode renders env into the logical (un-prefixed) metadata map the pipeline
// merges into a PutObject request (§4.6).
func Encode(env ObjectEnvelope) map[string]string {
	out := map[string]string{
		KeyV2:      base64.StdEncoding.EncodeToString(env.EDK.Ciphertext),
		KeyIV:      base64.StdEncoding.EncodeToString(env.IV),
		KeyMatdesc: string(env.EncryptionContext.Canonical()),
		KeyWrapAlg: env.EDK.KeyProviderID,
		KeyCEKAlg:  string(env.CEKAlg),
		KeyTagLen:  strconv.Itoa(env.TagLengthBits),
	}
	if env.UnencryptedLength >= 0 {
		out[KeyUnencLen] = strconv.FormatInt(env.UnencryptedLength, 10)
	}
	return out
}

// Decode parses logical (already un-prefixed) object metadata into an
// ObjectEnvelope. Absence of x-amz-cek-alg indicates a legacy v1 envelope
// (§4.5: "presence of x-amz-cek-alg distinguishes").
func Decode(meta map[string]string) (ObjectEnvelope, error) {
	cekAlg, hasCEKAlg := meta[KeyCEKAlg]

	var edkB64 string
	if v, ok := meta[KeyV2]; ok {
		edkB64 = v
	} else if v, ok := meta[KeyV1]; ok {
		edkB64 = v
	} else {
		return ObjectEnvelope{}, cryptoDomain.ErrMissingEnvelope
	}

	edkCiphertext, err := base64.StdEncoding.DecodeString(edkB64)
	if err != nil {
		return ObjectEnvelope{}, cryptoDomain.ErrTamperedEnvelope
	}

	ivB64, ok := meta[KeyIV]
	if !ok {
		return ObjectEnvelope{}, cryptoDomain.ErrMissingEnvelope
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return ObjectEnvelope{}, cryptoDomain.ErrTamperedEnvelope
	}

	encCtx, err := cryptoDomain.ParseEncryptionContext([]byte(meta[KeyMatdesc]))
	if err != nil {
		return ObjectEnvelope{}, err
	}

	tagLenBits := 0
	if raw, ok := meta[KeyTagLen]; ok && raw != "" {
		tagLenBits, err = strconv.Atoi(raw)
		if err != nil {
			return ObjectEnvelope{}, cryptoDomain.ErrTamperedEnvelope
		}
		if !cryptoDomain.ValidTagLengthsBits[tagLenBits] {
			return ObjectEnvelope{}, cryptoDomain.ErrTamperedEnvelope
		}
	}

	unencLen := int64(-1)
	if raw, ok := meta[KeyUnencLen]; ok && raw != "" {
		unencLen, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ObjectEnvelope{}, cryptoDomain.ErrTamperedEnvelope
		}
	}

	env := ObjectEnvelope{
		Version: EnvelopeVersion,
		EDK: cryptoDomain.EncryptedDataKey{
			KeyProviderID: meta[KeyWrapAlg],
			Ciphertext:    edkCiphertext,
		},
		IV:                iv,
		EncryptionContext: encCtx,
		CEKAlg:            cryptoDomain.SuiteID(cekAlg),
		TagLengthBits:     tagLenBits,
		IsLegacy:          !hasCEKAlg,
		UnencryptedLength: unencLen,
	}
	return env, nil
}
