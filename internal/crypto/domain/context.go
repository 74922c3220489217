package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// reservedContextKey is never permitted in a caller-supplied EncryptionContext;
// it is reserved for internally binding the algorithm suite in future envelope
// versions (§3).
const reservedContextKey = "aws:x-amz-cek-alg"

// EncryptionContext is a caller-supplied, non-secret key-value map bound to
// the crypto operation. Ordering is irrelevant for logical equality, but the
// canonical serialization (sorted keys, compact JSON) is what gets bound as
// AAD / stored in x-amz-matdesc, so two contexts are only interchangeable if
// their canonical forms match byte-for-byte.
type EncryptionContext map[string]string

// Validate rejects a context that uses the reserved binding key.
func (ec EncryptionContext) Validate() error {
	if _, ok := ec[reservedContextKey]; ok {
		return ErrReservedContextKey
	}
	return nil
}

// Clone returns an independent copy, so later caller-side mutation of the
// original map can never affect materials already built from it (§3: "never
// mutated after materials are built").
func (ec EncryptionContext) Clone() EncryptionContext {
	if ec == nil {
		return EncryptionContext{}
	}
	out := make(EncryptionContext, len(ec))
	for k, v := range ec {
		out[k] = v
	}
	return out
}

// Canonical serializes the context as compact JSON with keys sorted ascending
// by code point, matching the wire format required for x-amz-matdesc and for
// any AAD binding that includes the context.
func (ec EncryptionContext) Canonical() []byte {
	if len(ec) == 0 {
		return []byte("{}")
	}

	keys := make([]string, 0, len(ec))
	for k := range ec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(ec[k])
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// Equal reports whether two contexts are byte-wise equal on their canonical
// serialization (§8 Testable Property 7).
func (ec EncryptionContext) Equal(other EncryptionContext) bool {
	return bytes.Equal(ec.Canonical(), other.Canonical())
}

// ParseEncryptionContext decodes a compact JSON object (as stored in
// x-amz-matdesc) back into an EncryptionContext.
func ParseEncryptionContext(raw []byte) (EncryptionContext, error) {
	if len(raw) == 0 {
		return EncryptionContext{}, nil
	}
	var ec EncryptionContext
	if err := json.Unmarshal(raw, &ec); err != nil {
		return nil, ErrInvalidMatdesc
	}
	return ec, nil
}
