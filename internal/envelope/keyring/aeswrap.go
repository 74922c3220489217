package keyring

import (
	"crypto/cipher"
	"crypto/subtle"
	"errors"
)

// aesWrapDefaultIV is the RFC 3394 §2.2.3.1 default initial value, compared
// against on unwrap to detect a tampered or mis-keyed ciphertext.
var aesWrapDefaultIV = []byte{0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6}

const aesWrapChunkLen = 8

// aesUnwrapRFC3394 unwraps a legacy "AESWrap"-wrapped data key (RFC 3394).
// This keyring is decrypt-only for AESWrap: nothing in the active path
// produces one.
func aesUnwrapRFC3394(block cipher.Block, wrapped []byte) ([]byte, error) {
	if len(wrapped) < aesWrapChunkLen*2 || len(wrapped)%aesWrapChunkLen != 0 {
		return nil, errors.New("aeswrap: invalid wrapped key length")
	}

	n := (len(wrapped) / aesWrapChunkLen) - 1
	buf := make([]byte, len(wrapped)+aesWrapChunkLen)
	r := buf[aesWrapChunkLen*2:]
	copy(r, wrapped[aesWrapChunkLen:])

	a := buf[:aesWrapChunkLen]
	b := buf[aesWrapChunkLen : aesWrapChunkLen*2]
	ab := buf[:aesWrapChunkLen*2]
	copy(a, wrapped)

	for t := 0; t < 6*n; t++ {
		u := 6*n - t
		a[0] ^= byte(u >> 56)
		a[1] ^= byte(u >> 48)
		a[2] ^= byte(u >> 40)
		a[3] ^= byte(u >> 32)
		a[4] ^= byte(u >> 24)
		a[5] ^= byte(u >> 16)
		a[6] ^= byte(u >> 8)
		a[7] ^= byte(u)

		copy(b, r[((u-1)%n)*aesWrapChunkLen:])
		block.Decrypt(ab, ab)
		copy(r[((u-1)%n)*aesWrapChunkLen:], b)
	}

	if subtle.ConstantTimeCompare(a, aesWrapDefaultIV) == 0 {
		return nil, errors.New("aeswrap: integrity check failed")
	}

	return buf[aesWrapChunkLen*2:], nil
}
