package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandom_Read(t *testing.T) {
	var r CryptoRandom
	buf := make([]byte, 32)

	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	assert.False(t, allZero, "crypto/rand should not return an all-zero buffer")
}

func TestCryptoRandom_Read_Distinct(t *testing.T) {
	var r CryptoRandom
	first := make([]byte, 16)
	second := make([]byte, 16)

	_, err := r.Read(first)
	require.NoError(t, err)
	_, err = r.Read(second)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDefaultRandom(t *testing.T) {
	assert.NotNil(t, DefaultRandom)
	_, ok := DefaultRandom.(CryptoRandom)
	assert.True(t, ok)
}
