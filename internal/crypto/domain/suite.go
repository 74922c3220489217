// Package domain defines core cryptographic domain models for envelope encryption.
// Implements Keyring -> EncryptedDataKey -> Content hierarchy with AES-256-GCM
// as the only active algorithm suite and a closed set of legacy read-only suites.
package domain

// SuiteID identifies an algorithm suite by its wire-compatible content-cipher name.
type SuiteID string

const (
	// SuiteAESGCM256 is the active suite: AES-256-GCM, 12-byte IV, 128-bit tag.
	SuiteAESGCM256 SuiteID = "AES/GCM/NoPadding"

	// SuiteAESCBCPKCS5 is a legacy, read-only, unauthenticated suite.
	SuiteAESCBCPKCS5 SuiteID = "AES/CBC/PKCS5Padding"

	// SuiteAESCTR is a legacy, read-only, unauthenticated suite.
	SuiteAESCTR SuiteID = "AES/CTR/NoPadding"
)

// AlgorithmSuite describes the fixed parameters of one content algorithm.
// The set of suites is closed: new suites are added by extending this file,
// never by constructing one at runtime from caller-supplied data.
type AlgorithmSuite struct {
	ID            SuiteID // stable id, also the cipher name bound as AAD/pseudo-key suffix
	DataKeyLength int     // plaintext data key length in bytes: 16, 24, or 32
	IVLength      int     // IV/nonce length in bytes
	TagLength     int     // authentication tag length in bytes (0 for unauthenticated legacy suites)
	DataKeyAlgo   string  // "AES"
	Active        bool    // true only for the suite the encrypt side may emit
	Authenticated bool    // false for legacy CBC/CTR
	Legacy        bool    // true if decrypting this suite requires the caller's AllowLegacy opt-in
}

// activeSuite is the only suite GetEncryptionMaterials / the AES and RSA keyrings may emit.
var activeSuite = AlgorithmSuite{
	ID:            SuiteAESGCM256,
	DataKeyLength: 32,
	IVLength:      12,
	TagLength:     16,
	DataKeyAlgo:   "AES",
	Active:        true,
	Authenticated: true,
}

// legacySuites are read-only: the public encrypt API never emits these (§4.1).
var legacySuites = map[SuiteID]AlgorithmSuite{
	SuiteAESCBCPKCS5: {
		ID:            SuiteAESCBCPKCS5,
		DataKeyLength: 32,
		IVLength:      16,
		TagLength:     0,
		DataKeyAlgo:   "AES",
		Authenticated: false,
		Legacy:        true,
	},
	SuiteAESCTR: {
		ID:            SuiteAESCTR,
		DataKeyLength: 32,
		IVLength:      16,
		TagLength:     0,
		DataKeyAlgo:   "AES",
		Authenticated: false,
		Legacy:        true,
	},
	SuiteAESGCM256: activeSuite,
}

// ActiveSuite returns the single suite the encrypt side is allowed to emit.
func ActiveSuite() AlgorithmSuite {
	return activeSuite
}

// SuiteByID looks up a suite, active or legacy, by its stable id.
// Returns ErrUnsupportedAlgorithm if the id is not in the closed registry.
func SuiteByID(id SuiteID) (AlgorithmSuite, error) {
	if id == activeSuite.ID {
		return activeSuite, nil
	}
	if suite, ok := legacySuites[id]; ok {
		return suite, nil
	}
	return AlgorithmSuite{}, ErrUnsupportedAlgorithm
}

// ValidTagLengthsBits is the closed set of acceptable GCM tag lengths, in bits (§7 TamperedEnvelope).
var ValidTagLengthsBits = map[int]bool{96: true, 104: true, 112: true, 120: true, 128: true}
