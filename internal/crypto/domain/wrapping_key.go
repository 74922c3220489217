package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/allisson/secrets/internal/config"
	"github.com/allisson/secrets/internal/errors"
)

// WrappingKey is a 32-byte AES key used directly by the AES keyring
// strategies to wrap and unwrap plaintext data keys (§4.2.1).
type WrappingKey struct {
	ID  string
	Key []byte
}

// WrappingKeyChain holds every configured wrapping key, keyed by ID, plus
// which one is active. Safe for concurrent reads after construction; Close
// zeroizes every key exactly once.
type WrappingKeyChain struct {
	keys        sync.Map // string -> *WrappingKey
	activeKeyID string
	closeOnce   sync.Once
}

// ActiveWrappingKeyID returns the ID of the single wrapping key the encrypt
// side uses.
func (c *WrappingKeyChain) ActiveWrappingKeyID() string {
	return c.activeKeyID
}

// Get returns the wrapping key for id, or false if id is unknown.
func (c *WrappingKeyChain) Get(id string) (*WrappingKey, bool) {
	v, ok := c.keys.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*WrappingKey), true
}

// Close zeroizes every wrapping key's plaintext bytes. Idempotent.
func (c *WrappingKeyChain) Close() error {
	c.closeOnce.Do(func() {
		c.keys.Range(func(_, v interface{}) bool {
			Zero(v.(*WrappingKey).Key)
			return true
		})
	})
	return nil
}

// KMSKeeper is the subset of gocloud.dev/secrets.Keeper the KMS keyring
// strategy and the wrapping-key loader depend on. *secrets.Keeper satisfies
// this interface; tests substitute a fake.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens a KMSKeeper for a given key URI, abstracting over the
// gocloud.dev/secrets provider drivers (awskms, gcpkms, azurekeyvault,
// hashivault, localsecrets).
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// LoadWrappingKeyChainFromEnv parses WRAPPING_KEYS ("id1:base64key1,id2:base64key2,...")
// and ACTIVE_WRAPPING_KEY_ID, validating every key is exactly 32 bytes.
func LoadWrappingKeyChainFromEnv(cfg *config.Config) (*WrappingKeyChain, error) {
	if cfg.WrappingKeys == "" {
		return nil, ErrWrappingKeysNotSet
	}
	if cfg.ActiveWrappingKeyID == "" {
		return nil, ErrActiveWrappingKeyIDNotSet
	}

	chain := &WrappingKeyChain{activeKeyID: cfg.ActiveWrappingKeyID}

	pairs := strings.Split(cfg.WrappingKeys, ",")
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, ErrInvalidWrappingKeysFormat
		}
		id := strings.TrimSpace(parts[0])
		rawKey := strings.TrimSpace(parts[1])
		if id == "" || rawKey == "" {
			return nil, ErrInvalidWrappingKeysFormat
		}

		keyBytes, err := base64.StdEncoding.DecodeString(rawKey)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidWrappingKeyBase64, err.Error())
		}
		if len(keyBytes) != 32 {
			return nil, ErrInvalidKeySize
		}

		chain.keys.Store(id, &WrappingKey{ID: id, Key: keyBytes})
	}

	if _, ok := chain.Get(chain.activeKeyID); !ok {
		return nil, ErrActiveWrappingKeyNotFound
	}

	return chain, nil
}

// loadWrappingKeyChainFromKMS decrypts each entry of WRAPPING_KEYS through the
// configured KMS keeper instead of treating it as a raw base64 AES key. Entry
// format is identical: "id:base64-ciphertext".
func loadWrappingKeyChainFromKMS(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (*WrappingKeyChain, error) {
	if cfg.KMSKeyURI == "" {
		return nil, ErrKMSKeyURINotSet
	}

	logger.Info("opening kms keeper", "provider", cfg.KMSProvider, "key_uri", maskKeyURI(cfg.KMSKeyURI))

	keeper, err := kmsService.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return nil, errors.Wrap(ErrKMSOpenKeeperFailed, err.Error())
	}
	defer keeper.Close()

	if cfg.WrappingKeys == "" {
		return nil, ErrWrappingKeysNotSet
	}
	if cfg.ActiveWrappingKeyID == "" {
		return nil, ErrActiveWrappingKeyIDNotSet
	}

	chain := &WrappingKeyChain{activeKeyID: cfg.ActiveWrappingKeyID}

	pairs := strings.Split(cfg.WrappingKeys, ",")
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, ErrInvalidWrappingKeysFormat
		}
		id := strings.TrimSpace(parts[0])
		rawCiphertext := strings.TrimSpace(parts[1])
		if id == "" || rawCiphertext == "" {
			return nil, ErrInvalidWrappingKeysFormat
		}

		ciphertext, err := base64.StdEncoding.DecodeString(rawCiphertext)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidWrappingKeyBase64, err.Error())
		}

		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, errors.Wrap(ErrKMSDecryptionFailed, err.Error())
		}
		if len(plaintext) != 32 {
			return nil, ErrInvalidKeySize
		}

		chain.keys.Store(id, &WrappingKey{ID: id, Key: plaintext})
	}

	if _, ok := chain.Get(chain.activeKeyID); !ok {
		return nil, ErrActiveWrappingKeyNotFound
	}

	return chain, nil
}

// LoadWrappingKeyChain loads the wrapping-key chain, going through KMS when
// cfg.KMSProvider is set and reading raw base64 keys from the environment
// otherwise. This mirrors the teacher's dual-mode master-key bootstrap.
func LoadWrappingKeyChain(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (*WrappingKeyChain, error) {
	if cfg.KMSProvider != "" {
		return loadWrappingKeyChainFromKMS(ctx, cfg, kmsService, logger)
	}
	return LoadWrappingKeyChainFromEnv(cfg)
}

// maskKeyURI redacts everything after the scheme so key material never lands in logs.
func maskKeyURI(uri string) string {
	idx := strings.Index(uri, "://")
	if idx == -1 {
		return "***"
	}
	return fmt.Sprintf("%s://***", uri[:idx])
}
