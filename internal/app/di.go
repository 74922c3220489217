// Package app provides the dependency injection container for assembling
// the envelope encryption core and its CLI-facing collaborators.
package app

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/secrets/internal/config"
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/envelope/keyring"
	"github.com/allisson/secrets/internal/envelope/materialsmanager"
	"github.com/allisson/secrets/internal/envelope/pipeline"
	"github.com/allisson/secrets/internal/metrics"
)

// Container holds all application dependencies and provides methods to
// access them, lazily initializing components on first access.
type Container struct {
	config *config.Config

	logger *slog.Logger

	aeadManager cryptoService.AEADManager
	kmsService  cryptoService.KMSService

	wrappingKeyChain *cryptoDomain.WrappingKeyChain
	keyring          *keyring.Keyring
	materialsManager *materialsmanager.Manager

	storageClient  pipeline.ObjectStorageClient
	pipelineClient *pipeline.Client

	businessMetrics metrics.BusinessMetrics

	mu                   sync.Mutex
	loggerInit           sync.Once
	aeadManagerInit      sync.Once
	kmsServiceInit       sync.Once
	wrappingKeyChainInit sync.Once
	keyringInit          sync.Once
	materialsManagerInit sync.Once
	storageClientInit    sync.Once
	pipelineClientInit   sync.Once
	metricsInit          sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured structured logger.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KMSService returns the KMS service used to open secrets.Keeper instances.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// BusinessMetrics returns the metrics sink. No-op unless a meter provider is
// wired in by the caller via SetBusinessMetrics.
func (c *Container) BusinessMetrics() metrics.BusinessMetrics {
	c.metricsInit.Do(func() {
		if c.businessMetrics == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
		}
	})
	return c.businessMetrics
}

// SetBusinessMetrics overrides the metrics sink before first access.
func (c *Container) SetBusinessMetrics(m metrics.BusinessMetrics) {
	c.businessMetrics = m
}

// WrappingKeyChain returns the wrapping keys loaded from the environment or
// from KMS, depending on KMS_PROVIDER.
func (c *Container) WrappingKeyChain() (*cryptoDomain.WrappingKeyChain, error) {
	var err error
	c.wrappingKeyChainInit.Do(func() {
		c.wrappingKeyChain, err = cryptoDomain.LoadWrappingKeyChain(context.Background(), c.config, c.KMSService(), c.Logger())
		if err != nil {
			c.initErrors["wrappingKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["wrappingKeyChain"]; exists {
		return nil, storedErr
	}
	return c.wrappingKeyChain, nil
}

// Keyring returns the configured keyring: AES (default), RSA, or KMS,
// selected by KEYRING_KIND (§4.2, §6 "builder that validates key algorithm").
func (c *Container) Keyring() (*keyring.Keyring, error) {
	var err error
	c.keyringInit.Do(func() {
		c.keyring, err = c.initKeyring()
		if err != nil {
			c.initErrors["keyring"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyring"]; exists {
		return nil, storedErr
	}
	return c.keyring, nil
}

// MaterialsManager returns the default materials manager built over the
// configured keyring.
func (c *Container) MaterialsManager() (*materialsmanager.Manager, error) {
	var err error
	c.materialsManagerInit.Do(func() {
		var kr *keyring.Keyring
		kr, err = c.Keyring()
		if err != nil {
			c.initErrors["materialsManager"] = err
			return
		}
		c.materialsManager = materialsmanager.New(kr)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["materialsManager"]; exists {
		return nil, storedErr
	}
	return c.materialsManager, nil
}

// StorageClient returns the S3-backed ObjectStorageClient.
func (c *Container) StorageClient() (pipeline.ObjectStorageClient, error) {
	var err error
	c.storageClientInit.Do(func() {
		c.storageClient, err = pipeline.NewS3Client(context.Background(), c.config)
		if err != nil {
			c.initErrors["storageClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storageClient"]; exists {
		return nil, storedErr
	}
	return c.storageClient, nil
}

// PipelineClient returns the put/get pipeline client wired to storage, the
// materials manager, and business metrics.
func (c *Container) PipelineClient() (*pipeline.Client, error) {
	var err error
	c.pipelineClientInit.Do(func() {
		var storageClient pipeline.ObjectStorageClient
		storageClient, err = c.StorageClient()
		if err != nil {
			c.initErrors["pipelineClient"] = err
			return
		}

		var mm *materialsmanager.Manager
		mm, err = c.MaterialsManager()
		if err != nil {
			c.initErrors["pipelineClient"] = err
			return
		}

		c.pipelineClient = pipeline.NewClient(storageClient, mm, pipeline.WithMetrics(c.BusinessMetrics()))
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineClient"]; exists {
		return nil, storedErr
	}
	return c.pipelineClient, nil
}

// Shutdown releases any resources the container holds (currently the
// wrapping key chain's zeroized key material).
func (c *Container) Shutdown(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wrappingKeyChain != nil {
		if err := c.wrappingKeyChain.Close(); err != nil {
			return fmt.Errorf("wrapping key chain close: %w", err)
		}
	}
	return nil
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func (c *Container) initKeyring() (*keyring.Keyring, error) {
	switch c.config.KeyringKind {
	case "", "aes":
		chain, err := c.WrappingKeyChain()
		if err != nil {
			return nil, fmt.Errorf("failed to load wrapping key chain for aes keyring: %w", err)
		}
		active, ok := chain.Get(chain.ActiveWrappingKeyID())
		if !ok {
			return nil, fmt.Errorf("active wrapping key %q not found in chain", chain.ActiveWrappingKeyID())
		}
		return keyring.NewAESKeyring(active.Key, c.AEADManager()), nil

	case "rsa":
		privateKey, err := loadRSAPrivateKey(c.config.RSAPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rsa private key: %w", err)
		}
		return keyring.NewRSAKeyring(privateKey), nil

	case "kms":
		if c.config.KMSKeyURI == "" {
			return nil, cryptoDomain.ErrKMSKeyURINotSet
		}
		keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		return keyring.NewKMSKeyring(c.config.KMSKeyURI, keeper), nil

	default:
		return nil, fmt.Errorf("%w: unknown keyring kind %q", cryptoDomain.ErrConfiguration, c.config.KeyringKind)
	}
}

// loadRSAPrivateKey reads a PEM-encoded PKCS#1 or PKCS#8 RSA private key from path.
func loadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return nil, cryptoDomain.ErrConfiguration
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rsa private key file: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("pem block does not contain an RSA private key")
	}
	return key, nil
}
