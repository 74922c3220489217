package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/envelope/content"
	"github.com/allisson/secrets/internal/envelope/materialsmanager"
	"github.com/allisson/secrets/internal/envelope/metadata"
	"github.com/allisson/secrets/internal/errors"
	"github.com/allisson/secrets/internal/metrics"
)

// materialsManager is the narrow collaborator Client delegates encryption
// policy to. Satisfied by *materialsmanager.Manager.
type materialsManager interface {
	GetEncryptionMaterials(ctx context.Context, req materialsmanager.EncryptRequest) (*cryptoDomain.EncryptionMaterials, error)
	DecryptMaterials(ctx context.Context, req materialsmanager.DecryptRequest) (*cryptoDomain.DecryptionMaterials, error)
}

// Client runs the put/get pipeline: build materials, run the content
// strategy, encode/decode the envelope, and delegate to storage (§4.6).
type Client struct {
	storage           ObjectStorageClient
	materialsManager  materialsManager
	contentStrategies map[cryptoDomain.SuiteID]content.Strategy
	metrics           metrics.BusinessMetrics
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithMetrics overrides the business metrics sink (default: no-op).
func WithMetrics(m metrics.BusinessMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client wired to storage, a materials manager, and the
// closed set of content strategies the suite registry supports.
func NewClient(storage ObjectStorageClient, mm materialsManager, opts ...Option) *Client {
	c := &Client{
		storage:          storage,
		materialsManager: mm,
		contentStrategies: map[cryptoDomain.SuiteID]content.Strategy{
			cryptoDomain.SuiteAESGCM256:   content.NewAESGCMStrategy(cryptoService.NewAEADManager()),
			cryptoDomain.SuiteAESCBCPKCS5: content.NewLegacyCBCStrategy(),
			cryptoDomain.SuiteAESCTR:      content.NewLegacyCTRStrategy(),
		},
		metrics: metrics.NewNoOpBusinessMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const metricsDomain = "envelope"

// PutObject encrypts plaintext under the active suite, merges the resulting
// envelope into the request's metadata, and uploads ciphertext to storage.
func (c *Client) PutObject(ctx context.Context, req *PutObjectRequest, encCtx cryptoDomain.EncryptionContext, plaintext io.Reader) (resp *PutObjectResponse, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordOperation(ctx, metricsDomain, "put_object", status)
		c.metrics.RecordDuration(ctx, metricsDomain, "put_object", time.Since(start), status)
	}()

	materials, err := c.materialsManager.GetEncryptionMaterials(ctx, materialsmanager.EncryptRequest{
		EncryptionContext: encCtx,
	})
	if err != nil {
		return nil, err
	}
	defer materials.Zero()

	strategy := c.contentStrategies[materials.Suite.ID]
	if strategy == nil {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	ciphertext, iv, err := strategy.Encrypt(ctx, materials.PlaintextDataKey, plaintext)
	if err != nil {
		return nil, err
	}

	if len(materials.EncryptedDataKeys) == 0 {
		return nil, errors.Wrap(cryptoDomain.ErrConfiguration, "no encrypted data key produced")
	}
	edk := materials.EncryptedDataKeys[0]

	envelopeMeta := metadata.Encode(metadata.ObjectEnvelope{
		EDK:               edk,
		IV:                iv,
		EncryptionContext: materials.EncryptionContext,
		CEKAlg:            materials.Suite.ID,
		TagLengthBits:     materials.Suite.TagLength * 8,
		UnencryptedLength: -1,
	})

	mergedMeta := make(map[string]string, len(req.Metadata)+len(envelopeMeta))
	for k, v := range req.Metadata {
		mergedMeta[k] = v
	}
	for k, v := range envelopeMeta {
		mergedMeta[k] = v
	}

	storageReq := &PutObjectRequest{
		Bucket:      req.Bucket,
		Key:         req.Key,
		ContentType: req.ContentType,
		Metadata:    mergedMeta,
	}

	resp, err = c.storage.PutObject(ctx, storageReq, bytes.NewReader(ciphertext), int64(len(ciphertext)))
	return resp, err
}

// GetObject fetches an object, parses its envelope, unwraps the data key,
// and decrypts its body. Ranged GET is rejected for GCM-encrypted objects
// and permitted for legacy CTR (§4.6).
func (c *Client) GetObject(ctx context.Context, req *GetObjectRequest, encCtx cryptoDomain.EncryptionContext) (plaintext []byte, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordOperation(ctx, metricsDomain, "get_object", status)
		c.metrics.RecordDuration(ctx, metricsDomain, "get_object", time.Since(start), status)
	}()

	stored, err := c.storage.GetObject(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stored.Body.Close()

	env, err := metadata.Decode(stored.Metadata)
	if err != nil {
		return nil, err
	}

	if req.HasRange && env.CEKAlg == cryptoDomain.SuiteAESGCM256 {
		return nil, cryptoDomain.ErrRangeNotSupported
	}

	materials, err := c.materialsManager.DecryptMaterials(ctx, materialsmanager.DecryptRequest{
		Envelope:          env,
		EncryptionContext: encCtx,
		AllowLegacy:       req.AllowLegacy,
	})
	if err != nil {
		return nil, err
	}
	defer materials.Zero()

	strategy := c.contentStrategies[materials.Suite.ID]
	if strategy == nil {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	return strategy.Decrypt(ctx, materials.PlaintextDataKey, env.IV, materials.Suite.TagLength, stored.Body)
}
