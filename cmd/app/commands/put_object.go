package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/secrets/internal/app"
	"github.com/allisson/secrets/internal/config"
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/envelope/pipeline"
)

// RunPutObject encrypts the contents of inputPath (or stdin, when empty) under
// the active suite and uploads the resulting ciphertext plus envelope metadata
// to bucket/key. contextPairs are "name=value" encryption context entries.
func RunPutObject(ctx context.Context, bucket, key, contentType, inputPath string, contextPairs []string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	encCtx, err := parseEncryptionContext(contextPairs)
	if err != nil {
		return err
	}

	client, err := container.PipelineClient()
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline client: %w", err)
	}

	body, err := openInput(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", cryptoDomain.ErrIO, err)
	}
	defer body.Close()

	resp, err := client.PutObject(ctx, &pipeline.PutObjectRequest{
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType,
	}, encCtx, body)
	if err != nil {
		return err
	}

	logger.Info("object encrypted and uploaded",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.String("etag", resp.ETag),
	)
	return nil
}

// openInput opens path for reading, or stdin when path is empty.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// parseEncryptionContext parses "name=value" pairs into an encryption context map.
func parseEncryptionContext(pairs []string) (cryptoDomain.EncryptionContext, error) {
	ctx := cryptoDomain.EncryptionContext{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: invalid context entry %q (expected name=value)", cryptoDomain.ErrConfiguration, pair)
		}
		ctx[name] = value
	}
	return ctx, nil
}
