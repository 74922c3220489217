package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/secrets/internal/app"
	"github.com/allisson/secrets/internal/config"
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/envelope/pipeline"
)

// RunGetObject downloads bucket/key, decrypts it, and writes the plaintext to
// outputPath (or stdout, when empty). allowLegacy permits decrypting objects
// still using the v1, non-authenticated envelope.
func RunGetObject(ctx context.Context, bucket, key, outputPath string, contextPairs []string, allowLegacy bool) error {
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

	plaintext, err := client.GetObject(ctx, &pipeline.GetObjectRequest{
		Bucket:      bucket,
		Key:         key,
		AllowLegacy: allowLegacy,
	}, encCtx)
	if err != nil {
		return err
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", cryptoDomain.ErrIO, err)
	}
	defer out.Close()

	if _, err := out.Write(plaintext); err != nil {
		return fmt.Errorf("%w: %v", cryptoDomain.ErrIO, err)
	}

	logger.Info("object decrypted", slog.String("bucket", bucket), slog.String("key", key))
	return nil
}

// openOutput opens path for writing, truncating it, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
