package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/allisson/secrets/internal/app"
	"github.com/allisson/secrets/internal/config"
	"github.com/allisson/secrets/internal/envelope/metadata"
	"github.com/allisson/secrets/internal/envelope/pipeline"
)

// RunDescribeObject fetches bucket/key's metadata and prints its decoded
// envelope (wrap algorithm, content suite, tag length, encryption context)
// without unwrapping the data key or decrypting the body. Useful for
// inspecting which keyring/suite produced an object.
func RunDescribeObject(ctx context.Context, bucket, key string, w io.Writer) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	storage, err := container.StorageClient()
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	stored, err := storage.GetObject(ctx, &pipeline.GetObjectRequest{Bucket: bucket, Key: key})
	if err != nil {
		return err
	}
	defer stored.Body.Close()

	env, err := metadata.Decode(stored.Metadata)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "bucket:        %s\n", bucket)
	fmt.Fprintf(w, "key:           %s\n", key)
	fmt.Fprintf(w, "legacy:        %t\n", env.IsLegacy)
	fmt.Fprintf(w, "wrap-alg:      %s\n", env.EDK.KeyProviderID)
	fmt.Fprintf(w, "cek-alg:       %s\n", env.CEKAlg)
	fmt.Fprintf(w, "tag-len-bits:  %d\n", env.TagLengthBits)
	fmt.Fprintf(w, "context:       %s\n", env.EncryptionContext.Canonical())
	return nil
}
