// Package pipeline orchestrates the put/get object flow: build materials,
// run the content strategy, encode/decode the envelope into object
// metadata, and delegate the ciphertext transfer to an ObjectStorageClient
// (§4.6).
package pipeline

import (
	"context"
	"io"
)

// PutObjectRequest names the destination object and carries any caller
// metadata that should ride alongside the encryption envelope fields.
type PutObjectRequest struct {
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
}

// PutObjectResponse reports what the underlying storage accepted.
type PutObjectResponse struct {
	ETag string
}

// GetObjectRequest names the object to fetch. Range is optional; GCM content
// rejects a non-empty range (§4.6), legacy CTR permits it.
type GetObjectRequest struct {
	Bucket      string
	Key         string
	RangeStart  int64
	RangeEnd    int64 // 0 means "to end"; the range is only used when HasRange is true
	HasRange    bool
	AllowLegacy bool
}

// GetObjectResponse carries the metadata and ciphertext stream fetched from
// storage, before envelope parsing or content decryption.
type GetObjectResponse struct {
	Metadata      map[string]string
	ContentLength int64
	Body          io.ReadCloser
}

// ObjectStorageClient is the pipeline's narrow storage dependency (§4.6.1).
type ObjectStorageClient interface {
	PutObject(ctx context.Context, req *PutObjectRequest, body io.Reader, size int64) (*PutObjectResponse, error)
	GetObject(ctx context.Context, req *GetObjectRequest) (*GetObjectResponse, error)
}
