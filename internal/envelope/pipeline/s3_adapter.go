package pipeline

import (
	"context"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/allisson/secrets/internal/config"
	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	"github.com/allisson/secrets/internal/errors"
)

// S3Client adapts github.com/aws/aws-sdk-go-v2/service/s3 to
// ObjectStorageClient. The SDK itself adds the x-amz-meta- wire prefix to
// PutObjectInput.Metadata entries and strips it from GetObjectOutput.Metadata
// entries; this adapter and everything above it only ever see the
// un-prefixed logical keys (§4.6.1).
type S3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client builds an S3 client from application configuration, mirroring
// the region/custom-endpoint/static-credentials shape of the corpus's S3
// adapter.
func NewS3Client(ctx context.Context, cfg *config.Config) (*S3Client, error) {
	var awsOpts []func(*awsconfig.LoadOptions) error
	awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.S3Region))

	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrIO, "load aws config: "+err.Error())
	}

	var s3Opts []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Client{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.S3Bucket,
	}, nil
}

// PutObject uploads body (already ciphertext) with the envelope fields
// merged into the object's user metadata.
func (c *S3Client) PutObject(ctx context.Context, req *PutObjectRequest, body io.Reader, size int64) (*PutObjectResponse, error) {
	bucket := req.Bucket
	if bucket == "" {
		bucket = c.bucket
	}

	wireMeta := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		wireMeta[k] = v
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(req.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
		Metadata:      wireMeta,
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}

	out, err := c.client.PutObject(ctx, input)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrIO, "s3 put object: "+err.Error())
	}

	resp := &PutObjectResponse{}
	if out.ETag != nil {
		resp.ETag = *out.ETag
	}
	return resp, nil
}

// GetObject fetches an object, optionally by byte range, returning its
// logical (un-prefixed) metadata and a streaming body.
func (c *S3Client) GetObject(ctx context.Context, req *GetObjectRequest) (*GetObjectResponse, error) {
	bucket := req.Bucket
	if bucket == "" {
		bucket = c.bucket
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(req.Key),
	}
	if req.HasRange {
		input.Range = aws.String(formatByteRange(req.RangeStart, req.RangeEnd))
	}

	out, err := c.client.GetObject(ctx, input)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrIO, "s3 get object: "+err.Error())
	}

	logicalMeta := make(map[string]string, len(out.Metadata))
	for k, v := range out.Metadata {
		logicalMeta[k] = v
	}

	contentLength := int64(0)
	if out.ContentLength != nil {
		contentLength = *out.ContentLength
	}

	return &GetObjectResponse{
		Metadata:      logicalMeta,
		ContentLength: contentLength,
		Body:          out.Body,
	}, nil
}

func formatByteRange(start, end int64) string {
	if end == 0 {
		return "bytes=" + strconv.FormatInt(start, 10) + "-"
	}
	return "bytes=" + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(end, 10)
}
