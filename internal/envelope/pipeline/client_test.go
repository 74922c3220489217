package pipeline

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secrets/internal/crypto/domain"
	cryptoService "github.com/allisson/secrets/internal/crypto/service"
	"github.com/allisson/secrets/internal/envelope/keyring"
	"github.com/allisson/secrets/internal/envelope/materialsmanager"
)

type memoryObject struct {
	metadata map[string]string
	body     []byte
}

type fakeStorage struct {
	objects map[string]memoryObject
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]memoryObject{}}
}

func (f *fakeStorage) PutObject(_ context.Context, req *PutObjectRequest, body io.Reader, _ int64) (*PutObjectResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.objects[req.Key] = memoryObject{metadata: req.Metadata, body: data}
	return &PutObjectResponse{ETag: "etag-" + req.Key}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, req *GetObjectRequest) (*GetObjectResponse, error) {
	obj, ok := f.objects[req.Key]
	if !ok {
		return nil, cryptoDomain.ErrMissingEnvelope
	}
	return &GetObjectResponse{
		Metadata:      obj.metadata,
		ContentLength: int64(len(obj.body)),
		Body:          io.NopCloser(bytes.NewReader(obj.body)),
	}, nil
}

func testWrappingKey32(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	kr := keyring.NewAESKeyring(testWrappingKey32(t), cryptoService.NewAEADManager())
	mm := materialsmanager.New(kr)
	return NewClient(newFakeStorage(), mm)
}

func TestClient_PutObjectGetObject_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	encCtx := cryptoDomain.EncryptionContext{"tenant": "acme"}

	putReq := &PutObjectRequest{Bucket: "bkt", Key: "obj-1", ContentType: "text/plain"}
	_, err := client.PutObject(context.Background(), putReq, encCtx, bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)

	getReq := &GetObjectRequest{Bucket: "bkt", Key: "obj-1"}
	plaintext, err := client.GetObject(context.Background(), getReq, encCtx)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), plaintext)
}

func TestClient_GetObject_WrongContextFails(t *testing.T) {
	client := newTestClient(t)
	putReq := &PutObjectRequest{Key: "obj-2"}
	_, err := client.PutObject(context.Background(), putReq, cryptoDomain.EncryptionContext{"tenant": "acme"}, bytes.NewReader([]byte("secret")))
	require.NoError(t, err)

	getReq := &GetObjectRequest{Key: "obj-2"}
	_, err = client.GetObject(context.Background(), getReq, cryptoDomain.EncryptionContext{"tenant": "other"})
	assert.ErrorIs(t, err, cryptoDomain.ErrTamperedEnvelope)
}

func TestClient_GetObject_RangedGCMRejected(t *testing.T) {
	client := newTestClient(t)
	putReq := &PutObjectRequest{Key: "obj-3"}
	_, err := client.PutObject(context.Background(), putReq, cryptoDomain.EncryptionContext{}, bytes.NewReader([]byte("ranged body")))
	require.NoError(t, err)

	getReq := &GetObjectRequest{Key: "obj-3", HasRange: true, RangeStart: 0, RangeEnd: 3}
	_, err = client.GetObject(context.Background(), getReq, cryptoDomain.EncryptionContext{})
	assert.ErrorIs(t, err, cryptoDomain.ErrRangeNotSupported)
}

func TestClient_GetObject_UnknownObjectFails(t *testing.T) {
	client := newTestClient(t)
	_, err := client.GetObject(context.Background(), &GetObjectRequest{Key: "missing"}, cryptoDomain.EncryptionContext{})
	assert.Error(t, err)
}

func TestClient_PutObject_MetadataContainsExpectedFields(t *testing.T) {
	storage := newFakeStorage()
	kr := keyring.NewAESKeyring(testWrappingKey32(t), cryptoService.NewAEADManager())
	mm := materialsmanager.New(kr)
	client := NewClient(storage, mm)

	_, err := client.PutObject(context.Background(), &PutObjectRequest{Key: "obj-4"}, cryptoDomain.EncryptionContext{}, bytes.NewReader([]byte("hello")))
	require.NoError(t, err)

	obj := storage.objects["obj-4"]
	assert.Equal(t, "AES/GCM", obj.metadata["x-amz-wrap-alg"])
	assert.Equal(t, string(cryptoDomain.SuiteAESGCM256), obj.metadata["x-amz-cek-alg"])
	assert.Equal(t, "128", obj.metadata["x-amz-tag-len"])
	assert.Equal(t, "{}", obj.metadata["x-amz-matdesc"])
}
