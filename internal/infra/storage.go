// README: Object storage for uploaded files (Firebase Storage bucket or in-memory).
package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"kargo/internal/types"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// BucketStore writes objects to a Firebase Storage (GCS) bucket and hands out
// token-based download URLs the way the Firebase client SDK does.
type BucketStore struct {
	bucket *storage.BucketHandle
	name   string
}

func NewBucketStore(bucket *storage.BucketHandle, name string) *BucketStore {
	return &BucketStore{bucket: bucket, name: name}
}

func (s *BucketStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	// Cancelling before Close discards a partial object instead of finalizing it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	token := uuid.NewString()
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}
	src := &sourceReader{r: r}
	if _, err := io.Copy(w, src); err != nil {
		cancel()
		_ = w.Close()
		if src.err != nil {
			return "", fmt.Errorf("storage upload: read input: %w", src.err)
		}
		return "", types.Network("storage upload", err)
	}
	if err := w.Close(); err != nil {
		return "", types.Network("storage upload", err)
	}
	return s.downloadURL(path, token), nil
}

// sourceReader records read failures so they are not reported as storage failures.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

func (s *BucketStore) downloadURL(path, token string) string {
	u := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", s.name, url.PathEscape(path))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}

// MemoryBlobStore keeps objects in memory; URLs use the mem:// scheme.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryBlobStore) Upload(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[path] = memoryObject{contentType: contentType, data: buf.Bytes()}
	s.mu.Unlock()
	return "mem://" + path, nil
}

// Object returns the stored bytes and content type.
func (s *MemoryBlobStore) Object(path string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[path]
	return o.data, o.contentType, ok
}
