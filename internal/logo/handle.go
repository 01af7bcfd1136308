// Package logo owns the brand logo upload flow and the lifetime of its display reference.
package logo

import (
	"context"
	"io"
	"sync"

	"github.com/rewardscraft/studio/internal/models"
)

// BlobStore holds logo bytes and resolves them to a display URL.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Handle is the ownership token for one stored logo and its display URL.
// Release deletes the blob; it runs at most once no matter how many owners call it.
type Handle struct {
	key   string
	url   string
	file  models.LogoFile
	store BlobStore

	once     sync.Once
	released bool
	mu       sync.Mutex
	err      error
}

func newHandle(store BlobStore, key, url string, file models.LogoFile) *Handle {
	return &Handle{key: key, url: url, file: file, store: store}
}

// Key is the blob store key.
func (h *Handle) Key() string { return h.key }

// URL is the display reference.
func (h *Handle) URL() string { return h.url }

// File describes the uploaded file.
func (h *Handle) File() models.LogoFile { return h.file }

// Release frees the blob behind the handle. Later calls return the first call's result.
func (h *Handle) Release(ctx context.Context) error {
	h.once.Do(func() {
		err := h.store.Delete(ctx, h.key)
		h.mu.Lock()
		h.released = true
		h.err = err
		h.mu.Unlock()
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
