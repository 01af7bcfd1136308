package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

// ErrNotFound is returned when a blob key does not exist.
var ErrNotFound = errors.New("blob not found")

// LogoKey returns the blob key for a logo: {session_id}/{blob_id}{ext}.
func LogoKey(sessionID, blobID, filename string) string {
	return path.Join(sessionID, blobID+strings.ToLower(path.Ext(path.Base(filename))))
}

// Memory keeps blobs in process memory and serves them under a local path. It is the default
// logo store: display references live exactly as long as the process or until deleted.
type Memory struct {
	mu       sync.RWMutex
	blobs    map[string]memoryBlob
	basePath string
	maxBytes int64
}

type memoryBlob struct {
	data        []byte
	contentType string
}

// NewMemory creates an in-memory store whose display URLs are basePath/{key}.
// maxBytes bounds a single blob; 0 means unbounded.
func NewMemory(basePath string, maxBytes int64) *Memory {
	return &Memory{
		blobs:    make(map[string]memoryBlob),
		basePath: strings.TrimSuffix(basePath, "/"),
		maxBytes: maxBytes,
	}
}

// Put stores body under key and returns its local display URL.
func (m *Memory) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	r := body
	if m.maxBytes > 0 {
		r = io.LimitReader(body, m.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	if m.maxBytes > 0 && int64(len(data)) > m.maxBytes {
		return "", fmt.Errorf("blob exceeds %d bytes", m.maxBytes)
	}
	m.mu.Lock()
	m.blobs[key] = memoryBlob{data: data, contentType: contentType}
	m.mu.Unlock()
	return m.basePath + "/" + key, nil
}

// Delete drops the blob. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

// Open returns a reader over the stored blob.
func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	b, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

// Len returns the number of live blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
