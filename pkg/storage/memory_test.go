package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoKey(t *testing.T) {
	assert.Equal(t, "sess/blob.png", LogoKey("sess", "blob", "My Logo.PNG"))
	assert.Equal(t, "sess/blob", LogoKey("sess", "blob", "noext"))
	assert.Equal(t, "sess/blob.svg", LogoKey("sess", "blob", "../../etc/x.svg"))
}

func TestMemory_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("/logos/", 0)

	url, err := m.Put(ctx, "s/b.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "/logos/s/b.png", url)
	assert.Equal(t, 1, m.Len())

	rc, ct, err := m.Open(ctx, "s/b.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", ct)

	require.NoError(t, m.Delete(ctx, "s/b.png"))
	require.NoError(t, m.Delete(ctx, "s/b.png"))
	_, _, err = m.Open(ctx, "s/b.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_MaxBytes(t *testing.T) {
	m := NewMemory("/logos", 4)
	_, err := m.Put(context.Background(), "k", "image/png", strings.NewReader("12345"), 5)
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())

	_, err = m.Put(context.Background(), "k", "image/png", strings.NewReader("1234"), 4)
	assert.NoError(t, err)
}
