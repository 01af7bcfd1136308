package logo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/pkg/response"
	"github.com/rewardscraft/studio/pkg/storage"
)

// BlobOpener reads a stored logo back.
type BlobOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// ServeBlob handles GET /logos/*key. Released logos are gone and answer 404.
func ServeBlob(store BlobOpener, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" || strings.Contains(key, "..") {
			response.NotFound(c, "logo not found")
			return
		}
		rc, contentType, err := store.Open(c.Request.Context(), key)
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(c, "logo not found")
			return
		}
		if err != nil {
			logger.Error("open logo", zap.String("key", key), zap.Error(err))
			response.Internal(c, "failed to read logo")
			return
		}
		defer rc.Close()

		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Header("Cache-Control", "private, max-age=300")
		c.Header("X-Content-Type-Options", "nosniff")
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}
