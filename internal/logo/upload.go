package logo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/models"
	"github.com/rewardscraft/studio/pkg/storage"
	"github.com/rewardscraft/studio/pkg/utils"
)

// Guidance shown next to the drop zone. None of it is enforced.
const (
	AdvisoryMaxBytes  = 5 * 1024 * 1024
	AdvisoryMinPixels = 200
	sniffLen          = 3072
)

// Candidate is a file offered through drop or the file picker.
type Candidate struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromMultipart adapts an uploaded form file.
func FromMultipart(fh *multipart.FileHeader) Candidate {
	return Candidate{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ChangeFunc receives the new logo handle, or nil when the logo was removed.
type ChangeFunc func(ctx context.Context, h *Handle)

// Uploader is the logo drop zone: drag hover state, first-file-only selection, removal.
// It is not safe for concurrent use; the owning session serializes calls.
type Uploader struct {
	store     BlobStore
	keyPrefix string
	onChange  ChangeFunc
	logger    *zap.Logger

	dragOver         bool
	pickerGeneration int
}

// NewUploader creates a drop zone that stores blobs under keyPrefix and reports changes to onChange.
func NewUploader(store BlobStore, keyPrefix string, onChange ChangeFunc, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{store: store, keyPrefix: keyPrefix, onChange: onChange, logger: logger}
}

// DragOver marks the drop zone as hovered.
func (u *Uploader) DragOver() { u.dragOver = true }

// DragLeave clears the hover flag.
func (u *Uploader) DragLeave() { u.dragOver = false }

// DragHover reports whether a drag is hovering over the drop zone.
func (u *Uploader) DragHover() bool { return u.dragOver }

// PickerGeneration changes every time the file picker is reset.
func (u *Uploader) PickerGeneration() int { return u.pickerGeneration }

// Drop ends a drag and selects the first dropped file. Additional files are ignored.
func (u *Uploader) Drop(ctx context.Context, files []Candidate) (bool, error) {
	u.dragOver = false
	return u.selectFirst(ctx, files)
}

// FileInputChange selects the first file chosen through the file picker.
func (u *Uploader) FileInputChange(ctx context.Context, files []Candidate) (bool, error) {
	return u.selectFirst(ctx, files)
}

func (u *Uploader) selectFirst(ctx context.Context, files []Candidate) (bool, error) {
	if len(files) == 0 {
		return false, nil
	}
	if len(files) > 1 {
		u.logger.Debug("extra logo files discarded", zap.Int("count", len(files)-1))
	}
	return u.SelectFile(ctx, files[0])
}

// SelectFile stores c and emits a new handle when c is an image. Anything else is ignored
// without error; the returned bool reports whether the file was accepted.
func (u *Uploader) SelectFile(ctx context.Context, c Candidate) (bool, error) {
	declared := mediaType(c.ContentType)
	if declared != "" && declared != "application/octet-stream" && !isImage(declared) {
		u.logger.Debug("logo rejected", zap.String("filename", c.Name), zap.String("content_type", declared))
		return false, nil
	}
	if c.Open == nil {
		return false, nil
	}
	rc, err := c.Open()
	if err != nil {
		return false, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, sniffLen)
	contentType := declared
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := br.Peek(sniffLen)
		contentType = mediaType(mimetype.Detect(head).String())
	}
	if !isImage(contentType) {
		u.logger.Debug("logo rejected after sniffing", zap.String("filename", c.Name), zap.String("content_type", contentType))
		return false, nil
	}

	digest := utils.NewDigest()
	key := storage.LogoKey(u.keyPrefix, uuid.New().String(), c.Name)
	url, err := u.store.Put(ctx, key, contentType, io.TeeReader(br, digest), c.Size)
	if err != nil {
		return false, fmt.Errorf("store logo: %w", err)
	}

	h := newHandle(u.store, key, url, models.LogoFile{
		Name:        c.Name,
		ContentType: contentType,
		Size:        c.Size,
		Digest:      digest.String(),
	})
	u.logger.Info("logo stored", zap.String("key", key), zap.Int64("size", c.Size), zap.String("content_type", contentType))
	if u.onChange != nil {
		u.onChange(ctx, h)
	}
	return true, nil
}

// Remove releases current, clears the logo upstream and resets the file picker so the same
// file can be chosen again.
func (u *Uploader) Remove(ctx context.Context, current *Handle) error {
	var err error
	if current != nil {
		err = current.Release(ctx)
	}
	if u.onChange != nil {
		u.onChange(ctx, nil)
	}
	u.pickerGeneration++
	if err != nil {
		return fmt.Errorf("release logo: %w", err)
	}
	return nil
}

func mediaType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func isImage(ct string) bool {
	return strings.HasPrefix(ct, "image/")
}
