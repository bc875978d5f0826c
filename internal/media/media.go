// Package media stores uploaded item images and removes them again when the
// owning items are deleted.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/pharmastudy/internal/apperr"
	"github.com/mrlokans/pharmastudy/internal/entities"
	"github.com/mrlokans/pharmastudy/internal/utils"
)

// Folder prefixes every stored object key.
const Folder = "pharmastudy/items"

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var (
	ErrNoFile        = apperr.Validation("No image file provided")
	ErrFileType      = apperr.Validation("Only image files are allowed (jpg, jpeg, png, gif, webp)")
	ErrNotImage      = apperr.Validation("Uploaded file is not an image")
	ErrUnmanagedURL  = errors.New("url is not managed by this store")
	errTraversingKey = errors.New("object key escapes the media folder")
)

// Store persists image bytes under a key and hands back a public URL.
type Store interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ContentTypeFor returns the MIME type for an allowed image extension.
func ContentTypeFor(filename string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// Uploader validates incoming images before handing them to a Store.
type Uploader struct {
	store    Store
	maxBytes int64
}

func NewUploader(store Store, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload checks the extension, size and content of an image and stores it.
// The public id is the object key without its extension.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (entities.UploadResult, error) {
	if r == nil || filename == "" {
		return entities.UploadResult{}, ErrNoFile
	}

	contentType, ok := ContentTypeFor(filename)
	if !ok {
		return entities.UploadResult{}, ErrFileType
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return entities.UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return entities.UploadResult{}, ErrNoFile
	}
	if int64(len(data)) > u.maxBytes {
		return entities.UploadResult{}, apperr.Validation("Image exceeds the %d MB limit", u.maxBytes>>20)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return entities.UploadResult{}, ErrNotImage
	}

	key := ObjectKey(filename)
	url, err := u.store.Save(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return entities.UploadResult{}, fmt.Errorf("save image: %w", err)
	}

	return entities.UploadResult{
		ImageURL: url,
		PublicID: strings.TrimSuffix(key, path.Ext(key)),
	}, nil
}

// ObjectKey builds a unique key such as "pharmastudy/items/aspirin-1a2b3c4d.png".
func ObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := utils.SanitizeFilename(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	return fmt.Sprintf("%s/%s-%s%s", Folder, base, uuid.NewString()[:8], ext)
}

// keyFromURL strips base from url and checks the remainder is a key this
// package could have written.
func keyFromURL(url, base string) (string, error) {
	base = strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", ErrUnmanagedURL
	}
	key := strings.TrimPrefix(url, base)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if path.Clean(key) != key || !strings.HasPrefix(key, Folder+"/") {
		return "", errTraversingKey
	}
	return key, nil
}
