package mediastore

import (
	"context"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/panotour/core/internal/pkg/apperr"
)

var ErrImageType = apperr.New(apperr.InvalidArgument, "Only .png, .jpg, .jpeg and .gif images are accepted")

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// ImageExt returns the lowercased extension of name when it is an accepted
// image type.
func ImageExt(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := imageExtensions[ext]
	return ext, ok
}

// PutImage stores an uploaded image under prefix with a random name.
func PutImage(ctx context.Context, store Store, prefix string, fh *multipart.FileHeader) (string, error) {
	ext, ok := ImageExt(fh.Filename)
	if !ok {
		return "", ErrImageType
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return store.Put(ctx, path.Join(prefix, uuid.NewString()+ext), f, fh.Size, contentType)
}
