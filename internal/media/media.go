package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmptyImage   = errors.New("image file is empty")
	ErrNotAnImage   = errors.New("uploaded file is not an image")
	ErrUploadFailed = errors.New("image upload failed")
)

// Uploader stores image bytes under folder and returns the public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// Sniff checks that data looks like an image and returns its detected type.
func Sniff(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotAnImage, mt.String())
	}
	return mt, nil
}

func objectKey(folder string, mt *mimetype.MIME) string {
	name := uuid.NewString() + mt.Extension()
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
