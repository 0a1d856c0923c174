package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/geocoder89/devevent/internal/observability"
)

const DefaultLocalDir = "./uploads"

// Local writes images under Dir; the router serves Dir at BaseURL.
type Local struct {
	Dir     string
	BaseURL string
	prom    *observability.Prom
}

func NewLocal(dir, baseURL string, prom *observability.Prom) *Local {
	if dir == "" {
		dir = DefaultLocalDir
	}
	return &Local{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		prom:    prom,
	}
}

func (l *Local) Upload(ctx context.Context, data []byte, folder string) (url string, err error) {
	start := time.Now()
	defer func() { l.prom.ObserveUpload("local", time.Since(start), err) }()

	mt, err := Sniff(data)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	key := objectKey(folder, mt)
	path := filepath.Join(l.Dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: create dir: %v", ErrUploadFailed, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write file: %v", ErrUploadFailed, err)
	}

	return l.BaseURL + "/" + key, nil
}
