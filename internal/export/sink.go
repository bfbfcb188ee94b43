package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/senate-trades/internal/gcsuploader"
)

// Sink stores a rendered report and returns where it landed.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileSink writes reports under Dir.
type FileSink struct {
	Dir string
}

// Put writes data to Dir/name.
func (s FileSink) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	p := filepath.Join(s.Dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %q: %w", p, err)
	}
	return p, nil
}

// ObjectUploader is the GCS write surface used by GCSSink.
type ObjectUploader interface {
	Upload(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error)
}

var _ ObjectUploader = (*gcsuploader.Client)(nil)

// GCSSink uploads reports to Bucket under Prefix.
type GCSSink struct {
	Uploader ObjectUploader
	Bucket   string
	Prefix   string
}

// Put uploads data and returns its gs:// URI.
func (s GCSSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := path.Join(s.Prefix, name)
	uri, err := s.Uploader.Upload(ctx, s.Bucket, object, contentType, data)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", gcsuploader.URI(s.Bucket, object), err)
	}
	return uri, nil
}

// FileName builds a collision-free report name such as
// top_activity-20240131-<uuid>.csv.
func FileName(kind string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.%s", kind, now.UTC().Format("20060102"), uuid.NewString(), f.Extension())
}
