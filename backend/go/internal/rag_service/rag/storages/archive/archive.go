// Package archive keeps a copy of every uploaded source file in object storage.
package archive

import (
	"PDFChat/backend/go/internal/config"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"PDFChat/backend/go/internal/database/minio"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
)

// Archive stores an uploaded file and returns the key it was stored under.
type Archive interface {
	Store(ctx context.Context, path string) (string, error)
}

// Nop discards uploads.
type Nop struct{}

func (Nop) Store(context.Context, string) (string, error) { return "", nil }

// objectPutter is the subset of *miniogo.Client used by MinioArchive.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
}

// MinioArchive writes uploads to a MinIO bucket under "<uuid>/<file name>".
type MinioArchive struct {
	client objectPutter
	bucket string
}

// NewMinioArchive wraps client.
func NewMinioArchive(client objectPutter, bucket string) *MinioArchive {
	return &MinioArchive{client: client, bucket: bucket}
}

// Store uploads the file at path.
func (a *MinioArchive) Store(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for archiving: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	key := uuid.NewString() + "/" + filepath.Base(path)
	_, err = a.client.PutObject(ctx, a.bucket, key, f, info.Size(), miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return key, nil
}

// New returns the archive selected by cfg.Archive.Backend.
func New(ctx context.Context, cfg *config.AppConfig) (Archive, error) {
	switch cfg.Archive.Backend {
	case "":
		return Nop{}, nil
	case "minio":
		c, err := minio.GetClient(ctx, &cfg.Databases.MinIO)
		if err != nil {
			return nil, err
		}
		return NewMinioArchive(c, cfg.Databases.MinIO.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported archive backend: %s", cfg.Archive.Backend)
	}
}
