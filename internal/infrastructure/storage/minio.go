package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/clipforge/clipforge/pkg/config"
)

// ClipStorage keeps rendered clips and their subtitle sidecars in
// object storage so the dashboard can fetch them without touching the
// worker's filesystem.
type ClipStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewClipStorage creates the storage client and ensures the bucket
// exists
func NewClipStorage(cfg *config.StorageConfig) (*ClipStorage, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &ClipStorage{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}

	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return s, nil
}

func (s *ClipStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// clipObjectName namespaces stored files per job
func clipObjectName(jobID, fileName string) string {
	return fmt.Sprintf("jobs/%s/%s", jobID, fileName)
}

// UploadClipFile pushes a rendered file from disk and returns the
// object name
func (s *ClipStorage) UploadClipFile(ctx context.Context, jobID, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open clip file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat clip file: %w", err)
	}

	objectName := clipObjectName(jobID, filepath.Base(localPath))
	contentType := "video/mp4"
	if filepath.Ext(localPath) == ".ass" {
		contentType = "text/plain"
	}

	if _, err := s.client.PutObject(ctx, s.bucket, objectName, f, stat.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload clip: %w", err)
	}
	return objectName, nil
}

// UploadText stores a small text artifact such as a subtitle file
func (s *ClipStorage) UploadText(ctx context.Context, jobID, fileName, content string) (string, error) {
	objectName := clipObjectName(jobID, fileName)
	reader := bytes.NewReader([]byte(content))
	if _, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain",
	}); err != nil {
		return "", fmt.Errorf("failed to upload text: %w", err)
	}
	return objectName, nil
}

// GetFileURL returns a presigned download URL for a stored object
func (s *ClipStorage) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	// Swap in the public endpoint when MinIO is fronted by a proxy
	if s.publicURL != "" {
		urlStr := url.String()
		prefixLen := len(url.Scheme) + 3 + len(url.Host)
		if prefixLen < len(urlStr) {
			return s.publicURL + urlStr[prefixLen:], nil
		}
	}
	return url.String(), nil
}

// ListJobFiles lists stored artifacts for a job
func (s *ClipStorage) ListJobFiles(ctx context.Context, jobID string) ([]string, error) {
	var files []string
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    clipObjectName(jobID, ""),
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}
	return files, nil
}
