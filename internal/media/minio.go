package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"shoply/internal/config"
	"shoply/internal/domain"
)

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MinioStore implements Store on top of a MinIO/S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	folder    string
	publicURL string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(cfg config.MediaConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media store client: %w", err)
	}

	if err := ensureBucket(context.Background(), client, cfg.Bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure media bucket: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		folder:    cfg.Folder,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores the image under a freshly generated key and returns the ref.
func (s *MinioStore) Upload(ctx context.Context, in UploadInput) (domain.ImageRef, error) {
	if in.Reader == nil {
		return domain.ImageRef{}, &UploadError{Err: fmt.Errorf("nil reader")}
	}

	folder := in.Folder
	if folder == "" {
		folder = s.folder
	}
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), extByContentType[in.ContentType])

	_, err := s.client.PutObject(ctx, s.bucket, key, in.Reader, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return domain.ImageRef{}, &UploadError{Err: err}
	}

	return domain.ImageRef{
		RemoteID: key,
		URL:      fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key),
	}, nil
}

// Destroy removes the object. A missing object is treated as success: the
// catalog reference is the authority, and a vanished remote object means the
// two sides already agree.
func (s *MinioStore) Destroy(ctx context.Context, remoteID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, remoteID, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return nil
	}

	return &DeletionError{RemoteID: remoteID, Err: err}
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
