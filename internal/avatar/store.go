package avatar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const urlExpiry = 7 * 24 * time.Hour

// Store uploads avatar images and returns a URL the chat core can
// persist on the user. The core never touches the object host beyond
// this interface.
type Store interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}

// MinioStore keeps avatars in a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// Upload stores the image under a fresh key and returns a presigned
// GET URL.
func (m *MinioStore) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	key := uuid.NewString()

	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return url.String(), nil
}
