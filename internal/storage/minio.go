package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/gatehouse/internal/config"
)

type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// PutObject uploads data under the given key.
func (s *MinIOStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// GetObject retrieves data by key.
func (s *MinIOStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// PersonPhotoKey is the canonical object key for a subject's enrollment
// photo, addressed by terminal PIN.
func PersonPhotoKey(pin string) string {
	return fmt.Sprintf("people/user_%s_face.jpg", pin)
}

// PersonThumbKey is the 80x80 thumbnail key for a subject's photo.
func PersonThumbKey(pin string) string {
	return fmt.Sprintf("people/user_%s_face_thumb.jpg", pin)
}

// SavePersonPhoto stores the original enrollment photo and an 80x80 cover
// thumbnail. Returns the key of the original. A photo that fails to decode is
// stored as-is with no thumbnail; terminals occasionally send images the
// codecs reject and the original is still worth keeping for the audit trail.
func (s *MinIOStore) SavePersonPhoto(ctx context.Context, pin string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("save person photo: empty image")
	}

	key := PersonPhotoKey(pin)
	if err := s.PutObject(ctx, key, data, "image/jpeg"); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return key, nil
	}

	thumb := imaging.Fill(img, 80, 80, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return key, nil
	}
	if err := s.PutObject(ctx, PersonThumbKey(pin), buf.Bytes(), "image/jpeg"); err != nil {
		return key, nil
	}

	return key, nil
}

// Ping checks MinIO connectivity.
func (s *MinIOStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
