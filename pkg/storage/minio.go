package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"crazzzytube/constant"
)

type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

var _ BlobStore = (*MinIOStore)(nil)

func NewMinIOStore(client *minio.Client, bucket, publicURL string) *MinIOStore {
	return &MinIOStore{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}
}

func (s *MinIOStore) Upload(ctx context.Context, key string, filePath string) (UploadResult, error) {
	info, err := s.client.FPutObject(ctx, s.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: ContentType(key),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("put %s: %w", key, err)
	}

	zerolog.Ctx(ctx).Debug().Str("key", info.Key).Int64("size", info.Size).Msg("object uploaded")
	return UploadResult{
		URL:      s.URL(info.Key),
		PublicID: info.Key,
	}, nil
}

func (s *MinIOStore) Delete(ctx context.Context, publicID string, resourceType constant.ResourceType) error {
	if publicID == "" {
		return errors.New("empty public id")
	}

	err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", resourceType, publicID, err)
	}

	zerolog.Ctx(ctx).Info().Str("key", publicID).Str("resource_type", string(resourceType)).Msg("object removed")
	return nil
}

// RemovePrefix deletes every object under prefix and returns how many were removed.
func (s *MinIOStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("refusing to remove an empty prefix")
	}

	var found []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		found = append(found, obj)
	}
	if len(found) == 0 {
		return 0, nil
	}

	objects := make(chan minio.ObjectInfo, len(found))
	for _, obj := range found {
		objects <- obj
	}
	close(objects)

	var errs []error
	for result := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", result.ObjectName, result.Err))
	}

	return len(found) - len(errs), errors.Join(errs...)
}

// EnsureBucket creates the bucket when missing.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStore) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}
