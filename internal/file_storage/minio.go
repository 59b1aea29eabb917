package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

func NewMinioClient(cfg *config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

type MinioStore struct {
	client *minio.Client
	bucket string
	logger *zap.SugaredLogger

	bucketMu    sync.Mutex
	bucketReady bool
}

func NewMinioStore(client *minio.Client, bucket string, logger *zap.SugaredLogger) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, logger: logger}
}

// Only success is remembered, a failed check is retried by the next caller.
func (ms *MinioStore) createBucketIfNotExists(ctx context.Context) error {
	ms.bucketMu.Lock()
	defer ms.bucketMu.Unlock()

	if ms.bucketReady {
		return nil
	}

	exists, err := ms.client.BucketExists(ctx, ms.bucket)
	if err != nil {
		return err
	}

	if !exists {
		if err := ms.client.MakeBucket(ctx, ms.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		ms.logger.Infof("Created bucket %s", ms.bucket)
	}

	ms.bucketReady = true
	return nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket" || code == "NotFound"
}

func (ms *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ms.logger.Debugf("Put object %s (%d bytes) to bucket %s", key, len(data), ms.bucket)

	if err := ms.createBucketIfNotExists(ctx); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	_, err := ms.client.PutObject(ctx, ms.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

func (ms *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.logger.Debugf("Get object %s from bucket %s", key, ms.bucket)

	obj, err := ms.client.GetObject(ctx, ms.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	// minio reports a missing key on first read, not on GetObject
	data, err := io.ReadAll(obj)
	if err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, nil
}

func (ms *MinioStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := ms.client.StatObject(ctx, ms.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return ObjectInfo{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

func (ms *MinioStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := ms.client.PresignedGetObject(ctx, ms.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}

	return u.String(), nil
}
