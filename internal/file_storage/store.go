package filestorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"go.uber.org/zap"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// DocumentStore is the object storage capability the termo engine needs.
// Implementations must return ErrObjectNotFound (wrapped is fine) for missing keys.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func NewDocumentStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (DocumentStore, error) {
	switch cfg.Storage.DRIVER {
	case config.StorageDriverMinio, "":
		client, err := NewMinioClient(&cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return NewMinioStore(client, cfg.Storage.BUCKET, logger), nil
	case config.StorageDriverS3:
		return NewS3Store(ctx, &cfg.AWS, cfg.Storage.BUCKET, logger)
	case StorageDriverMemory:
		logger.Warn("Using in-memory document store, documents are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.DRIVER)
	}
}
