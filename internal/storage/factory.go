package storage

import (
	"context"
	"fmt"

	"github.com/commity/backupcheck/internal/config"
)

// NewStorage creates a storage gateway based on configuration.
//
// The gateway is used as-is, without a retry wrapper: the probe must
// surface transient backend errors immediately so the monitoring
// supervisor sees them on this run.
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	var store Storage
	var err error

	switch cfg.StorageProvider {
	case "s3":
		s3Config := S3Config{
			Bucket:       cfg.BucketName,
			Profile:      cfg.AWSProfile,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3Endpoint != "", // Use path style for custom endpoints
		}
		store, err = NewS3Storage(ctx, s3Config)

	case "gcs":
		gcsConfig := GCSConfig{
			Bucket:          cfg.BucketName,
			CredentialsFile: cfg.GCSCredentialsFile,
		}
		store, err = NewGCSStorage(ctx, gcsConfig)

	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.StorageProvider, err)
	}

	return store, nil
}
