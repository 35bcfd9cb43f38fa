package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage for Google Cloud Storage.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// GCSConfig holds GCS-specific configuration.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string // Optional service account JSON file
}

// NewGCSStorage creates a new GCS storage gateway bound to one bucket.
func NewGCSStorage(ctx context.Context, cfg GCSConfig) (*GCSStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		if err := ValidateServiceAccountFile(cfg.CredentialsFile); err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// BucketExists implements Storage.BucketExists.
func (g *GCSStorage) BucketExists(ctx context.Context) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", g.bucket, err)
	}
	return true, nil
}

// ListFolders implements Storage.ListFolders. A delimited query makes the
// iterator emit synthetic prefix entries instead of objects.
func (g *GCSStorage) ListFolders(ctx context.Context) ([]string, error) {
	var folders []string

	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Delimiter: "/",
	})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list folders in bucket %s: %w", g.bucket, err)
		}

		if attrs.Prefix != "" {
			folders = append(folders, folderName(attrs.Prefix))
		}
	}

	return folders, nil
}

// ListObjects implements Storage.ListObjects.
func (g *GCSStorage) ListObjects(ctx context.Context, folder string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Prefix: folderPrefix(folder),
	})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in folder %s: %w", folder, err)
		}

		objects = append(objects, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
			StorageClass: attrs.StorageClass,
		})
	}

	return objects, nil
}

// Close closes the GCS client connection.
func (g *GCSStorage) Close() error {
	return g.client.Close()
}

// ValidateServiceAccountFile validates a service account JSON key file.
func ValidateServiceAccountFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read service account file: %w", err)
	}
	return validateServiceAccountJSON(data)
}

func validateServiceAccountJSON(data []byte) error {
	var sa struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &sa); err != nil {
		return fmt.Errorf("invalid service account JSON: %w", err)
	}

	if sa.Type != "service_account" {
		return fmt.Errorf("invalid service account type: %s", sa.Type)
	}

	return nil
}
