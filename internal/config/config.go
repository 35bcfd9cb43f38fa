// Package config holds the probe configuration assembled from command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds all settings for one check invocation.
type Config struct {
	// Bucket to inspect and the folder-name prefix filter.
	BucketName   string
	FolderPrefix string

	// Age thresholds in hours. Zero disables the corresponding check.
	MinFirstAgeHours int
	MaxLastAgeHours  int

	// CheckSize enables the size-sanity checks on each folder's latest backup.
	CheckSize bool

	// Storage provider configuration
	StorageProvider string // "s3" or "gcs"

	// S3 configuration
	AWSProfile string
	S3Endpoint string // Optional custom endpoint for S3-compatible stores
	S3Region   string

	// GCS configuration
	GCSCredentialsFile string

	// Concurrency bounds the number of folders evaluated in parallel.
	Concurrency int

	// Output options
	ListFiles       bool
	Debug           bool
	MetricsTextfile string
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BucketName == "" {
		return fmt.Errorf("--bucketname is required")
	}

	switch c.StorageProvider {
	case "s3":
		if c.AWSProfile == "" {
			return fmt.Errorf("--aws-profile must not be empty for s3 storage")
		}
	case "gcs":
		// Credentials file is optional; application default credentials
		// apply when it is not set.
	default:
		return fmt.Errorf("invalid --storage-provider: %s (must be 's3' or 'gcs')", c.StorageProvider)
	}

	if c.MinFirstAgeHours < 0 {
		return fmt.Errorf("--minfirstage must be non-negative")
	}
	if c.MaxLastAgeHours < 0 {
		return fmt.Errorf("--maxlastage must be non-negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	return nil
}

// MinFirstAge returns the min-age threshold as a Duration.
func (c *Config) MinFirstAge() time.Duration {
	return time.Duration(c.MinFirstAgeHours) * time.Hour
}

// MaxLastAge returns the max-age threshold as a Duration.
func (c *Config) MaxLastAge() time.Duration {
	return time.Duration(c.MaxLastAgeHours) * time.Hour
}
