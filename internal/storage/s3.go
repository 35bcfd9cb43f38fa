package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Storage implements Storage for AWS S3 and S3-compatible stores.
type S3Storage struct {
	client *s3.Client
	bucket string
}

// S3Config holds S3-specific configuration.
type S3Config struct {
	Bucket          string
	Profile         string // Shared credentials profile name
	Region          string
	Endpoint        string // Optional custom endpoint
	AccessKeyID     string // Optional static credentials, override the profile
	SecretAccessKey string
	UsePathStyle    bool // For S3-compatible services
}

// NewS3Storage creates a new S3 storage gateway bound to one bucket.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	var loadOpts []func(*config.LoadOptions) error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	} else if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// BucketExists implements Storage.BucketExists.
func (s *S3Storage) BucketExists(ctx context.Context) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		// HeadBucket reports access problems as bare API errors, so fall
		// back to inspecting the error code.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotFound", "NoSuchBucket":
				return false, nil
			}
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	return true, nil
}

// ListFolders implements Storage.ListFolders using a delimited listing,
// so only one level of folder nesting is discovered.
func (s *S3Storage) ListFolders(ctx context.Context) ([]string, error) {
	var folders []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list folders in bucket %s: %w", s.bucket, err)
		}

		for _, cp := range page.CommonPrefixes {
			folders = append(folders, folderName(*cp.Prefix))
		}
	}

	return folders, nil
}

// ListObjects implements Storage.ListObjects.
func (s *S3Storage) ListObjects(ctx context.Context, folder string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(folderPrefix(folder)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in folder %s: %w", folder, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				StorageClass: string(obj.StorageClass),
			})
		}
	}

	return objects, nil
}

// folderName strips the trailing delimiter from a common prefix.
func folderName(prefix string) string {
	return strings.TrimSuffix(prefix, "/")
}

// folderPrefix turns a folder name into a listing prefix. The trailing
// slash keeps sibling folders that share the name as a prefix out of the
// listing.
func folderPrefix(folder string) string {
	if strings.HasSuffix(folder, "/") {
		return folder
	}
	return folder + "/"
}
