package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

// objectAPI is the subset of *minio.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type S3Storage struct {
	client objectAPI
	bucket string
	urls   URLBuilder
	logger *logger.Logger
}

type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

func NewS3Storage(ctx context.Context, opts Options, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO storage", "endpoint", opts.Endpoint, "bucket", opts.Bucket, "use_ssl", opts.UseSSL)

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", opts.Endpoint, err)
	}

	if err := ensureBucket(ctx, client, opts.Bucket, log); err != nil {
		return nil, err
	}

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}
	return &S3Storage{
		client: client,
		bucket: opts.Bucket,
		urls:   NewURLBuilder(baseURL, opts.Bucket),
		logger: log,
	}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string, log *logger.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		log.Info("S3Storage: bucket already exists", "bucket", bucket)
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	log.Info("S3Storage: bucket created", "bucket", bucket)
	return nil
}

// Upload stores data under objectName and blocks until the store has
// answered. A malformed acknowledgment for a stored object counts as
// success.
func (s *S3Storage) Upload(ctx context.Context, data []byte, objectName, contentType string) (domain.ImageRef, error) {
	s.logger.Info("S3Storage.Upload: uploading object",
		"bucket", s.bucket, "object_name", objectName, "content_type", contentType, "size_bytes", len(data))

	info, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})

	switch classifyUpload(err) {
	case uploadStored:
		objectID := info.Key
		if objectID == "" {
			objectID = objectName
		}
		s.logger.Info("S3Storage.Upload: object stored", "object_id", objectID, "etag", info.ETag, "size", info.Size)
		return s.Ref(objectID), nil
	case uploadStoredMalformedAck:
		s.logger.Warn("S3Storage.Upload: store acknowledged with an unreadable body, treating as stored",
			"object_name", objectName, "error", err.Error())
		return s.Ref(objectName), nil
	default:
		s.logger.Error("S3Storage.Upload: PutObject failed", "object_name", objectName, "error", err.Error())
		return domain.ImageRef{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectName, s.bucket, err)
	}
}

func (s *S3Storage) Delete(ctx context.Context, objectID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectID, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("S3Storage.Delete: RemoveObject failed", "object_id", objectID, "error", err.Error())
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", objectID, s.bucket, err)
	}
	s.logger.Info("S3Storage.Delete: object removed", "object_id", objectID)
	return nil
}

// Ref builds the image reference for an object id. No store round-trip.
func (s *S3Storage) Ref(objectID string) domain.ImageRef {
	return domain.ImageRef{ObjectID: objectID, URLs: s.urls.URLs(objectID)}
}
