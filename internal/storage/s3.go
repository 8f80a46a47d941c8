package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/pkg/models"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "site-concierge"
	Key             string // object key of the artifact
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// S3 keeps the content as a single object in an S3-compatible bucket.
type S3 struct {
	minioClient *minio.Client
	bucket      string
	key         string
}

// NewS3 creates a new S3/MinIO backed store.
func NewS3(config Config) (*S3, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if config.Key == "" {
		config.Key = DefaultFileName
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &S3{
		minioClient: minioClient,
		bucket:      config.Bucket,
		key:         config.Key,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.minioClient.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = s.minioClient.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *S3) Write(ctx context.Context, page models.Page) error {
	if err := s.EnsureBucket(ctx); err != nil {
		return err
	}

	reader := strings.NewReader(page.Content)
	_, err := s.minioClient.PutObject(ctx, s.bucket, s.key, reader, int64(len(page.Content)), minio.PutObjectOptions{
		ContentType:  "text/plain; charset=utf-8",
		UserMetadata: objectMetadata(page),
	})
	if err != nil {
		return fmt.Errorf("failed to put content: %w", err)
	}
	return nil
}

func (s *S3) Read(ctx context.Context) (string, error) {
	object, err := s.minioClient.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return "", s.translate(err, "get")
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", s.translate(err, "read")
	}
	return string(data), nil
}

func (s *S3) Stat(ctx context.Context) (Info, error) {
	info, err := s.minioClient.StatObject(ctx, s.bucket, s.key, minio.StatObjectOptions{})
	if err != nil {
		return Info{}, s.translate(err, "stat")
	}
	return Info{Size: info.Size, ModTime: info.LastModified}, nil
}

// Bucket returns the bucket name.
func (s *S3) Bucket() string {
	return s.bucket
}

func (s *S3) translate(err error, op string) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: s3://%s/%s", pipeline.ErrContentMissing, s.bucket, s.key)
	}
	return fmt.Errorf("failed to %s content: %w", op, err)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}

// objectMetadata records where the content came from. S3 user metadata must
// be ASCII, so non-ASCII titles are left out.
func objectMetadata(page models.Page) map[string]string {
	meta := map[string]string{}
	if page.URL != "" {
		meta["source-url"] = page.URL
	}
	if page.Title != "" && isASCII(page.Title) {
		meta["title"] = page.Title
	}
	if !page.ScrapedAt.IsZero() {
		meta["scraped-at"] = page.ScrapedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return meta
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7e || s[i] < 0x20 {
			return false
		}
	}
	return true
}
