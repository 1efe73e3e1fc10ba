package resume

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archive keeps a copy of uploaded resumes.
type Archive interface {
	Put(ctx context.Context, sessionID string, d Document) (key string, err error)
}

// NopArchive discards uploads. Used when no bucket is configured.
type NopArchive struct{}

func (NopArchive) Put(context.Context, string, Document) (string, error) { return "", nil }

// S3Config describes an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Archive stores uploads as objects under Prefix/<date>/<session>/<uuid>-<file>.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

var _ Archive = (*S3Archive)(nil)

// NewS3Archive loads AWS configuration (static keys when given, the
// default chain otherwise) and returns an archive for cfg.Bucket.
func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Archive(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Archive(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (a *S3Archive) Put(ctx context.Context, sessionID string, d Document) (string, error) {
	name := path.Base(d.Filename)
	if name == "." || name == "/" {
		name = "resume"
	}
	key := path.Join(a.prefix, a.now().UTC().Format("2006/01/02"), sessionID, uuid.NewString()+"-"+name)

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(d.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return key, nil
}
