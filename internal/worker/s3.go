package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxDocumentBytes caps downloaded CV documents.
const maxDocumentBytes = 20 << 20

// S3Config locates the bucket holding CV documents.
type S3Config struct {
	Bucket   string
	Endpoint string // S3 compatible endpoint such as R2 or MinIO; empty for AWS
	Region   string
}

// S3Objects downloads documents from an S3 bucket.
type S3Objects struct {
	client *s3.Client
	bucket string
}

// NewS3Objects builds a client from the default AWS configuration chain.
// S3_ACCESS_KEY and S3_SECRET_KEY, when both set, take precedence over it.
func NewS3Objects(ctx context.Context, cfg S3Config) (*S3Objects, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKey, secretKey := os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Objects{client: client, bucket: cfg.Bucket}, nil
}

// Download returns the object stored under key.
func (o *S3Objects) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(out.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if n > maxDocumentBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", key, maxDocumentBytes)
	}
	return buf.Bytes(), nil
}
