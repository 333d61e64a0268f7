// Package blob wraps an S3-compatible object store. The rest of the system
// treats blobs as opaque: bytes go in under a generated key, and the only
// inspection is MIME sniffing at upload time.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/config"
)

type Client struct {
	s3     *s3.Client
	bucket string
}

// New builds a client against the configured endpoint using static
// credentials. Path-style addressing keeps R2/minio endpoints working.
func New(cfg config.BlobConfig) *Client {
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Client{s3: client, bucket: cfg.BucketName}
}

// Put stores the bytes under a generated key namespaced by owner and returns
// (key, size, sniffed MIME type). The key preserves the original extension
// but is otherwise unrelated to the display name.
func (c *Client) Put(ctx context.Context, ownerEmail, filename string, data []byte) (string, int64, string, error) {
	key := fmt.Sprintf("%s/%s%s", ownerEmail, uuid.New().String(), filepath.Ext(filename))
	mimeType := http.DetectContentType(data)

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", 0, "", err
	}
	return key, int64(len(data)), mimeType, nil
}

// PresignGet creates a temporary signed URL for downloading a blob.
func (c *Client) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(c.s3)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Delete removes a blob. Missing keys are not an error; cleanup is
// best-effort after the metadata delete has committed.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}
