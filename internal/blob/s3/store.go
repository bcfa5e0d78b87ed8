// Package s3 implements blob.Store on Amazon S3. Classified documents are
// moved into per-category folders via copy-then-delete, which is safe to
// retry because both halves are idempotent.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"onboardbot/internal/blob"
	"onboardbot/internal/config"
)

// Store implements blob.Store using an S3 bucket.
type Store struct {
	client        *awss3.Client
	bucket        string
	prefix        string
	retryAttempts int
}

// New creates an S3-backed blob store from configuration.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Storage.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Storage.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:        awss3.NewFromConfig(awsCfg),
		bucket:        cfg.Storage.Bucket,
		prefix:        strings.Trim(cfg.Storage.Prefix, "/"),
		retryAttempts: cfg.Storage.MoveRetryAttempts,
	}, nil
}

// Upload stores content under inbox/<ownerID>/<name> and returns the key.
func (s *Store) Upload(ctx context.Context, ownerID, name, mimeType string, content io.Reader) (string, error) {
	key := path.Join("inbox", ownerID, name)
	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   content,
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, wrapTransient(err))
	}
	return key, nil
}

// Move relocates an object into the given category folder, retrying
// transient failures up to the configured bound.
func (s *Store) Move(ctx context.Context, ref, folder string) (string, error) {
	target := path.Join(folder, path.Base(ref))
	if target == ref {
		return ref, nil
	}

	err := blob.WithRetry(ctx, s.retryAttempts, func() error {
		if _, err := s.client.CopyObject(ctx, &awss3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(s.bucket + "/" + s.objectKey(ref)),
			Key:        aws.String(s.objectKey(target)),
		}); err != nil {
			return fmt.Errorf("s3 copy object %s -> %s: %w", ref, target, wrapTransient(err))
		}
		if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(ref)),
		}); err != nil {
			return fmt.Errorf("s3 delete source %s: %w", ref, wrapTransient(err))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return target, nil
}

// Delete removes an object. Absent objects delete cleanly on S3.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	}); err != nil {
		return fmt.Errorf("s3 delete object %s: %w", ref, wrapTransient(err))
	}
	return nil
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func wrapTransient(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &blob.Transient{Err: err}
	}
	return err
}

var _ blob.Store = (*Store)(nil)
