// Package archive provides durable off-store archival for the two kinds
// of immutable artifact the ledger produces but never embeds in a fact
// payload: scanned wet-ink signature images and a mirror copy of frozen
// document-snapshot payloads. The event store remains authoritative —
// archival is a convenience mirror the core never reads from — so Put
// returns only an archive reference string (the object key), the same way
// a Payment fact carries a bank reference without embedding the
// statement line. Adapted from the teacher's
// internal/repository/storage/s3_image_repo.go, generalized from an
// image-only repository to a byte-blob object store.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config names the bucket and endpoint archive objects are stored under.
// Endpoint is left empty for real AWS S3 and set for MinIO/LocalStack,
// mirroring the teacher's S3Config.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional; set for MinIO/LocalStack
	AccessKeyID     string
	SecretAccessKey string
}

// Store archives document-snapshot payload mirrors and signature scans in
// an S3-compatible object store.
type Store struct {
	client *s3.Client
	bucket string
}

// New builds a Store against cfg, verifying the bucket exists (creating
// it if not), the same connectivity check
// s3_image_repo.go's NewS3ImageRepository performs at construction time.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &Store{client: client, bucket: cfg.Bucket}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("check bucket (may be permission denied): %w", err)
	}
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Put uploads data under objectKey and returns the key itself — the
// archive reference a fact attribute stores (spec.md §4.9's
// "signing/scan-archive-ref" and the document-snapshot mirror key).
func (s *Store) Put(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return objectKey, nil
}

// Get retrieves the object stored under objectKey.
func (s *Store) Get(ctx context.Context, objectKey string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(objectKey)})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// DocumentSnapshotKey builds the mirror object key for a document
// snapshot, keyed by snapshot id (spec.md §4.9).
func DocumentSnapshotKey(snapshotID string) string {
	return "document-snapshots/" + snapshotID + ".json"
}

// SignatureScanKey builds the object key for a normalized signature scan
// belonging to a signing fact.
func SignatureScanKey(signingID string) string {
	return "signature-scans/" + signingID + ".jpg"
}
