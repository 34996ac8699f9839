// Package storage persists report images in S3-compatible blob storage and
// serves them back through the image proxy endpoint.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/opencivic/infrawatch/pkg/logging"
)

// ErrNotFound is returned when no blob exists for the given id.
var ErrNotFound = errors.New("storage: blob not found")

// ErrNotConfigured is returned when no bucket is configured.
var ErrNotConfigured = errors.New("storage: blob storage not configured")

// S3API is the subset of the S3 client used by BlobStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BlobStore stores report images in S3. Upload is treated as atomic: it
// either yields a storage id or an error, never a partial write the caller
// has to clean up.
type BlobStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewBlobStore creates a BlobStore. If bucket is empty, Enabled reports
// false and uploads fail with ErrNotConfigured.
func NewBlobStore(s3Client S3API, bucket string, logger *logging.Logger) *BlobStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &BlobStore{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if blob storage is configured.
func (s *BlobStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Upload writes the bytes and returns an opaque file id usable with Read.
func (s *BlobStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}
	if len(data) == 0 {
		return "", errors.New("storage: refusing to upload empty blob")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	fileID := uuid.NewString()
	key := objectKey(fileID)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}

	s.logger.Info("uploaded report image", "file_id", fileID, "bytes", len(data))
	return fileID, nil
}

// Read fetches the blob bytes and content type for a file id.
func (s *BlobStore) Read(ctx context.Context, fileID string) ([]byte, string, error) {
	if !s.Enabled() {
		return nil, "", ErrNotConfigured
	}

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(fileID)),
	})
	if err != nil {
		if isNotFoundErr(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("storage: s3 get %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("storage: read body %s: %w", fileID, err)
	}

	contentType := "image/jpeg"
	if resp.ContentType != nil && *resp.ContentType != "" {
		contentType = *resp.ContentType
	}
	return data, contentType, nil
}

func objectKey(fileID string) string {
	return "reports/images/" + fileID + ".jpg"
}

// isNotFoundErr checks if the error is an S3 missing-key error. String check
// because errors.As with the generated S3 types is unreliable across
// S3-compatible backends.
func isNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") || strings.Contains(msg, "404")
}
