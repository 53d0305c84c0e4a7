// ABOUTME: Course image uploads to S3-compatible object storage
// ABOUTME: Sniffs content type, enforces the size limit, and returns the public URL

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrNotAnImage    = errors.New("file is not an image")
)

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type S3Uploader struct {
	uploader  *s3manager.Uploader
	bucket    string
	publicURL string
}

// NewS3Uploader uses the default AWS credential chain. A custom endpoint
// switches to path-style addressing for MinIO and similar stores.
func NewS3Uploader(bucket, region, endpoint, publicURL string) (*S3Uploader, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Uploader{
		uploader:  s3manager.NewUploader(sess),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to bucket %s failed: %w", u.bucket, err)
	}
	if u.publicURL != "" {
		return u.publicURL + "/" + key, nil
	}
	return out.Location, nil
}

// ValidateImage checks size and sniffed type, returning the MIME type and
// the file extension to store under.
func ValidateImage(data []byte, maxBytes int64) (string, string, error) {
	if int64(len(data)) > maxBytes {
		return "", "", fmt.Errorf("%w (%d bytes max)", ErrImageTooLarge, maxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mt.String())
	}
	return mt.String(), mt.Extension(), nil
}

// CourseImages accepts one course image per call.
type CourseImages struct {
	uploader Uploader
	maxBytes int64
}

func NewCourseImages(uploader Uploader, maxBytes int64) *CourseImages {
	return &CourseImages{uploader: uploader, maxBytes: maxBytes}
}

// MaxBytes is the configured size limit
func (c *CourseImages) MaxBytes() int64 {
	return c.maxBytes
}

// Store reads at most maxBytes+1 bytes from r so oversized files fail
// without being buffered whole.
func (c *CourseImages) Store(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType, ext, err := ValidateImage(data, c.maxBytes)
	if err != nil {
		return "", err
	}
	key := "courses/" + uuid.NewString() + ext
	url, err := c.uploader.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	slog.Info("Course image uploaded", "key", key, "bytes", len(data), "content_type", contentType)
	return url, nil
}
