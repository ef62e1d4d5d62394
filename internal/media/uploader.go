// Package media stores uploaded product images in S3.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
)

// DefaultMaxBytes caps uploads when no limit is configured.
const DefaultMaxBytes int64 = 5 << 20

var (
	ErrDisabled        = errors.New("media uploads are not configured")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedType = errors.New("file is not an image")
)

// Object describes a stored file.
type Object struct {
	Key         string `json:"storage_key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader writes product images under products/<product_id>/ in one bucket.
type Uploader struct {
	client        aws.S3API
	bucket        string
	publicBaseURL string
	maxBytes      int64
	newID         func() string
}

// NewUploader returns an Uploader. publicBaseURL is the CDN or bucket URL objects are
// served from; it defaults to the virtual-hosted S3 URL of bucket.
func NewUploader(client aws.S3API, bucket, publicBaseURL string, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if publicBaseURL == "" && bucket != "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		newID:         uuid.NewString,
	}
}

// Enabled reports whether a bucket is configured.
func (u *Uploader) Enabled() bool {
	return u != nil && u.client != nil && u.bucket != ""
}

// MaxBytes is the upload size limit.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Upload sniffs r, rejects anything that is not an image, and stores it.
func (u *Uploader) Upload(ctx context.Context, productID string, r io.Reader) (Object, error) {
	if !u.Enabled() {
		return Object{}, ErrDisabled
	}
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Object{}, ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return Object{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Object{}, fmt.Errorf("%w: detected %s", ErrUnsupportedType, mt.String())
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, u.newID(), mt.Extension())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mt.String()),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object: %w", err)
	}
	return Object{
		Key:         key,
		URL:         u.publicBaseURL + "/" + key,
		ContentType: mt.String(),
		Size:        int64(len(data)),
	}, nil
}

// Delete removes a stored object.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	if !u.Enabled() || key == "" {
		return nil
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
