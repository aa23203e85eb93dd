// Package media stores uploaded product and profile images in an S3-compatible bucket.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"shop-api/config"
	"shop-api/models"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, GIF or WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageStore uploads images and removes them by public id (the object key).
type ImageStore struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewS3ImageStore builds an ImageStore from the s3 config section.
// Works with AWS S3 and S3-compatible endpoints such as MinIO.
func NewS3ImageStore(ctx context.Context, cfg config.S3Config) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: s3.bucket is not configured")
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return newImageStore(s3.NewFromConfig(awsConfig, clientOpts...), cfg.Bucket, baseURL), nil
}

func newImageStore(client objectAPI, bucket, baseURL string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket, baseURL: baseURL}
}

// Upload stores the image under folder and returns its reference. The content
// type is sniffed from the data, not taken from the client.
func (s *ImageStore) Upload(ctx context.Context, folder string, r io.Reader) (models.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Image{}, fmt.Errorf("media: read upload: %w", err)
	}
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return models.Image{}, ErrUnsupportedType
	}

	key := path.Join(folder, uuid.NewString()+ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("media: put %s: %w", key, err)
	}
	return models.Image{PublicID: key, URL: s.URL(key)}, nil
}

// URL returns the public URL of an object key.
func (s *ImageStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Delete removes the object with the given public id.
func (s *ImageStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("media: delete %s: %w", publicID, err)
	}
	return nil
}
