// Package s3host stores product images in an S3 compatible bucket.
package s3host

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-catalog-server/images"
	"github.com/pkg/errors"
)

const partSize = 10 * 1024 * 1024

var ErrInvalidImage = images.ErrInvalidImage

type Config struct {
	Bucket string
	// "us-east-1"
	Region string
	// "http://127.0.0.1:9000" for minio, empty for AWS
	Endpoint  string
	AccessKey string
	SecretKey string
	// Prefix of returned URLs, defaults to the virtual-hosted bucket URL
	PublicBaseURL string
	// Zero keeps the SDK default
	RetryMaxAttempts int
}

var _ images.Host = (*Host)(nil)

type Host struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

func New(cfg Config) (*Host, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3host: bucket is required")
	}

	client := s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
		if cfg.RetryMaxAttempts > 0 {
			o.RetryMaxAttempts = cfg.RetryMaxAttempts
		}
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg)
	}

	return &Host{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = partSize
		}),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func defaultBaseURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload decodes the payload and stores it as "<folder>/<uuid>". The key carries no
// extension so the public id derived from the URL addresses the object directly.
func (h *Host) Upload(ctx context.Context, image string, folder string) (string, error) {
	data, contentType, err := decodeImage(image)
	if err != nil {
		return "", err
	}

	key := images.ResourceID(folder, uuid.New().String())
	_, err = h.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload image %s", key)
	}
	return h.baseURL + "/" + key, nil
}

func (h *Host) Delete(ctx context.Context, resourceID string) error {
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(resourceID),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete image %s", resourceID)
	}
	return nil
}

// decodeImage accepts "data:<mime>;base64,<payload>" or a bare base64 payload
func decodeImage(image string) ([]byte, string, error) {
	payload := strings.TrimSpace(image)
	contentType := ""

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", ErrInvalidImage
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImage
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
