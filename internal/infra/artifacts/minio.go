// Package artifacts publishes freshly built index artifacts to S3-compatible
// object storage so other replicas can pull the new generation.
package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectPublisher uploads the artifact pair via the S3 API.
type ObjectPublisher struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewObjectPublisher constructs the publisher.
func NewObjectPublisher(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*ObjectPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectPublisher{client: client, bucket: bucket, logger: logger.With("component", "artifacts.publisher")}, nil
}

// Publish uploads the index and metadata files under their base names.
func (p *ObjectPublisher) Publish(ctx context.Context, indexPath, metaPath string) error {
	if err := p.ensureBucket(ctx); err != nil {
		return err
	}
	uploads := []struct {
		path        string
		contentType string
	}{
		{indexPath, "application/octet-stream"},
		{metaPath, "application/json"},
	}
	for _, upload := range uploads {
		key := filepath.Base(upload.path)
		info, err := p.client.FPutObject(ctx, p.bucket, key, upload.path, minio.PutObjectOptions{
			ContentType: upload.contentType,
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		p.logger.Info("artifact published", "key", key, "size", info.Size)
	}
	return nil
}

func (p *ObjectPublisher) ensureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err == nil && exists {
		return nil
	}
	err = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

func sanitizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimSuffix(endpoint, "/")
}
