package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"propertyhub/internal/app/policies"
	domainbooking "propertyhub/internal/domain/booking"
)

// QuoteArchive writes booking receipts to a private S3-compatible bucket.
type QuoteArchive struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

var _ policies.QuoteArchive = (*QuoteArchive)(nil)

func NewQuoteArchive(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*QuoteArchive, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &QuoteArchive{bucket: bucket, client: client, logger: logger}, nil
}

// Archive stores the receipt and returns its object key.
func (a *QuoteArchive) Archive(ctx context.Context, req domainbooking.Request, conf domainbooking.Confirmation) (string, error) {
	if conf.BookingID == "" {
		return "", errors.New("s3: booking id is required")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	body, err := json.Marshal(BuildReceipt(req, conf))
	if err != nil {
		return "", fmt.Errorf("s3: encode receipt: %w", err)
	}
	key := ObjectKey(string(req.PropertyID), conf.BookingID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{"booking-id": conf.BookingID},
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	if a.logger != nil {
		a.logger.InfoContext(ctx, "receipt archived", "bucket", a.bucket, "key", key)
	}
	return key, nil
}

// Ping checks the bucket is reachable.
func (a *QuoteArchive) Ping(ctx context.Context) error {
	_, err := a.client.BucketExists(ctx, a.bucket)
	return err
}

func (a *QuoteArchive) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return a.bucketInitErr
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
