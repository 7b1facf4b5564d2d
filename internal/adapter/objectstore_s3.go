package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/model"
)

// maxMediaFetchBytes caps downloads of channel-hosted media before re-upload.
const maxMediaFetchBytes = 25 * 1024 * 1024

type s3Store struct {
	client        *s3.Client
	httpClient    *http.Client
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3Store returns an ObjectStore backed by an S3-compatible bucket.
func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig) (ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO and friends
		}
	})

	return &s3Store{
		client:        client,
		httpClient:    http.DefaultClient,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, ownerID int64, media model.Media) (string, error) {
	data, err := resolveMediaBytes(ctx, s.httpClient, media)
	if err != nil {
		return "", err
	}

	key := mediaKey(ownerID, media.Filename)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(media.MimeType),
	}); err != nil {
		return "", fmt.Errorf("putting object %s: %w", key, err)
	}

	slog.DebugContext(ctx, "media uploaded", "key", key, "bytes", len(data))

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// resolveMediaBytes returns the raw media body, fetching the channel-hosted
// URL when the envelope carried no inline bytes.
func resolveMediaBytes(ctx context.Context, client *http.Client, media model.Media) ([]byte, error) {
	if len(media.Data) > 0 {
		return media.Data, nil
	}
	if media.URL == "" {
		return nil, fmt.Errorf("media has neither bytes nor url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building media fetch request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading media body: %w", err)
	}
	if len(data) > maxMediaFetchBytes {
		return nil, fmt.Errorf("media exceeds %d bytes", maxMediaFetchBytes)
	}

	return data, nil
}

func mediaKey(ownerID int64, filename string) string {
	return fmt.Sprintf("media/%d/%d-%s", ownerID, id.New(), sanitizeFilename(filename))
}
