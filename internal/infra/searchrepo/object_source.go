package searchrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
)

// ObjectSource reads a JSON snapshot of the catalogue from S3-compatible
// storage (Cloudflare R2, MinIO).
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// ObjectConfig locates the snapshot.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Key       string
}

// NewObjectSource constructs the storage-backed source.
func NewObjectSource(cfg ObjectConfig, logger *slog.Logger) (*ObjectSource, error) {
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "https"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	key := cfg.Key
	if key == "" {
		key = "search/items.json"
	}
	return &ObjectSource{client: client, bucket: cfg.Bucket, key: key, logger: logger.With("component", "searchrepo.object")}, nil
}

// LoadItems downloads and decodes the snapshot.
func (s *ObjectSource) LoadItems(ctx context.Context) ([]search.Item, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	items, err := decodeSnapshot(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", s.bucket, s.key, err)
	}
	s.logger.Info("search snapshot loaded", "bucket", s.bucket, "key", s.key, "items", len(items))
	return items, nil
}

// PutSnapshot uploads items as the new snapshot.
func (s *ObjectSource) PutSnapshot(ctx context.Context, items []search.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	return err
}

// decodeSnapshot accepts either a bare array or {"items": [...]}.
func decodeSnapshot(r io.Reader) ([]search.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	if trimmed[0] == '[' {
		var items []search.Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapped struct {
		Items []search.Item `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Items == nil {
		return nil, fmt.Errorf("snapshot has no items array")
	}
	return wrapped.Items, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ search.ItemSource = (*ObjectSource)(nil)
