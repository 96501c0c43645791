package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/cableflow/cableflow-backend/pkg/config"
	pkggcp "github.com/cableflow/cableflow-backend/pkg/gcp"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/storage"
)

const pingTimeout = 5 * time.Second

// Client stores cable attachments in a single GCS bucket.
type Client struct {
	client *gcstorage.Client
	bucket string
	logg   *logger.Logger
}

var _ storage.ObjectStore = (*Client)(nil)

// NewClient authenticates with inline JSON credentials, a credentials file,
// or application default credentials, in that order.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	sc, err := gcstorage.NewClient(ctx, pkggcp.ClientOptions(gcp, option.WithScopes(gcstorage.ScopeReadWrite))...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	c := &Client{client: sc, bucket: cfg.BucketName, logg: logg}
	if err := c.Ping(ctx); err != nil {
		_ = sc.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return c, nil
}

func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) (storage.ObjectInfo, error) {
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return storage.ObjectInfo{}, fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("finalize %s: %w", key, err)
	}
	return storage.ObjectInfo{Key: key, ContentType: contentType, Size: n}, nil
}

func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	r, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open %s: %w", key, err)
	}
	info := storage.ObjectInfo{
		Key:         key,
		ContentType: r.Attrs.ContentType,
		Size:        r.Attrs.Size,
	}
	return r, info, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		return storage.ErrObjectNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := c.client.Bucket(c.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs bucket %s: %w", c.bucket, err)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
