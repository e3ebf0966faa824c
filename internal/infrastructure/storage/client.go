package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"skillbridge/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrTooLarge = errors.New("file exceeds upload limit")

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	Name        string
	ContentType string
	Size        int64
}

type Client struct {
	minio      *minio.Client
	bucket     string
	publicBase string
	maxBytes   int64
	presignTTL time.Duration
}

func NewClient(cfg config.StorageConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}

	return &Client{
		minio:      mc,
		bucket:     cfg.Bucket,
		publicBase: base,
		maxBytes:   cfg.MaxUploadBytes,
		presignTTL: cfg.PresignTTL,
	}, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) MaxUploadBytes() int64 {
	return c.maxBytes
}

// Ping checks that the bucket endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.minio.BucketExists(ctx, c.bucket)
	return err
}

func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minio.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.minio.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, checkErr := c.minio.BucketExists(ctx, c.bucket)
		if checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Upload stores r under key. size must be known so oversized files are
// rejected before any bytes are sent.
func (c *Client) Upload(ctx context.Context, key, name string, r io.Reader, size int64, contentType string) (Object, error) {
	if c.maxBytes > 0 && size > c.maxBytes {
		return Object{}, ErrTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.minio.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "attachment; filename=\"" + SanitizeName(name) + "\"",
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return Object{
		Key:         key,
		URL:         c.PublicURL(key),
		Name:        name,
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := c.minio.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// PresignedGetURL returns a short-lived download link that forces the
// original file name.
func (c *Client) PresignedGetURL(ctx context.Context, key, name string) (string, error) {
	params := url.Values{}
	if name != "" {
		params.Set("response-content-disposition", "attachment; filename=\""+SanitizeName(name)+"\"")
	}
	u, err := c.minio.PresignedGetObject(ctx, c.bucket, key, c.presignTTL, params)
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return u.String(), nil
}

func (c *Client) PublicURL(key string) string {
	return c.publicBase + "/" + key
}

func SubmissionKey(userID uuid.UUID, name string) string {
	return fmt.Sprintf("submissions/%s/%s-%s", userID, uuid.NewString(), SanitizeName(name))
}

func JobFileKey(name string) string {
	return fmt.Sprintf("jobs/%s-%s", uuid.NewString(), SanitizeName(name))
}

// SanitizeName keeps the base name and replaces characters that are unsafe in
// object keys and header values.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 120 {
		out = out[len(out)-120:]
	}
	return out
}
