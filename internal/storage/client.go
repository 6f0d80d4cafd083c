// Package storage keeps uploaded vault files in MinIO, one bucket per user.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned by every operation when no endpoint is configured.
var ErrDisabled = errors.New("storage not configured")

type Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	BucketPrefix string
}

type Client struct {
	mc      *minio.Client
	prefix  string
	enabled bool
}

// NewClient returns a disabled client when cfg has no endpoint.
func NewClient(cfg Config) (*Client, error) {
	prefix := cfg.BucketPrefix
	if prefix == "" {
		prefix = "coffre"
	}
	if cfg.Endpoint == "" {
		return &Client{prefix: prefix}, nil
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Client{mc: mc, prefix: prefix, enabled: true}, nil
}

func (c *Client) Enabled() bool { return c != nil && c.enabled }

// Bucket returns the bucket of a user. Bucket names are lower case, at most
// 63 characters.
func (c *Client) Bucket(userID string) string {
	name := strings.ToLower(c.prefix + "-" + userID)
	if len(name) > 63 {
		name = name[:63]
	}
	return strings.TrimRight(name, "-")
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (c *Client) Put(ctx context.Context, userID, key string, r io.Reader, size int64, contentType string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	bucket := c.Bucket(userID)
	if err := c.ensureBucket(ctx, bucket); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}
	if _, err := c.mc.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

type Object struct {
	Reader       io.ReadCloser
	ContentType  string
	Size         int64
	LastModified time.Time
}

func (c *Client) Get(ctx context.Context, userID, key string) (*Object, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	obj, err := c.mc.GetObject(ctx, c.Bucket(userID), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return &Object{
		Reader:       obj,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

func (c *Client) Delete(ctx context.Context, userID, key string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	return c.mc.RemoveObject(ctx, c.Bucket(userID), key, minio.RemoveObjectOptions{})
}
