// Package storage is a thin wrapper around an S3-compatible object storage client.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds object storage connection settings.
//
// Endpoint may be omitted when AccountID is set, the R2 style endpoint
// `<account>.r2.cloudflarestorage.com` is used then.
type Config struct {
	AccountID       string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
	Insecure        bool
}

// Enabled reports whether every required setting is present.
func (c Config) Enabled() bool {
	return c.endpoint() != "" &&
		c.AccessKeyID != "" &&
		c.SecretAccessKey != "" &&
		c.Bucket != "" &&
		c.PublicBaseURL != ""
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return strings.TrimPrefix(strings.TrimPrefix(c.Endpoint, "https://"), "http://")
	}
	if c.AccountID != "" {
		return fmt.Sprintf("%s.r2.cloudflarestorage.com", c.AccountID)
	}

	return ""
}

// Object is one listed object.
type Object struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"lastModified"`
	ContentType  string            `json:"contentType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Client puts, deletes, lists and presigns objects in one bucket.
type Client struct {
	cli           *minio.Client
	bucket        string
	publicBaseURL string
}

// New creates a client, it does not touch the network.
func New(cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("object storage config missing")
	}

	cli, err := minio.New(cfg.endpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: !cfg.Insecure,
		Region: "auto",
	})
	if err != nil {
		return nil, errors.Wrap(err, "new minio client")
	}

	return &Client{
		cli:           cli,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put uploads the reader under key.
func (c *Client) Put(ctx context.Context,
	key string,
	reader io.Reader,
	size int64,
	contentType string,
	metadata map[string]string,
) error {
	_, err := c.cli.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return errors.Wrapf(err, "put object %q", key)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.cli.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "remove object %q", key)
	}

	return nil
}

// List returns every object under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	objs := []Object{}
	for obj := range c.cli.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "list objects under %q", prefix)
		}

		objs = append(objs, Object{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ContentType:  obj.ContentType,
			Metadata:     obj.UserMetadata,
		})
	}

	return objs, nil
}

// PresignGet returns a signed GET url valid for ttl.
func (c *Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := c.cli.PresignedGetObject(ctx, c.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "presign %q", key)
	}

	return u.String(), nil
}

// PublicURL returns the public read url of key.
func (c *Client) PublicURL(key string) string {
	return PublicURL(c.publicBaseURL, key)
}

// KeyFromURL returns the object key of a public url served from this bucket.
func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	return KeyFromURL(c.publicBaseURL, rawURL)
}

// PublicURL concatenates the public base url and key.
func PublicURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// KeyFromURL strips baseURL and any query string (image transform parameters) from rawURL.
func KeyFromURL(baseURL, rawURL string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if baseURL == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}

	key := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}

	return key, key != ""
}
