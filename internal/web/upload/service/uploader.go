// Package service names, validates and stores uploaded images and attachments.
package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/library/metrics"
	"github.com/Laisky/amc-site/library/storage"
)

// ObjectStore is the object storage the uploader writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

// Kind selects the key prefix and validation of an upload.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Prefix returns the object key prefix of k.
func (k Kind) Prefix() string {
	if k == KindImage {
		return ImagePrefix
	}

	return FilePrefix
}

// File is one stored upload.
type File struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// Uploader stores files. A nil ObjectStore disables every operation.
type Uploader struct {
	logger       glog.Logger
	store        ObjectStore
	maxFileBytes int64
}

// NewUploader creates an uploader, maxFileBytes <= 0 means DefaultMaxFileBytes.
func NewUploader(logger glog.Logger, store ObjectStore, maxFileBytes int64) *Uploader {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}

	return &Uploader{logger: logger, store: store, maxFileBytes: maxFileBytes}
}

// Enabled reports whether object storage is configured.
func (u *Uploader) Enabled() bool {
	return u != nil && u.store != nil
}

func (u *Uploader) check() error {
	if !u.Enabled() {
		return NewError(ErrCodeStorageDisabled, "object storage is not configured")
	}

	return nil
}

// Upload validates and stores one file with a single PUT.
// The public url is derived from the key, the object is never read back.
func (u *Uploader) Upload(ctx context.Context,
	kind Kind,
	originalName string,
	contentType string,
	size int64,
	reader io.Reader,
) (*File, error) {
	if err := u.check(); err != nil {
		return nil, err
	}

	var err error
	if kind == KindImage {
		err = ValidateImageFile(contentType, size)
	} else {
		err = ValidateAttachment(size, u.maxFileBytes)
	}
	if err != nil {
		metrics.Uploads.WithLabelValues(kind.Prefix(), "rejected").Inc()
		return nil, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := kind.Prefix() + GenerateStorageName(originalName)
	meta := map[string]string{
		MetaOriginalName: EncodeMetadata(originalName),
		MetaUploadedAt:   gutils.Clock.GetUTCNow().Format(time.RFC3339),
	}
	if err = u.store.Put(ctx, key, reader, size, contentType, meta); err != nil {
		metrics.Uploads.WithLabelValues(kind.Prefix(), "failed").Inc()
		return nil, errors.Wrapf(err, "upload %q", originalName)
	}
	metrics.Uploads.WithLabelValues(kind.Prefix(), "ok").Inc()

	u.logger.Info("uploaded", zap.String("key", key), zap.Int64("size", size))
	return &File{
		Key:         key,
		URL:         u.store.PublicURL(key),
		Name:        originalName,
		Size:        size,
		ContentType: contentType,
	}, nil
}

func checkKey(key string) error {
	if !strings.HasPrefix(key, ImagePrefix) && !strings.HasPrefix(key, FilePrefix) {
		return NewError(ErrCodeInvalidKey, "key %q is outside the upload prefixes", key)
	}
	if strings.Contains(key, "..") {
		return NewError(ErrCodeInvalidKey, "key %q is not clean", key)
	}

	return nil
}

// Delete removes an uploaded object by key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	if err := u.check(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}

	return u.store.Delete(ctx, key)
}

// DeleteByURL removes the object behind a public url.
func (u *Uploader) DeleteByURL(ctx context.Context, rawURL string) error {
	if err := u.check(); err != nil {
		return err
	}

	key, ok := u.store.KeyFromURL(rawURL)
	if !ok {
		return NewError(ErrCodeInvalidKey, "url %q is not served by this bucket", rawURL)
	}

	return u.Delete(ctx, key)
}

// List returns uploads under the prefix of kind, names recovered.
func (u *Uploader) List(ctx context.Context, kind Kind) ([]File, error) {
	if err := u.check(); err != nil {
		return nil, err
	}

	objs, err := u.store.List(ctx, kind.Prefix())
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(objs))
	for _, obj := range objs {
		files = append(files, File{
			Key:          obj.Key,
			URL:          u.store.PublicURL(obj.Key),
			Name:         u.displayName(obj),
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}

	return files, nil
}

// displayName prefers the encoded original name from metadata.
func (u *Uploader) displayName(obj storage.Object) string {
	for k, v := range obj.Metadata {
		if !strings.EqualFold(k, MetaOriginalName) && !strings.EqualFold(k, "X-Amz-Meta-"+MetaOriginalName) {
			continue
		}
		name, err := DecodeMetadata(v)
		if err == nil && name != "" {
			return name
		}
		u.logger.Debug("undecodable original name", zap.String("key", obj.Key), zap.Error(err))
	}

	name := obj.Key
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	return RecoverOriginalName(name)
}

// PresignGet returns a temporary download url for key.
func (u *Uploader) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := u.check(); err != nil {
		return "", err
	}
	if err := checkKey(key); err != nil {
		return "", err
	}

	return u.store.PresignGet(ctx, key, ttl)
}
