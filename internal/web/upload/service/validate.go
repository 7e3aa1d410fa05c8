package service

import "strings"

// Size caps of uploads.
const (
	MaxImageBytes       int64 = 10 << 20
	DefaultMaxFileBytes int64 = 50 << 20
)

// Object key prefixes.
const (
	ImagePrefix = "images/"
	FilePrefix  = "files/"
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// normalizeContentType drops parameters like `; charset=...`.
func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	return strings.ToLower(strings.TrimSpace(contentType))
}

// ValidateImageFile accepts jpeg, png, gif and webp images up to MaxImageBytes.
func ValidateImageFile(contentType string, size int64) error {
	if !imageTypes[normalizeContentType(contentType)] {
		return NewError(ErrCodeInvalidType, "unsupported image type %q, allowed: jpeg, png, gif, webp", contentType)
	}

	return validateSize(size, MaxImageBytes)
}

// ValidateAttachment checks a document attachment against maxBytes.
func ValidateAttachment(size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	return validateSize(size, maxBytes)
}

func validateSize(size, maxBytes int64) error {
	switch {
	case size <= 0:
		return NewError(ErrCodeEmpty, "file is empty")
	case size > maxBytes:
		return NewError(ErrCodeTooLarge, "file is %d bytes, limit is %d bytes", size, maxBytes)
	}

	return nil
}
