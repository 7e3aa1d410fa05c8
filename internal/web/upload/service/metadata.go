package service

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/Laisky/errors/v2"
)

// Object metadata keys written on upload.
const (
	MetaOriginalName = "original-name"
	MetaUploadedAt   = "uploaded-at"
)

// EncodeMetadata makes value safe for ASCII-only object metadata headers:
// percent-encode the UTF-8 bytes, then base64 the result.
func EncodeMetadata(value string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
	return base64.StdEncoding.EncodeToString([]byte(escaped))
}

// DecodeMetadata reverses EncodeMetadata.
func DecodeMetadata(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "decode base64 metadata")
	}

	value, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", errors.Wrap(err, "unescape metadata")
	}

	return value, nil
}
