package service

import (
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestValidateImageFile(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		size        int64
		code        ErrorCode
	}{
		{"jpeg", "image/jpeg", 1024, ""},
		{"jpg alias", "image/jpg", 1024, ""},
		{"png with params", "image/PNG; charset=binary", 1024, ""},
		{"gif", "image/gif", 1, ""},
		{"webp at limit", "image/webp", MaxImageBytes, ""},
		{"one byte over", "image/webp", MaxImageBytes + 1, ErrCodeTooLarge},
		{"svg", "image/svg+xml", 10, ErrCodeInvalidType},
		{"pdf", "application/pdf", 10, ErrCodeInvalidType},
		{"no type", "", 10, ErrCodeInvalidType},
		{"empty", "image/png", 0, ErrCodeEmpty},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateImageFile(c.contentType, c.size)
			if c.code == "" {
				require.NoError(t, err)
				return
			}
			require.True(t, IsCode(err, c.code), "got %v", err)
		})
	}
}

func TestValidateAttachment(t *testing.T) {
	require.NoError(t, ValidateAttachment(DefaultMaxFileBytes, 0))
	require.True(t, IsCode(ValidateAttachment(DefaultMaxFileBytes+1, 0), ErrCodeTooLarge))
	require.NoError(t, ValidateAttachment(100, 100))
	require.True(t, IsCode(ValidateAttachment(101, 100), ErrCodeTooLarge))
}

func TestErrorHelpers(t *testing.T) {
	err := errors.Wrap(NewError(ErrCodeTooLarge, "big"), "upload")
	typed, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, ErrCodeTooLarge, typed.Code)
	require.False(t, IsCode(errors.New("other"), ErrCodeTooLarge))
	require.False(t, IsCode(nil, ErrCodeTooLarge))
	require.Equal(t, "upload error: TOO_LARGE", (&Error{Code: ErrCodeTooLarge}).Error())
}
