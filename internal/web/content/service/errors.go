package service

import (
	"github.com/Laisky/errors/v2"

	"github.com/Laisky/amc-site/internal/web/content/dao"
)

var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = dao.ErrNotFound
	// ErrValidation wraps every rejected input.
	ErrValidation = errors.New("invalid input")
	// ErrCategoryInUse rejects deleting a category that portfolio items still reference.
	ErrCategoryInUse = errors.New("category in use")
)

func validationf(format string, args ...any) error {
	return errors.Wrapf(ErrValidation, format, args...)
}
