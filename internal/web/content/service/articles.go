package service

import (
	"context"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
)

// Default page sizes of the public lists.
const (
	DefaultNewsPageSize       = 9
	DefaultDisclosurePageSize = 10
	MaxPageSize               = 100
)

func clampPageSize(size, def int) int {
	switch {
	case size < 1:
		return def
	case size > MaxPageSize:
		return MaxPageSize
	}

	return size
}

// ListNewsPage returns one page of news, newest first.
func (s *Service) ListNewsPage(ctx context.Context, page, pageSize int) (ordering.Page[model.Article], error) {
	items, err := s.News.ListComplete(ctx)
	if err != nil {
		return ordering.Page[model.Article]{}, err
	}

	return ordering.Paginate(nil, ordering.SortByDateDesc(items), page, clampPageSize(pageSize, DefaultNewsPageSize)), nil
}

// ListDisclosurePage returns one page of disclosures.
// Important disclosures are repeated on top of every page.
func (s *Service) ListDisclosurePage(ctx context.Context, page, pageSize int) (ordering.Page[model.Article], error) {
	items, err := s.Disclosure.ListComplete(ctx)
	if err != nil {
		return ordering.Page[model.Article]{}, err
	}

	pinned, normal := ordering.PartitionPinned(items)
	return ordering.Paginate(pinned, normal, page, clampPageSize(pageSize, DefaultDisclosurePageSize)), nil
}
