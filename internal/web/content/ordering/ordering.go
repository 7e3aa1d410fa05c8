// Package ordering sorts, partitions and filters content lists in memory.
//
// The tie-break and missing-value rules here decide the visible order of the
// public site, so they must not drift.
package ordering

import (
	"slices"
	"strings"
	"time"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// Orderable exposes an optional numeric `order`.
type Orderable interface {
	OrderValue() (int, bool)
}

// Dated is an Orderable with a creation time.
type Dated interface {
	Orderable
	CreatedTime() time.Time
}

// Identified exposes the document id.
type Identified interface {
	DocID() string
}

// compareOrder ranks items with `order` before items without it.
// The second return value is false when neither item has `order`.
func compareOrder(a, b Orderable) (int, bool) {
	ao, aok := a.OrderValue()
	bo, bok := b.OrderValue()
	switch {
	case aok && bok:
		switch {
		case ao < bo:
			return -1, true
		case ao > bo:
			return 1, true
		}
		return 0, true
	case aok:
		return -1, true
	case bok:
		return 1, true
	}

	return 0, false
}

// SortByOrder returns a copy sorted ascending by `order`.
// Items without `order` follow every item that has one and keep their input order.
func SortByOrder[T Orderable](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c, _ := compareOrder(a, b)
		return c
	})

	return out
}

// SortByOrderWithDateFallback is SortByOrder, except that two items both
// lacking `order` are ranked by `createdAt`, newest first.
func SortByOrderWithDateFallback[T Dated](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if c, ok := compareOrder(a, b); ok {
			return c
		}
		return b.CreatedTime().Compare(a.CreatedTime())
	})

	return out
}

// FilterSystemDocuments drops documents whose id is one of systemIDs.
func FilterSystemDocuments[T Identified](items []T, systemIDs []string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if slices.Contains(systemIDs, it.DocID()) {
			continue
		}
		out = append(out, it)
	}

	return out
}

// FilterIncomplete drops documents missing required display fields.
//
// Every group in required must be satisfied, a group is satisfied when any of
// its fields is non-empty, e.g. {{"titleKo", "titleEn"}} means "a title in either language".
func FilterIncomplete(items []*model.Document, required [][]string) []*model.Document {
	out := make([]*model.Document, 0, len(items))
	for _, doc := range items {
		if isComplete(doc, required) {
			out = append(out, doc)
		}
	}

	return out
}

func isComplete(doc *model.Document, required [][]string) bool {
	for _, group := range required {
		satisfied := false
		for _, field := range group {
			if doc.HasValue(strings.TrimSpace(field)) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	return true
}

// SortByDateDesc returns a copy of articles sorted newest first by display date.
func SortByDateDesc(items []model.Article) []model.Article {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.Article) int {
		return b.DisplayDate().Compare(a.DisplayDate())
	})

	return out
}

// PartitionPinned splits articles into important ones, in input order, and the
// rest sorted newest first by publishDate, falling back to createdAt.
func PartitionPinned(items []model.Article) (pinned, normal []model.Article) {
	pinned = []model.Article{}
	normal = []model.Article{}
	for _, it := range items {
		if it.IsImportant {
			pinned = append(pinned, it)
			continue
		}
		normal = append(normal, it)
	}

	return pinned, SortByDateDesc(normal)
}

// SortLeadership orders members by category priority, then by `order`.
func SortLeadership(members []model.LeadershipMember) []model.LeadershipMember {
	out := SortByOrder(members)
	slices.SortStableFunc(out, func(a, b model.LeadershipMember) int {
		return model.LeadershipPriority(a.Category) - model.LeadershipPriority(b.Category)
	})

	return out
}
