package ordering

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// buildMetas turns generated orders and presence flags into documents.
func buildMetas(orders []int, present []bool, hours []int) []model.Meta {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := make([]model.Meta, 0, len(orders))
	for i, o := range orders {
		var order *int
		if i < len(present) && present[i] {
			order = model.IntPtr(o)
		}
		created := base
		if i < len(hours) {
			created = base.Add(time.Duration(hours[i]) * time.Hour)
		}
		items = append(items, meta(fmt.Sprintf("id-%d", i), order, created))
	}
	return items
}

// TestSortByOrderProperties checks idempotence and that ordered items always lead.
func TestSortByOrderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sorting twice equals sorting once", prop.ForAll(
		func(orders []int, present []bool) bool {
			items := buildMetas(orders, present, nil)
			once := SortByOrder(items)
			return reflect.DeepEqual(ids(once), ids(SortByOrder(once)))
		},
		gen.SliceOf(gen.IntRange(-10, 10)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("items with order precede items without", prop.ForAll(
		func(orders []int, present []bool) bool {
			sorted := SortByOrder(buildMetas(orders, present, nil))
			seenMissing := false
			for _, it := range sorted {
				_, ok := it.OrderValue()
				if !ok {
					seenMissing = true
					continue
				}
				if seenMissing {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-10, 10)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("date fallback sort is idempotent", prop.ForAll(
		func(orders []int, present []bool, hours []int) bool {
			items := buildMetas(orders, present, hours)
			once := SortByOrderWithDateFallback(items)
			return reflect.DeepEqual(ids(once), ids(SortByOrderWithDateFallback(once)))
		},
		gen.SliceOf(gen.IntRange(-10, 10)),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// TestPaginateProperties checks every page carries all pinned items plus at most the quota.
func TestPaginateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("pinned items repeat on every page", prop.ForAll(
		func(pinnedCount, normalCount, pageSize int) bool {
			pinned := make([]int, pinnedCount)
			for i := range pinned {
				pinned[i] = -i - 1
			}
			normal := make([]int, normalCount)
			for i := range normal {
				normal[i] = i
			}

			first := Paginate(pinned, normal, 1, pageSize)
			seen := 0
			for page := 1; page <= first.TotalPages; page++ {
				p := Paginate(pinned, normal, page, pageSize)
				if !reflect.DeepEqual(p.Pinned, pinned) {
					return false
				}
				if pinnedCount < pageSize && len(p.Items) > pageSize-pinnedCount {
					return false
				}
				seen += len(p.Items)
			}
			return seen == normalCount
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 40),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
