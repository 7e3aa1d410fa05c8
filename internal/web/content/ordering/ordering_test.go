package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

func meta(id string, order *int, created time.Time) model.Meta {
	m := model.Meta{ID: id, Order: order}
	if !created.IsZero() {
		m.CreatedAt = &created
	}
	return m
}

func ids[T Identified](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.DocID())
	}
	return out
}

// TestSortByOrderMissingOrderSinks verifies items without order follow every ordered item.
func TestSortByOrderMissingOrderSinks(t *testing.T) {
	items := []model.Meta{
		meta("1", nil, time.Time{}),
		meta("2", model.IntPtr(0), time.Time{}),
	}
	require.Equal(t, []string{"2", "1"}, ids(SortByOrder(items)))

	items = []model.Meta{
		meta("a", nil, time.Time{}),
		meta("b", model.IntPtr(-5), time.Time{}),
		meta("c", nil, time.Time{}),
		meta("d", model.IntPtr(3), time.Time{}),
		meta("e", model.IntPtr(-5), time.Time{}),
	}
	require.Equal(t, []string{"b", "e", "d", "a", "c"}, ids(SortByOrder(items)))
}

// TestSortByOrderDoesNotMutateInput verifies the input slice is left untouched.
func TestSortByOrderDoesNotMutateInput(t *testing.T) {
	items := []model.Meta{
		meta("x", model.IntPtr(2), time.Time{}),
		meta("y", model.IntPtr(1), time.Time{}),
	}
	_ = SortByOrder(items)
	require.Equal(t, []string{"x", "y"}, ids(items))
}

// TestSortByOrderWithDateFallback verifies unordered items fall back to newest first.
func TestSortByOrderWithDateFallback(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []model.Meta{
		meta("old", nil, base),
		meta("ordered", model.IntPtr(1), base),
		meta("new", nil, base.Add(48*time.Hour)),
		meta("first", model.IntPtr(0), base),
		meta("mid", nil, base.Add(24*time.Hour)),
	}

	got := ids(SortByOrderWithDateFallback(items))
	require.Equal(t, []string{"first", "ordered", "new", "mid", "old"}, got)
}

// TestFilterSystemDocuments verifies configuration singletons are removed by id.
func TestFilterSystemDocuments(t *testing.T) {
	docs := []*model.Document{
		model.NewDocument("categories", nil),
		model.NewDocument("p1", nil),
		model.NewDocument("labels", nil),
		model.NewDocument("operational-status", nil),
		model.NewDocument("total-amount", nil),
		model.NewDocument("p2", nil),
	}

	require.Equal(t, []string{"p1", "p2"}, ids(FilterSystemDocuments(docs, model.SystemDocumentIDs)))
}

// TestFilterIncomplete verifies a title in either language keeps the document.
func TestFilterIncomplete(t *testing.T) {
	docs := []*model.Document{
		model.NewDocument("ko", map[string]any{"titleKo": "테스트"}),
		model.NewDocument("en", map[string]any{"titleEn": "Test"}),
		model.NewDocument("blank", map[string]any{"titleKo": "  ", "titleEn": ""}),
		model.NewDocument("none", map[string]any{"image": "x.png"}),
	}

	got := FilterIncomplete(docs, [][]string{{"titleKo", "titleEn"}})
	require.Equal(t, []string{"ko", "en"}, ids(got))
}

// TestPartitionPinned verifies important items are split out and the rest sorted by date.
func TestPartitionPinned(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	items := []model.Article{
		{Meta: meta("a", nil, base), Title: "a"},
		{Meta: meta("pin", nil, base), Title: "pin", IsImportant: true},
		{Meta: meta("b", nil, base.Add(time.Hour)), Title: "b"},
		{Meta: meta("c", nil, base), Title: "c", PublishDate: "2024-06-01"},
	}

	pinned, normal := PartitionPinned(items)
	require.Equal(t, []string{"pin"}, ids(pinned))
	require.Equal(t, []string{"c", "b", "a"}, ids(normal))
}

// TestSortLeadership verifies category priority wins over order.
func TestSortLeadership(t *testing.T) {
	members := []model.LeadershipMember{
		{Meta: meta("p2", model.IntPtr(0), time.Time{}), Category: model.LeadershipPart2},
		{Meta: meta("m1", model.IntPtr(1), time.Time{}), Category: model.LeadershipManagement},
		{Meta: meta("p1", nil, time.Time{}), Category: model.LeadershipPart1},
		{Meta: meta("m0", model.IntPtr(0), time.Time{}), Category: model.LeadershipManagement},
		{Meta: meta("p1b", model.IntPtr(5), time.Time{}), Category: model.LeadershipPart1},
	}

	require.Equal(t, []string{"m0", "m1", "p1b", "p1", "p2"}, ids(SortLeadership(members)))
}
