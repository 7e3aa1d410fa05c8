package dao

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Add(ctx, model.ColNews, map[string]any{"title": "a", "tags": []any{"x"}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, model.ColNews, id)
	require.NoError(t, err)
	require.Equal(t, "a", doc.String("title"))

	// returned data is a copy
	doc.Data["title"] = "mutated"
	doc.Data["tags"].([]any)[0] = "y"
	doc, err = s.Get(ctx, model.ColNews, id)
	require.NoError(t, err)
	require.Equal(t, "a", doc.String("title"))
	require.Equal(t, []any{"x"}, doc.Data["tags"])

	require.NoError(t, s.Update(ctx, model.ColNews, id, map[string]any{"content": "c"}))
	doc, err = s.Get(ctx, model.ColNews, id)
	require.NoError(t, err)
	require.Equal(t, "a", doc.String("title"))
	require.Equal(t, "c", doc.String("content"))

	err = s.Update(ctx, model.ColNews, "missing", map[string]any{"x": 1})
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Set(ctx, model.ColContact, model.DocContactMain, map[string]any{"phone": "1"}))
	require.NoError(t, s.Set(ctx, model.ColContact, model.DocContactMain, map[string]any{"email": "e"}))
	doc, err = s.Get(ctx, model.ColContact, model.DocContactMain)
	require.NoError(t, err)
	require.Equal(t, "1", doc.String("phone"))
	require.Equal(t, "e", doc.String("email"))

	require.NoError(t, s.Delete(ctx, model.ColNews, id))
	require.NoError(t, s.Delete(ctx, model.ColNews, id))
	_, err = s.Get(ctx, model.ColNews, id)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, cat := range []string{"part1", "part2", "part1", "part1"} {
		data := map[string]any{"category": cat, "createdAt": base.Add(time.Duration(i) * time.Hour)}
		if i != 2 {
			data["order"] = int64(10 - i)
		}
		require.NoError(t, s.Set(ctx, model.ColLeadership, string(rune('a'+i)), data))
	}

	all, err := s.GetAll(ctx, model.ColLeadership, Query{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "a", all[0].ID)

	part1, err := s.GetAll(ctx, model.ColLeadership, Query{
		Conditions: []Condition{{Field: "category", Op: OpEqual, Value: "part1"}},
		OrderBy:    "order",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"d", "a", "c"}, docIDs(part1))

	newest, err := s.GetAll(ctx, model.ColLeadership, Query{OrderBy: "createdAt", Direction: Desc, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"d", "c"}, docIDs(newest))

	next, err := s.GetAll(ctx, model.ColLeadership, Query{OrderBy: "createdAt", Direction: Desc, Limit: 2, StartAfter: "c"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, docIDs(next))

	high, err := s.GetAll(ctx, model.ColLeadership, Query{
		Conditions: []Condition{{Field: "order", Op: OpGreaterEqual, Value: 9}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, docIDs(high))

	_, err = s.GetAll(ctx, model.ColLeadership, Query{Conditions: []Condition{{Field: "x", Op: "like"}}})
	require.Error(t, err)
}

func TestMemoryStoreBatchUpdateAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, model.ColLeadership, "a", map[string]any{"order": int64(5)}))
	require.NoError(t, s.Set(ctx, model.ColLeadership, "b", map[string]any{"order": int64(6)}))

	err := s.BatchUpdate(ctx, model.ColLeadership, map[string]map[string]any{
		"a":       {"order": int64(0)},
		"missing": {"order": int64(1)},
	})
	require.True(t, errors.Is(err, ErrNotFound))

	doc, err := s.Get(ctx, model.ColLeadership, "a")
	require.NoError(t, err)
	require.Equal(t, int64(5), doc.Data["order"])

	require.NoError(t, s.BatchUpdate(ctx, model.ColLeadership, map[string]map[string]any{
		"a": {"order": int64(1)},
		"b": {"order": int64(0)},
	}))
	doc, err = s.Get(ctx, model.ColLeadership, "b")
	require.NoError(t, err)
	require.Equal(t, int64(0), doc.Data["order"])
}

func TestMemoryStoreSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemoryStore()

	var (
		mu     sync.Mutex
		counts []int
	)
	stop, err := s.Subscribe(ctx, model.ColNews, Query{}, func(docs []*model.Document, err error) {
		require.NoError(t, err)
		mu.Lock()
		counts = append(counts, len(docs))
		mu.Unlock()
	})
	require.NoError(t, err)

	id, err := s.Add(ctx, model.ColNews, map[string]any{"title": "a"})
	require.NoError(t, err)
	_, err = s.Add(ctx, model.ColDisclosure, map[string]any{"title": "other"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, model.ColNews, id))

	stop()
	_, err = s.Add(ctx, model.ColNews, map[string]any{"title": "b"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 0}, counts)
}

func TestParseDirection(t *testing.T) {
	require.Equal(t, Desc, ParseDirection("desc"))
	require.Equal(t, Asc, ParseDirection(""))
	require.Equal(t, Asc, ParseDirection("DESC!"))
}

func docIDs(docs []*model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
