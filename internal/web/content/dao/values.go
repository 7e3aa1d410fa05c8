package dao

import (
	"cmp"
	"slices"
	"time"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// cloneValue deep-copies maps and slices so callers never share state with a backend.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneData(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneData(e)
		}
		return out
	default:
		return v
	}
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneDocs(docs []*model.Document) []*model.Document {
	out := make([]*model.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.NewDocument(d.ID, cloneData(d.Data)))
	}

	return out
}

// compareValues orders numbers, strings, times and bools.
// ok is false when a and b are not comparable.
func compareValues(a, b any) (c int, ok bool) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return cmp.Compare(af, bf), true
		}
		return 0, false
	}

	switch av := a.(type) {
	case string:
		if bv, bok := b.(string); bok {
			return cmp.Compare(av, bv), true
		}
	case time.Time:
		if bv, bok := b.(time.Time); bok {
			return av.Compare(bv), true
		}
	case bool:
		if bv, bok := b.(bool); bok {
			switch {
			case av == bv:
				return 0, true
			case !av:
				return -1, true
			}
			return 1, true
		}
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

// matches evaluates every condition of q against doc.
func matches(doc *model.Document, conds []Condition) bool {
	for _, c := range conds {
		v, exists := doc.Data[c.Field]
		if c.Field == model.FieldID {
			v, exists = doc.ID, true
		}

		switch c.Op {
		case OpEqual:
			if !exists || !equalValues(v, c.Value) {
				return false
			}
		case OpNotEqual:
			if !exists || equalValues(v, c.Value) {
				return false
			}
		default:
			if !exists {
				return false
			}
			r, ok := compareValues(v, c.Value)
			if !ok {
				return false
			}
			switch c.Op {
			case OpLess:
				if r >= 0 {
					return false
				}
			case OpLessEqual:
				if r > 0 {
					return false
				}
			case OpGreater:
				if r <= 0 {
					return false
				}
			case OpGreaterEqual:
				if r < 0 {
					return false
				}
			}
		}
	}

	return true
}

func equalValues(a, b any) bool {
	if r, ok := compareValues(a, b); ok {
		return r == 0
	}

	return a == nil && b == nil
}

// applyQuery filters, sorts and pages docs in memory.
func applyQuery(docs []*model.Document, q Query) []*model.Document {
	out := make([]*model.Document, 0, len(docs))
	for _, d := range docs {
		if matches(d, q.Conditions) {
			out = append(out, d)
		}
	}

	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b *model.Document) int {
			av, aok := fieldValue(a, q.OrderBy)
			bv, bok := fieldValue(b, q.OrderBy)
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			}

			r, _ := compareValues(av, bv)
			if q.Direction == Desc {
				return -r
			}
			return r
		})
	}

	if q.StartAfter != "" {
		idx := slices.IndexFunc(out, func(d *model.Document) bool { return d.ID == q.StartAfter })
		if idx < 0 {
			return []*model.Document{}
		}
		out = out[idx+1:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out
}

func fieldValue(doc *model.Document, field string) (any, bool) {
	if field == model.FieldID {
		return doc.ID, true
	}
	v, ok := doc.Data[field]
	if v == nil {
		return nil, false
	}

	return v, ok
}
