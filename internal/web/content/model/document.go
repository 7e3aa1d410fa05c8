package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// Document is a schemaless record identified by an opaque id within a collection.
type Document struct {
	ID   string
	Data map[string]any
}

// NewDocument builds a document, a nil data map is replaced by an empty one.
func NewDocument(id string, data map[string]any) *Document {
	if data == nil {
		data = map[string]any{}
	}

	return &Document{ID: id, Data: data}
}

// MarshalJSON flattens the document into `{"id": ..., <fields>}`.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = v
	}
	out[FieldID] = d.ID

	return json.Marshal(out)
}

// DocID returns the document id.
func (d *Document) DocID() string {
	return d.ID
}

// OrderValue returns the numeric `order` field and whether it is present.
func (d *Document) OrderValue() (int, bool) {
	return toInt(d.Data[FieldOrder])
}

// CreatedTime returns `createdAt`, zero when absent.
func (d *Document) CreatedTime() time.Time {
	return toTime(d.Data[FieldCreatedAt])
}

// String returns a string field, empty when absent or not a string.
func (d *Document) String(field string) string {
	s, _ := d.Data[field].(string)
	return s
}

// HasValue reports whether field holds a non-empty value.
// Blank strings and empty slices count as empty.
func (d *Document) HasValue(field string) bool {
	switch v := d.Data[field].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				return true
			}
		}
		return false
	case []any:
		for _, e := range v {
			if s, ok := e.(string); !ok || strings.TrimSpace(s) != "" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}

	return 0, false
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		return ParseDate(t)
	}

	return time.Time{}
}

// ParseDate parses `YYYY-MM-DD` or RFC3339 strings, zero on failure.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// Decode converts a document into a typed entity through its json shape.
func Decode[T any](doc *Document) (T, error) {
	var out T
	raw, err := doc.MarshalJSON()
	if err != nil {
		return out, errors.Wrapf(err, "marshal document %q", doc.ID)
	}
	if err = json.Unmarshal(raw, &out); err != nil {
		return out, errors.Wrapf(err, "decode document %q", doc.ID)
	}

	return out, nil
}

// DecodeAll decodes documents, skipping ones that do not fit T.
// The ids of skipped documents are returned so callers can log them.
func DecodeAll[T any](docs []*Document) (items []T, skipped []string) {
	items = make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := Decode[T](doc)
		if err != nil {
			skipped = append(skipped, doc.ID)
			continue
		}
		items = append(items, item)
	}

	return items, skipped
}

// ToData converts an entity into storable fields.
//
// The id and both timestamps are dropped, the access layer owns them.
// Integral numbers become int64 so the store keeps them as integers.
func ToData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal entity")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	data := map[string]any{}
	if err = dec.Decode(&data); err != nil {
		return nil, errors.Wrap(err, "entity is not an object")
	}

	delete(data, FieldID)
	delete(data, FieldCreatedAt)
	delete(data, FieldUpdatedAt)

	return normalizeNumbers(data).(map[string]any), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}
