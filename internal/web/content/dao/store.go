// Package dao contains the document store backends of the content site.
package dao

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Direction of an ordered query.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses `asc`/`desc`, anything else is ascending.
func ParseDirection(s string) Direction {
	if Direction(s) == Desc {
		return Desc
	}

	return Asc
}

// Comparison operators accepted in a Condition.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
)

// Condition is one field filter of a query.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Query narrows a collection read.
//
// Documents that lack OrderBy are returned last by the memory and mongo
// backends, firestore drops them.
type Query struct {
	OrderBy    string
	Direction  Direction
	Conditions []Condition
	// Limit caps the result size, zero means no limit.
	Limit int
	// StartAfter is the id of the last document of the previous page.
	StartAfter string
}

// Listener receives the full query result after every change of the collection.
// A non-nil error means the subscription is broken and no further calls follow.
type Listener func(docs []*model.Document, err error)

// Store is a schemaless document store.
type Store interface {
	// GetAll lists documents of col matching q.
	GetAll(ctx context.Context, col string, q Query) ([]*model.Document, error)
	// Get loads one document, ErrNotFound when absent.
	Get(ctx context.Context, col, id string) (*model.Document, error)
	// Add inserts data under a store assigned id.
	Add(ctx context.Context, col string, data map[string]any) (id string, err error)
	// Update shallow-merges data into an existing document.
	Update(ctx context.Context, col, id string, data map[string]any) error
	// Set merges data into the document, creating it when absent.
	Set(ctx context.Context, col, id string, data map[string]any) error
	// Delete removes a document, deleting a missing id is not an error.
	Delete(ctx context.Context, col, id string) error
	// BatchUpdate applies every update or none of them.
	BatchUpdate(ctx context.Context, col string, updates map[string]map[string]any) error
	// Subscribe calls fn with the current result and again on every change
	// until the returned stop func is called or ctx is done.
	Subscribe(ctx context.Context, col string, q Query, fn Listener) (stop func(), err error)
	Close(ctx context.Context) error
}

// ValidOp reports whether op is a supported comparison.
func ValidOp(op string) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}

	return false
}

func checkQuery(q Query) error {
	for _, c := range q.Conditions {
		if c.Field == "" {
			return errors.New("condition field is empty")
		}
		if !ValidOp(c.Op) {
			return errors.Errorf("unsupported operator %q", c.Op)
		}
	}
	if q.Limit < 0 {
		return errors.Errorf("negative limit %d", q.Limit)
	}

	return nil
}
