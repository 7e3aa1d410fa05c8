package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
)

// Entity is a typed document that can be sorted.
type Entity interface {
	ordering.Dated
	ordering.Identified
}

// Resource is the type-erased view of a Collection used by the admin API.
type Resource interface {
	Name() string
	ListAny(ctx context.Context) (any, error)
	GetAny(ctx context.Context, id string) (any, error)
	CreateJSON(ctx context.Context, body []byte) (any, error)
	UpdateJSON(ctx context.Context, id string, body []byte) (any, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

// Collection is a named, typed collection.
type Collection[T Entity] struct {
	name   string
	access *Access

	sort     func([]T) []T
	prepare  func(ctx context.Context, docs []*model.Document) ([]*model.Document, error)
	validate func(T) error
	onDelete func(ctx context.Context, item T)
	// required field groups a document needs to show on public pages
	required [][]string
}

// CollectionOption customizes a Collection.
type CollectionOption[T Entity] func(*Collection[T])

// WithSort replaces the default order-then-createdAt sort.
func WithSort[T Entity](sorter func([]T) []T) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.sort = sorter
	}
}

// WithPrepare rewrites raw documents before they are decoded.
func WithPrepare[T Entity](prepare func(ctx context.Context, docs []*model.Document) ([]*model.Document, error)) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.prepare = prepare
	}
}

// WithValidate rejects writes.
func WithValidate[T Entity](validate func(T) error) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.validate = validate
	}
}

// WithOnDelete runs after a successful delete.
func WithOnDelete[T Entity](fn func(ctx context.Context, item T)) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.onDelete = fn
	}
}

// WithRequired sets the field groups ListComplete checks.
func WithRequired[T Entity](groups ...[]string) CollectionOption[T] {
	return func(c *Collection[T]) {
		c.required = groups
	}
}

// NewCollection binds name to access.
func NewCollection[T Entity](access *Access, name string, opts ...CollectionOption[T]) *Collection[T] {
	c := &Collection[T]{
		name:   name,
		access: access,
		sort:   ordering.SortByOrderWithDateFallback[T],
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the store collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) docs(ctx context.Context) ([]*model.Document, error) {
	r, err := c.access.GetAll(ctx, c.name, "", "")
	if err != nil {
		return nil, err
	}

	docs := r.Data
	if c.prepare != nil {
		if docs, err = c.prepare(ctx, docs); err != nil {
			return nil, errors.Wrapf(err, "prepare %s", c.name)
		}
	}

	return docs, nil
}

func (c *Collection[T]) decode(docs []*model.Document) []T {
	items, skipped := model.DecodeAll[T](docs)
	if len(skipped) > 0 {
		c.access.logger.Warn("skip malformed documents",
			zap.String("collection", c.name),
			zap.Strings("ids", skipped))
	}

	return c.sort(items)
}

// List returns every decodable item, sorted.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	docs, err := c.docs(ctx)
	if err != nil {
		return nil, err
	}

	return c.decode(docs), nil
}

// ListComplete is List without items missing a required display field.
func (c *Collection[T]) ListComplete(ctx context.Context) ([]T, error) {
	docs, err := c.docs(ctx)
	if err != nil {
		return nil, err
	}

	return c.decode(ordering.FilterIncomplete(docs, c.required)), nil
}

// Get loads one item, ErrNotFound when missing.
func (c *Collection[T]) Get(ctx context.Context, id string) (item T, err error) {
	r, err := c.access.GetOne(ctx, c.name, id)
	if err != nil {
		return item, err
	}
	if !r.Success {
		return item, errors.Wrapf(ErrNotFound, "%s/%s", c.name, id)
	}

	docs := []*model.Document{r.Data}
	if c.prepare != nil {
		if docs, err = c.prepare(ctx, docs); err != nil {
			return item, errors.Wrapf(err, "prepare %s", c.name)
		}
		if len(docs) == 0 {
			return item, errors.Wrapf(ErrNotFound, "%s/%s", c.name, id)
		}
	}

	return model.Decode[T](docs[0])
}

// Create stores item under a new id.
func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if c.validate != nil {
		if err := c.validate(item); err != nil {
			return zero, err
		}
	}

	data, err := model.ToData(item)
	if err != nil {
		return zero, errors.Wrap(err, "convert item")
	}
	r, err := c.access.Add(ctx, c.name, data)
	if err != nil {
		return zero, err
	}

	return model.Decode[T](r.Data)
}

// Update overwrites the fields of item on document id.
func (c *Collection[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var zero T
	if c.validate != nil {
		if err := c.validate(item); err != nil {
			return zero, err
		}
	}

	data, err := model.ToData(item)
	if err != nil {
		return zero, errors.Wrap(err, "convert item")
	}
	if _, err = c.access.Update(ctx, c.name, id, data); err != nil {
		return zero, err
	}

	return c.Get(ctx, id)
}

// Delete removes document id and runs the delete hook.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	var (
		item  T
		found bool
	)
	if c.onDelete != nil {
		if got, err := c.Get(ctx, id); err == nil {
			item, found = got, true
		}
	}

	if _, err := c.access.Delete(ctx, c.name, id); err != nil {
		return err
	}
	if found {
		c.onDelete(ctx, item)
	}

	return nil
}

// Reorder writes `order = index` for ids in one transaction.
func (c *Collection[T]) Reorder(ctx context.Context, ids []string) error {
	updates, err := orderUpdates(ids)
	if err != nil {
		return err
	}

	return c.access.BatchUpdate(ctx, c.name, updates)
}

func orderUpdates(ids []string) (map[string]map[string]any, error) {
	updates := make(map[string]map[string]any, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, validationf("empty id at %d", i)
		}
		if _, ok := updates[id]; ok {
			return nil, validationf("duplicated id %q", id)
		}
		updates[id] = map[string]any{model.FieldOrder: int64(i)}
	}

	return updates, nil
}

// ListAny implements Resource.
func (c *Collection[T]) ListAny(ctx context.Context) (any, error) {
	return c.List(ctx)
}

// GetAny implements Resource.
func (c *Collection[T]) GetAny(ctx context.Context, id string) (any, error) {
	return c.Get(ctx, id)
}

// CreateJSON implements Resource.
func (c *Collection[T]) CreateJSON(ctx context.Context, body []byte) (any, error) {
	var item T
	if err := gutils.JSON.Unmarshal(body, &item); err != nil {
		return nil, validationf("decode %s: %v", c.name, err)
	}

	return c.Create(ctx, item)
}

// UpdateJSON implements Resource.
func (c *Collection[T]) UpdateJSON(ctx context.Context, id string, body []byte) (any, error) {
	var item T
	if err := gutils.JSON.Unmarshal(body, &item); err != nil {
		return nil, validationf("decode %s: %v", c.name, err)
	}

	return c.Update(ctx, id, item)
}
