// Package service implements the content access layer and the domain
// operations of the site on top of a dao.Store.
package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/internal/web/content/dao"
	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/library/metrics"
)

// Access normalizes store calls into model.Result values and owns the
// `createdAt`/`updatedAt` stamps.
type Access struct {
	logger glog.Logger
	store  dao.Store
	now    func() time.Time
}

// NewAccess wraps store.
func NewAccess(logger glog.Logger, store dao.Store) *Access {
	return &Access{
		logger: logger,
		store:  store,
		now:    func() time.Time { return gutils.Clock.GetUTCNow() },
	}
}

// Store returns the underlying store.
func (a *Access) Store() dao.Store {
	return a.store
}

// GetAll lists a collection, an empty collection is a success with no items.
func (a *Access) GetAll(ctx context.Context, col, orderBy string, dir dao.Direction) (*model.Result[[]*model.Document], error) {
	docs, err := a.store.GetAll(ctx, col, dao.Query{OrderBy: orderBy, Direction: dir})
	if err != nil {
		return nil, errors.Wrapf(err, "get all of %s", col)
	}
	if docs == nil {
		docs = []*model.Document{}
	}

	r := model.OK(docs)
	r.Count = len(docs)
	return r, nil
}

// GetOne loads a document. A missing id is `Success=false` with no error.
func (a *Access) GetOne(ctx context.Context, col, id string) (*model.Result[*model.Document], error) {
	doc, err := a.store.Get(ctx, col, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return &model.Result[*model.Document]{}, nil
		}
		return nil, errors.Wrapf(err, "get %s/%s", col, id)
	}

	return model.OK(doc), nil
}

// Add stores data under a new id and returns the record with id and both stamps.
func (a *Access) Add(ctx context.Context, col string, data map[string]any) (*model.Result[*model.Document], error) {
	now := a.now()
	fields := copyFields(data)
	fields[model.FieldCreatedAt] = now
	fields[model.FieldUpdatedAt] = now

	id, err := a.store.Add(ctx, col, fields)
	if err != nil {
		return nil, errors.Wrapf(err, "add to %s", col)
	}
	metrics.ContentMutations.WithLabelValues(col, "add").Inc()

	return model.OK(model.NewDocument(id, fields)), nil
}

// Update shallow-merges partial and refreshes `updatedAt`.
// Existence is left to the store, which rejects missing ids.
func (a *Access) Update(ctx context.Context, col, id string, partial map[string]any) (*model.Result[*model.Document], error) {
	fields := copyFields(partial)
	fields[model.FieldUpdatedAt] = a.now()

	if err := a.store.Update(ctx, col, id, fields); err != nil {
		return nil, errors.Wrapf(err, "update %s/%s", col, id)
	}
	metrics.ContentMutations.WithLabelValues(col, "update").Inc()

	return model.OK(model.NewDocument(id, fields)), nil
}

// Set merges data into the document, creating it when absent.
// `createdAt` is stamped only on creation.
func (a *Access) Set(ctx context.Context, col, id string, data map[string]any) (*model.Result[*model.Document], error) {
	now := a.now()
	fields := copyFields(data)
	fields[model.FieldUpdatedAt] = now

	if _, err := a.store.Get(ctx, col, id); err != nil {
		if !errors.Is(err, dao.ErrNotFound) {
			return nil, errors.Wrapf(err, "check %s/%s", col, id)
		}
		fields[model.FieldCreatedAt] = now
	}

	if err := a.store.Set(ctx, col, id, fields); err != nil {
		return nil, errors.Wrapf(err, "set %s/%s", col, id)
	}
	metrics.ContentMutations.WithLabelValues(col, "set").Inc()

	return model.OK(model.NewDocument(id, fields)), nil
}

// Delete removes a document without checking it exists.
func (a *Access) Delete(ctx context.Context, col, id string) (*model.Result[string], error) {
	if err := a.store.Delete(ctx, col, id); err != nil {
		return nil, errors.Wrapf(err, "delete %s/%s", col, id)
	}
	metrics.ContentMutations.WithLabelValues(col, "delete").Inc()

	return model.OK(id), nil
}

// GetPage fetches pageSize documents after the document afterID.
// An empty afterID starts from the beginning.
func (a *Access) GetPage(ctx context.Context,
	col, orderBy string,
	dir dao.Direction,
	pageSize int,
	afterID string,
) (*model.Result[[]*model.Document], error) {
	if pageSize < 1 {
		return nil, validationf("page size %d", pageSize)
	}

	docs, err := a.store.GetAll(ctx, col, dao.Query{
		OrderBy:    orderBy,
		Direction:  dir,
		Limit:      pageSize,
		StartAfter: afterID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get page of %s", col)
	}

	r := model.OK(docs)
	r.Count = len(docs)
	return r, nil
}

// BatchUpdate applies every update in one transaction and refreshes their `updatedAt`.
func (a *Access) BatchUpdate(ctx context.Context, col string, updates map[string]map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	now := a.now()
	stamped := make(map[string]map[string]any, len(updates))
	for id, partial := range updates {
		fields := copyFields(partial)
		fields[model.FieldUpdatedAt] = now
		stamped[id] = fields
	}

	if err := a.store.BatchUpdate(ctx, col, stamped); err != nil {
		return errors.Wrapf(err, "batch update %s", col)
	}
	metrics.ContentMutations.WithLabelValues(col, "batch").Add(float64(len(updates)))

	return nil
}

// Subscribe pushes a Result on every change of col. Listener failures are
// pushed as `Success=false` results with Error set.
func (a *Access) Subscribe(ctx context.Context,
	col string,
	fn func(*model.Result[[]*model.Document]),
	conditions []dao.Condition,
	orderBy string,
) (unsubscribe func(), err error) {
	stop, err := a.store.Subscribe(ctx, col, dao.Query{Conditions: conditions, OrderBy: orderBy},
		func(docs []*model.Document, err error) {
			if err != nil {
				a.logger.Warn("subscription broken", zap.String("collection", col), zap.Error(err))
				fn(model.Fail[[]*model.Document](err))
				return
			}
			if docs == nil {
				docs = []*model.Document{}
			}
			r := model.OK(docs)
			r.Count = len(docs)
			fn(r)
		})
	if err != nil {
		fn(model.Fail[[]*model.Document](err))
		return func() {}, errors.Wrapf(err, "subscribe %s", col)
	}

	return stop, nil
}

func copyFields(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		if k == model.FieldID {
			continue
		}
		out[k] = v
	}

	return out
}
