package dao

import (
	"context"
	"sort"

	fsSDK "cloud.google.com/go/firestore"
	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Laisky/amc-site/internal/web/content/model"
	fsDB "github.com/Laisky/amc-site/library/db/firestore"
)

// FirestoreStore is the default backend.
type FirestoreStore struct {
	logger glog.Logger
	db     *fsDB.DB
}

// NewFirestoreStore wraps a connected firestore client.
func NewFirestoreStore(logger glog.Logger, db *fsDB.DB) *FirestoreStore {
	return &FirestoreStore{logger: logger, db: db}
}

func (s *FirestoreStore) query(ctx context.Context, col string, q Query) (fsSDK.Query, error) {
	if err := checkQuery(q); err != nil {
		return fsSDK.Query{}, err
	}

	ref := s.db.Collection(col)
	query := ref.Query
	for _, c := range q.Conditions {
		path := c.Field
		if path == model.FieldID {
			path = fsSDK.DocumentID
			if id, ok := c.Value.(string); ok {
				c.Value = ref.Doc(id)
			}
		}
		query = query.Where(path, c.Op, c.Value)
	}

	switch {
	case q.OrderBy != "":
		dir := fsSDK.Asc
		if q.Direction == Desc {
			dir = fsSDK.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	case q.StartAfter != "":
		query = query.OrderBy(fsSDK.DocumentID, fsSDK.Asc)
	}

	if q.StartAfter != "" {
		snap, err := ref.Doc(q.StartAfter).Get(ctx)
		if err != nil {
			if fsDB.NotFound(err) {
				return fsSDK.Query{}, errors.Wrapf(ErrNotFound, "cursor %s/%s", col, q.StartAfter)
			}
			return fsSDK.Query{}, errors.Wrapf(err, "load cursor %s/%s", col, q.StartAfter)
		}
		query = query.StartAfter(snap)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	return query, nil
}

func fromSnapshots(snaps []*fsSDK.DocumentSnapshot) []*model.Document {
	docs := make([]*model.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, model.NewDocument(snap.Ref.ID, snap.Data()))
	}

	return docs
}

// GetAll lists documents of col matching q.
func (s *FirestoreStore) GetAll(ctx context.Context, col string, q Query) ([]*model.Document, error) {
	query, err := s.query(ctx, col, q)
	if err != nil {
		return nil, err
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", col)
	}

	return fromSnapshots(snaps), nil
}

// Get loads one document.
func (s *FirestoreStore) Get(ctx context.Context, col, id string) (*model.Document, error) {
	snap, err := s.db.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		if fsDB.NotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s/%s", col, id)
		}
		return nil, errors.Wrapf(err, "get %s/%s", col, id)
	}

	return model.NewDocument(snap.Ref.ID, snap.Data()), nil
}

// Add inserts data under a firestore generated id.
func (s *FirestoreStore) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	ref, _, err := s.db.Collection(col).Add(ctx, data)
	if err != nil {
		return "", errors.Wrapf(err, "add to %s", col)
	}

	return ref.ID, nil
}

func toUpdates(data map[string]any) []fsSDK.Update {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]fsSDK.Update, 0, len(keys))
	for _, k := range keys {
		// FieldPath keeps keys containing dots or dashes literal
		updates = append(updates, fsSDK.Update{FieldPath: []string{k}, Value: data[k]})
	}

	return updates
}

// Update merges data into an existing document, firestore rejects missing ids.
func (s *FirestoreStore) Update(ctx context.Context, col, id string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	if _, err := s.db.Collection(col).Doc(id).Update(ctx, toUpdates(data)); err != nil {
		if fsDB.NotFound(err) {
			return errors.Wrapf(ErrNotFound, "%s/%s", col, id)
		}
		return errors.Wrapf(err, "update %s/%s", col, id)
	}

	return nil
}

// Set merges data into the document, creating it when absent.
func (s *FirestoreStore) Set(ctx context.Context, col, id string, data map[string]any) error {
	if _, err := s.db.Collection(col).Doc(id).Set(ctx, data, fsSDK.MergeAll); err != nil {
		return errors.Wrapf(err, "set %s/%s", col, id)
	}

	return nil
}

// Delete removes a document.
func (s *FirestoreStore) Delete(ctx context.Context, col, id string) error {
	if _, err := s.db.Collection(col).Doc(id).Delete(ctx); err != nil {
		return errors.Wrapf(err, "delete %s/%s", col, id)
	}

	return nil
}

// BatchUpdate writes every update inside one transaction.
func (s *FirestoreStore) BatchUpdate(ctx context.Context, col string, updates map[string]map[string]any) error {
	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx *fsSDK.Transaction) error {
		for _, id := range ids {
			if len(updates[id]) == 0 {
				continue
			}
			if err := tx.Update(s.db.Collection(col).Doc(id), toUpdates(updates[id])); err != nil {
				return errors.Wrapf(err, "update %s/%s", col, id)
			}
		}
		return nil
	})
	if err != nil {
		if fsDB.NotFound(err) {
			return errors.Wrapf(ErrNotFound, "batch update %s", col)
		}
		return errors.Wrapf(err, "batch update %s", col)
	}

	return nil
}

// Subscribe listens to query snapshots until stop is called or ctx is done.
func (s *FirestoreStore) Subscribe(ctx context.Context, col string, q Query, fn Listener) (func(), error) {
	query, err := s.query(ctx, col, q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	it := query.Snapshots(ctx)
	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				s.logger.Warn("firestore snapshot listener broken", zap.String("collection", col), zap.Error(err))
				fn(nil, errors.Wrapf(err, "listen %s", col))
				return
			}

			snaps, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, errors.Wrapf(err, "read snapshot of %s", col))
				return
			}
			fn(fromSnapshots(snaps), nil)
		}
	}()

	return cancel, nil
}

// Close closes the firestore client.
func (s *FirestoreStore) Close(context.Context) error {
	return s.db.Close()
}
