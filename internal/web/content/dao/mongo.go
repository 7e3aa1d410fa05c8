package dao

import (
	"context"
	"sort"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/library/db/mongo"
)

const mongoIDKey = "_id"

// MongoStore keeps each collection as a mongo collection with string `_id`s.
//
// Filtering runs on the server, ordering and cursors are applied in process
// so missing fields sort the same way as the memory backend.
type MongoStore struct {
	logger glog.Logger
	db     mongo.DB
	newID  func() string
}

// NewMongoStore wraps a connected mongo handle.
func NewMongoStore(logger glog.Logger, db mongo.DB) *MongoStore {
	return &MongoStore{logger: logger, db: db, newID: uuid.NewString}
}

var mongoOps = map[string]string{
	OpNotEqual:     "$ne",
	OpLess:         "$lt",
	OpLessEqual:    "$lte",
	OpGreater:      "$gt",
	OpGreaterEqual: "$gte",
}

func mongoFilter(conds []Condition) bson.M {
	filter := bson.M{}
	for _, c := range conds {
		field := c.Field
		if field == model.FieldID {
			field = mongoIDKey
		}

		if c.Op == OpEqual {
			filter[field] = c.Value
			continue
		}
		sub, _ := filter[field].(bson.M)
		if sub == nil {
			sub = bson.M{}
		}
		if c.Op == OpNotEqual {
			sub["$exists"] = true
		}
		sub[mongoOps[c.Op]] = c.Value
		filter[field] = sub
	}

	return filter
}

// fromBSON turns driver types into the plain values the rest of the site uses.
func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromBSON(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromBSON(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	default:
		return v
	}
}

func toDocument(raw bson.M) *model.Document {
	data := fromBSON(raw).(map[string]any)
	id, _ := data[mongoIDKey].(string)
	delete(data, mongoIDKey)

	return model.NewDocument(id, data)
}

// toBSON keeps time values as UTC and drops `_id` from updates.
func toBSON(data map[string]any) bson.M {
	out := bson.M{}
	for k, v := range data {
		if k == mongoIDKey || k == model.FieldID {
			continue
		}
		if t, ok := v.(time.Time); ok {
			v = t.UTC()
		}
		out[k] = v
	}

	return out
}

func (s *MongoStore) find(ctx context.Context, col string, q Query) ([]*model.Document, error) {
	cur, err := s.db.GetCol(col).Find(ctx, mongoFilter(q.Conditions))
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", col)
	}

	var raws []bson.M
	if err = cur.All(ctx, &raws); err != nil {
		return nil, errors.Wrapf(err, "decode %s", col)
	}

	docs := make([]*model.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, toDocument(raw))
	}

	return docs, nil
}

// GetAll lists documents of col matching q.
func (s *MongoStore) GetAll(ctx context.Context, col string, q Query) ([]*model.Document, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	docs, err := s.find(ctx, col, Query{Conditions: q.Conditions})
	if err != nil {
		return nil, err
	}

	return applyQuery(docs, Query{OrderBy: q.OrderBy, Direction: q.Direction, StartAfter: q.StartAfter, Limit: q.Limit}), nil
}

// Get loads one document.
func (s *MongoStore) Get(ctx context.Context, col, id string) (*model.Document, error) {
	raw := bson.M{}
	if err := s.db.GetCol(col).FindOne(ctx, bson.M{mongoIDKey: id}).Decode(&raw); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s/%s", col, id)
		}
		return nil, errors.Wrapf(err, "get %s/%s", col, id)
	}

	doc := toDocument(raw)
	doc.ID = id
	return doc, nil
}

// Add inserts data under a fresh uuid.
func (s *MongoStore) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	id := s.newID()
	doc := toBSON(data)
	doc[mongoIDKey] = id
	if _, err := s.db.GetCol(col).InsertOne(ctx, doc); err != nil {
		return "", errors.Wrapf(err, "insert into %s", col)
	}

	return id, nil
}

// Update merges data into an existing document.
func (s *MongoStore) Update(ctx context.Context, col, id string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	ret, err := s.db.GetCol(col).UpdateOne(ctx, bson.M{mongoIDKey: id}, bson.M{"$set": toBSON(data)})
	if err != nil {
		return errors.Wrapf(err, "update %s/%s", col, id)
	}
	if ret.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "%s/%s", col, id)
	}

	return nil
}

// Set merges data into the document, creating it when absent.
// An empty data map is a no-op.
func (s *MongoStore) Set(ctx context.Context, col, id string, data map[string]any) error {
	fields := toBSON(data)
	if len(fields) == 0 {
		return nil
	}

	if _, err := s.db.GetCol(col).UpdateOne(ctx,
		bson.M{mongoIDKey: id},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	); err != nil {
		return errors.Wrapf(err, "upsert %s/%s", col, id)
	}

	return nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, col, id string) error {
	if _, err := s.db.GetCol(col).DeleteOne(ctx, bson.M{mongoIDKey: id}); err != nil {
		return errors.Wrapf(err, "delete %s/%s", col, id)
	}

	return nil
}

// BatchUpdate writes every update inside one session transaction.
// Transactions need a replica set deployment.
func (s *MongoStore) BatchUpdate(ctx context.Context, col string, updates map[string]map[string]any) error {
	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sess, err := s.db.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongoLib.SessionContext) (any, error) {
		for _, id := range ids {
			fields := toBSON(updates[id])
			if len(fields) == 0 {
				continue
			}
			ret, err := s.db.GetCol(col).UpdateOne(sc, bson.M{mongoIDKey: id}, bson.M{"$set": fields})
			if err != nil {
				return nil, errors.Wrapf(err, "update %s/%s", col, id)
			}
			if ret.MatchedCount == 0 {
				return nil, errors.Wrapf(ErrNotFound, "%s/%s", col, id)
			}
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrapf(err, "batch update %s", col)
	}

	return nil
}

// Subscribe watches the collection change stream and re-reads q on every event.
// Change streams need a replica set deployment.
func (s *MongoStore) Subscribe(ctx context.Context, col string, q Query, fn Listener) (func(), error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	stream, err := s.db.GetCol(col).Watch(ctx, mongoLib.Pipeline{})
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "watch %s", col)
	}

	go func() {
		defer stream.Close(context.Background())

		push := func() bool {
			docs, err := s.GetAll(ctx, col, q)
			if err != nil {
				if ctx.Err() == nil {
					fn(nil, err)
				}
				return false
			}
			fn(docs, nil)
			return true
		}

		if !push() {
			return
		}
		for stream.Next(ctx) {
			if !push() {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.Warn("mongo change stream broken", zap.String("collection", col), zap.Error(err))
			fn(nil, errors.Wrapf(err, "watch %s", col))
		}
	}()

	return cancel, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}
