package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter(t *testing.T) {
	filter := mongoFilter([]Condition{
		{Field: "category", Op: OpEqual, Value: "part1"},
		{Field: "order", Op: OpGreaterEqual, Value: 1},
		{Field: "order", Op: OpLess, Value: 5},
		{Field: "id", Op: OpNotEqual, Value: "x"},
	})

	require.Equal(t, "part1", filter["category"])
	require.Equal(t, bson.M{"$gte": 1, "$lt": 5}, filter["order"])
	require.Equal(t, bson.M{"$ne": "x", "$exists": true}, filter["_id"])
}

func TestToDocumentConvertsDriverTypes(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	doc := toDocument(bson.M{
		"_id":       "abc",
		"createdAt": primitive.NewDateTimeFromTime(created),
		"order":     int32(3),
		"details":   bson.M{"tenant": bson.M{"ko": "a"}},
		"images":    bson.A{bson.M{"url": "u"}},
	})

	require.Equal(t, "abc", doc.ID)
	require.NotContains(t, doc.Data, "_id")
	require.True(t, doc.CreatedTime().Equal(created))
	order, ok := doc.OrderValue()
	require.True(t, ok)
	require.Equal(t, 3, order)

	details := doc.Data["details"].(map[string]any)
	require.Equal(t, map[string]any{"ko": "a"}, details["tenant"])
	images := doc.Data["images"].([]any)
	require.Equal(t, map[string]any{"url": "u"}, images[0])
}

func TestToDocumentObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := toDocument(bson.M{"_id": oid})
	require.Equal(t, oid.Hex(), doc.ID)
}

func TestToBSON(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	out := toBSON(map[string]any{
		"id":        "dropped",
		"_id":       "dropped",
		"updatedAt": time.Date(2024, 1, 1, 9, 0, 0, 0, loc),
	})

	require.NotContains(t, out, "id")
	require.NotContains(t, out, "_id")
	require.Equal(t, time.UTC, out["updatedAt"].(time.Time).Location())
}
