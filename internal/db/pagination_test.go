package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSortOrderDirection(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  int
	}{
		{SortAsc, 1},
		{SortAscending, 1},
		{SortDesc, -1},
		{SortDescending, -1},
		{SortOrder("DESC"), -1},
		{SortOrder("banana"), 1},
		{SortOrder(""), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.order.Direction(), "order %q", tt.order)
	}
}

func TestRemapVideoSortKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"direct field", "title", "title"},
		{"nested time field", "startTime", "timedata.startTime"},
		{"schema alias lateBy", "lateBy", "timedata.lateTime"},
		{"timeData prefix stripped", "timeData.endTime", "timedata.endTime"},
		{"unknown falls back", "nope", "timedata.startTime"},
		{"empty falls back", "", "timedata.startTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemapVideoSortKey(tt.key, "timedata.startTime"))
		})
	}
}

func TestRemapChannelSortKey(t *testing.T) {
	assert.Equal(t, "thumbnail", RemapChannelSortKey("image", "name"))
	assert.Equal(t, "subscriberCount", RemapChannelSortKey("statistics.subscriberCount", "name"))
	assert.Equal(t, "name", RemapChannelSortKey("whatever", "name"))
}

func TestBuildSort(t *testing.T) {
	t.Run("appends id tiebreaker", func(t *testing.T) {
		sort := BuildSort("viewers", SortDesc)
		require.Len(t, sort, 2)
		assert.Equal(t, bson.E{Key: "viewers", Value: -1}, sort[0])
		assert.Equal(t, bson.E{Key: "_id", Value: 1}, sort[1])
	})

	t.Run("no duplicate id key", func(t *testing.T) {
		sort := BuildSort("_id", SortAsc)
		require.Len(t, sort, 1)
		assert.Equal(t, bson.E{Key: "_id", Value: 1}, sort[0])
	})
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := bson.D{
		{Key: "timedata.startTime", Value: int64(1601424000)},
		{Key: "_id", Value: "abc123"},
	}

	token, err := EncodeCursor(cursor)
	require.NoError(t, err)
	assert.NotContains(t, token, "=", "token should be unpadded base64url")

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "timedata.startTime", decoded[0].Key)
	assert.EqualValues(t, 1601424000, decoded[0].Value)
	assert.Equal(t, "_id", decoded[1].Key)
	assert.Equal(t, "abc123", decoded[1].Value)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("!!! not base64 !!!")
	assert.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24")
	assert.Error(t, err)
}

func TestBuildCursorFromDoc(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":   "xyz",
		"title": "stream",
		"timedata": bson.M{
			"startTime": int64(1700000000),
		},
	})
	require.NoError(t, err)

	sort := bson.D{
		{Key: "timedata.startTime", Value: 1},
		{Key: "missingField", Value: 1},
		{Key: "_id", Value: 1},
	}
	cursor, err := BuildCursorFromDoc(bson.Raw(raw), sort)
	require.NoError(t, err)
	require.Len(t, cursor, 3)
	assert.EqualValues(t, 1700000000, cursor[0].Value)
	assert.Nil(t, cursor[1].Value, "missing fields resume as null")
	assert.Equal(t, "xyz", cursor[2].Value)
}

func TestBuildQueryFromCursor(t *testing.T) {
	sort := bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "color", Value: -1},
		{Key: "_id", Value: 1},
	}
	cursor := bson.D{
		{Key: "createdAt", Value: "2020-03-22"},
		{Key: "color", Value: "blue"},
		{Key: "_id", Value: 4},
	}

	query := BuildQueryFromCursor(sort, cursor)
	clauses, ok := query["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, clauses, 3)

	assert.Equal(t, bson.M{"createdAt": bson.M{"$gt": "2020-03-22"}}, clauses[0])
	assert.Equal(t, bson.M{
		"createdAt": bson.M{"$eq": "2020-03-22"},
		"color":     bson.M{"$lt": "blue"},
	}, clauses[1])
	assert.Equal(t, bson.M{
		"createdAt": bson.M{"$eq": "2020-03-22"},
		"color":     bson.M{"$eq": "blue"},
		"_id":       bson.M{"$gt": 4},
	}, clauses[2])
}
