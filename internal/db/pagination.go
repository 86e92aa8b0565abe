package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// Pagination defaults and bounds shared by every collection.
const (
	DefaultLimit = 25
)

// SortOrder is the requested sort direction. Anything that is not a
// descending spelling is treated as ascending.
type SortOrder string

// Accepted sort order spellings.
const (
	SortAsc        SortOrder = "asc"
	SortAscending  SortOrder = "ascending"
	SortDesc       SortOrder = "desc"
	SortDescending SortOrder = "descending"
)

// Direction returns the Mongo sort direction for the order: 1 for
// ascending, -1 for descending. Unknown values coerce to ascending.
func (s SortOrder) Direction() int {
	switch SortOrder(strings.ToLower(string(s))) {
	case SortDesc, SortDescending:
		return -1
	default:
		return 1
	}
}

// PaginateOptions controls one page fetch. SortBy is a schema-level
// key; repositories remap it to a database path before calling
// FindPaginated.
type PaginateOptions struct {
	Limit     int
	Cursor    string
	SortBy    string
	SortOrder SortOrder
}

// PageInfo describes the window position of a returned page.
// NextCursor is non-nil iff HasNextPage.
type PageInfo struct {
	TotalData   int64
	HasNextPage bool
	NextCursor  *string
}

// PaginateResult is one page of documents plus its window metadata.
// len(Docs) is always <= the requested limit.
type PaginateResult[T any] struct {
	Docs     []T
	PageInfo PageInfo
}

// videoSortKeys remaps schema-level sort keys to video document paths.
var videoSortKeys = map[string]string{
	"id":                 "id",
	"title":              "title",
	"status":             "status",
	"scheduledStartTime": "timedata.scheduledStartTime",
	"startTime":          "timedata.startTime",
	"endTime":            "timedata.endTime",
	"lateBy":             "timedata.lateTime",
	"duration":           "timedata.duration",
	"publishedAt":        "timedata.publishedAt",
	"viewers":            "viewers",
	"peakViewers":        "peakViewers",
	"averageViewers":     "averageViewers",
	"channel_id":         "channel_id",
	"platform":           "platform",
}

// channelSortKeys remaps schema-level sort keys to channel document paths.
var channelSortKeys = map[string]string{
	"id":                         "id",
	"name":                       "name",
	"en_name":                    "en_name",
	"description":                "description",
	"publishedAt":                "publishedAt",
	"image":                      "thumbnail",
	"group":                      "group",
	"statistics.subscriberCount": "subscriberCount",
	"statistics.viewCount":       "viewCount",
	"statistics.videoCount":      "videoCount",
	"statistics.followerCount":   "followerCount",
	"platform":                   "platform",
}

// RemapVideoSortKey translates a schema sort key for video documents.
// The timeData.* spellings used by the GraphQL schema are accepted too.
// Unknown keys fall back to fallback.
func RemapVideoSortKey(key, fallback string) string {
	key = strings.TrimPrefix(strings.TrimPrefix(key, "timeData."), "timedata.")
	if mapped, ok := videoSortKeys[key]; ok {
		return mapped
	}
	return fallback
}

// RemapChannelSortKey translates a schema sort key for channel
// documents. Unknown keys fall back to fallback.
func RemapChannelSortKey(key, fallback string) string {
	if mapped, ok := channelSortKeys[key]; ok {
		return mapped
	}
	return fallback
}

// BuildSort produces the sort document for a page fetch: the mapped
// sort key plus an _id tiebreaker so ordering is deterministic across
// pages even when the sort key has duplicate values.
func BuildSort(sortKey string, order SortOrder) bson.D {
	sort := bson.D{{Key: sortKey, Value: order.Direction()}}
	if sortKey != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

// EncodeCursor serializes a cursor object to an opaque base64url
// token. The cursor object holds, in sort order, the resume document's
// values for each sort key.
func EncodeCursor(cursor bson.D) (string, error) {
	raw, err := bson.MarshalExtJSON(cursor, true, false)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses an opaque cursor token back into a cursor
// object, preserving key order.
func DecodeCursor(token string) (bson.D, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var cursor bson.D
	if err := bson.UnmarshalExtJSON(raw, true, &cursor); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	return cursor, nil
}

// BuildCursorFromDoc extracts the sort-key values of a raw document
// into a cursor object. Nested paths use dot notation.
func BuildCursorFromDoc(doc bson.Raw, sort bson.D) (bson.D, error) {
	cursor := make(bson.D, 0, len(sort))
	for _, entry := range sort {
		rv, err := doc.LookupErr(strings.Split(entry.Key, ".")...)
		var value interface{}
		if err == nil {
			if uerr := rv.Unmarshal(&value); uerr != nil {
				return nil, fmt.Errorf("build cursor: unmarshal %q: %w", entry.Key, uerr)
			}
		}
		// Missing fields resume as null, which sorts first.
		cursor = append(cursor, bson.E{Key: entry.Key, Value: value})
	}
	return cursor, nil
}

// BuildQueryFromCursor translates a cursor object into a resume
// predicate consistent with the sort order.
//
// For a cursor {createdAt: "2020-03-22", color: "blue", _id: 4} and a
// sort {createdAt: 1, color: -1, _id: 1}, documents strictly after the
// cursor satisfy any of:
//
//	{createdAt: {$gt: "2020-03-22"}}
//	{createdAt: {$eq: "2020-03-22"}, color: {$lt: "blue"}}
//	{createdAt: {$eq: "2020-03-22"}, color: {$eq: "blue"}, _id: {$gt: 4}}
func BuildQueryFromCursor(sort bson.D, cursor bson.D) bson.M {
	directions := make(map[string]int, len(sort))
	for _, entry := range sort {
		dir, _ := entry.Value.(int)
		directions[entry.Key] = dir
	}

	clauses := make([]bson.M, 0, len(cursor))
	for i, outer := range cursor {
		clause := bson.M{}
		for _, entry := range cursor[:i+1] {
			if entry.Key == outer.Key {
				op := "$gt"
				if directions[entry.Key] < 0 {
					op = "$lt"
				}
				clause[entry.Key] = bson.M{op: entry.Value}
				continue
			}
			clause[entry.Key] = bson.M{"$eq": entry.Value}
		}
		clauses = append(clauses, clause)
	}
	return bson.M{"$or": clauses}
}

// FindPaginated fetches one page from coll: limit+1 documents matching
// query in sortKey order (with _id tiebreaker), resuming after the
// cursor when one is given. The extra document only signals
// hasNextPage and is trimmed from the result.
//
// The total count runs concurrently against the same filter; a count
// failure degrades to 0 without failing the page fetch.
func FindPaginated[T any](ctx context.Context, coll *mongo.Collection, query bson.M, opts PaginateOptions) (PaginateResult[T], error) {
	log := logger.Named("db.paginate")

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	sort := BuildSort(opts.SortBy, opts.SortOrder)

	match := query
	if opts.Cursor != "" {
		cursor, err := DecodeCursor(opts.Cursor)
		if err != nil {
			return PaginateResult[T]{}, err
		}
		match = bson.M{"$and": bson.A{query, BuildQueryFromCursor(sort, cursor)}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: sort}},
		bson.D{{Key: "$limit", Value: limit + 1}},
	}

	countCh := make(chan int64, 1)
	go func() {
		total, err := coll.CountDocuments(ctx, query)
		if err != nil {
			log.Warn("count query failed, defaulting total to 0",
				zap.String("collection", coll.Name()),
				zap.Error(err),
			)
			total = 0
		}
		countCh <- total
	}()

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		<-countCh
		return PaginateResult[T]{}, fmt.Errorf("paginate %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	raws := make([]bson.Raw, 0, limit+1)
	for cur.Next(ctx) {
		doc := make(bson.Raw, len(cur.Current))
		copy(doc, cur.Current)
		raws = append(raws, doc)
	}
	if err := cur.Err(); err != nil {
		<-countCh
		return PaginateResult[T]{}, fmt.Errorf("paginate %s: %w", coll.Name(), err)
	}

	hasNext := len(raws) > limit
	if hasNext {
		raws = raws[:limit]
	}

	docs := make([]T, 0, len(raws))
	for _, raw := range raws {
		var doc T
		if err := bson.Unmarshal(raw, &doc); err != nil {
			<-countCh
			return PaginateResult[T]{}, fmt.Errorf("paginate %s: decode: %w", coll.Name(), err)
		}
		docs = append(docs, doc)
	}

	var nextCursor *string
	if hasNext && len(raws) > 0 {
		cursorObj, err := BuildCursorFromDoc(raws[len(raws)-1], sort)
		if err != nil {
			<-countCh
			return PaginateResult[T]{}, err
		}
		token, err := EncodeCursor(cursorObj)
		if err != nil {
			<-countCh
			return PaginateResult[T]{}, err
		}
		nextCursor = &token
	}

	total := <-countCh
	return PaginateResult[T]{
		Docs: docs,
		PageInfo: PageInfo{
			TotalData:   total,
			HasNextPage: nextCursor != nil,
			NextCursor:  nextCursor,
		},
	}, nil
}
