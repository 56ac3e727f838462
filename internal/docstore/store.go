// Package docstore is the document database boundary. Callers address
// records by collection name and filter; identifiers and timestamps leave
// this package as plain strings and time.Time so they serialize as JSON.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrStorageUnavailable is returned when no database connection is configured
	ErrStorageUnavailable = errors.New("docstore: database not available, check DATABASE_URL and DATABASE_NAME")

	// ErrWriteFailed wraps driver errors raised while inserting
	ErrWriteFailed = errors.New("docstore: write failed")

	// ErrReadFailed wraps driver errors raised while reading
	ErrReadFailed = errors.New("docstore: read failed")

	// ErrInvalidLimit is returned for non-positive list limits
	ErrInvalidLimit = errors.New("docstore: limit must be positive")
)

const (
	fieldID        = "_id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Document is a JSON-safe record returned by List.
type Document map[string]any

// ID returns the string identifier of the document, if any.
func (d Document) ID() string {
	id, _ := d[fieldID].(string)
	return id
}

// Store persists and lists schema-less records.
type Store interface {
	Insert(ctx context.Context, collection string, record any) (string, error)
	List(ctx context.Context, collection string, filter Document, limit int) ([]Document, error)
	CollectionNames(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// Observer receives timing for every store call.
type Observer interface {
	ObserveStoreCall(operation, status string, seconds float64)
}

type nopObserver struct{}

func (nopObserver) ObserveStoreCall(string, string, float64) {}

// encodeRecord serializes record the way the driver would and stamps the
// audit timestamps. Existing timestamps on the record are overwritten.
func encodeRecord(record any, now time.Time) (bson.D, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil record", ErrWriteFailed)
	}
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: encode record: %w", ErrWriteFailed, err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode record: %w", ErrWriteFailed, err)
	}

	out := make(bson.D, 0, len(doc)+2)
	for _, elem := range doc {
		if elem.Key == fieldCreatedAt || elem.Key == fieldUpdatedAt {
			continue
		}
		out = append(out, elem)
	}
	// BSON datetimes carry millisecond precision.
	now = now.UTC().Truncate(time.Millisecond)
	out = append(out,
		bson.E{Key: fieldCreatedAt, Value: now},
		bson.E{Key: fieldUpdatedAt, Value: now},
	)
	return out, nil
}

// normalizeValue converts driver types into values encoding/json can
// serialize without custom marshalers.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	case time.Time:
		return val.UTC()
	case bson.D:
		doc := make(Document, len(val))
		for _, elem := range val {
			doc[elem.Key] = normalizeValue(elem.Value)
		}
		return doc
	case bson.M:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case Document:
		return normalizeMap(val)
	case bson.A:
		return normalizeSlice(val)
	case []any:
		return normalizeSlice(val)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalizeValue(item)
	}
	return out
}

func normalizeDocument(d bson.D) Document {
	return normalizeValue(d).(Document)
}

func observe(o Observer, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.ObserveStoreCall(op, status, time.Since(start).Seconds())
}
