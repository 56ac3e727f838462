package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MongoStore stores documents in a MongoDB database. A MongoStore without a
// database handle reports ErrStorageUnavailable from every call.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	tracer   trace.Tracer
	observer Observer
	now      func() time.Time
}

// MongoOption customizes a MongoStore.
type MongoOption func(*MongoStore)

// WithObserver reports call latency to o.
func WithObserver(o Observer) MongoOption {
	return func(s *MongoStore) {
		if o != nil {
			s.observer = o
		}
	}
}

// Connect dials uri and verifies the primary is reachable within timeout.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrStorageUnavailable
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}
	return client, nil
}

// NewMongoStore wraps client. A nil client yields an unavailable store so
// the service can still boot and report its state on the diagnostics route.
func NewMongoStore(client *mongo.Client, database string, opts ...MongoOption) *MongoStore {
	s := &MongoStore{
		client:   client,
		tracer:   otel.Tracer("seo.internal.docstore.mongo"),
		observer: nopObserver{},
		now:      time.Now,
	}
	if client != nil && database != "" {
		s.db = client.Database(database)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert writes one document and returns its ObjectID as hex.
func (s *MongoStore) Insert(ctx context.Context, collection string, record any) (id string, err error) {
	start := time.Now()
	defer func() { observe(s.observer, "insert", start, err) }()

	if s.db == nil {
		return "", ErrStorageUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "docstore.mongo.insert", trace.WithAttributes(
		attribute.String("db.collection", collection),
	))
	defer span.End()

	doc, err := encodeRecord(record, s.now())
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrWriteFailed, err)
		recordSpanError(span, err)
		return "", err
	}

	switch v := res.InsertedID.(type) {
	case bson.ObjectID:
		return v.Hex(), nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// List returns at most limit documents matching filter in natural order.
func (s *MongoStore) List(ctx context.Context, collection string, filter Document, limit int) (docs []Document, err error) {
	start := time.Now()
	defer func() { observe(s.observer, "list", start, err) }()

	if s.db == nil {
		return nil, ErrStorageUnavailable
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	ctx, span := s.tracer.Start(ctx, "docstore.mongo.list", trace.WithAttributes(
		attribute.String("db.collection", collection),
		attribute.Int("db.limit", limit),
	))
	defer span.End()

	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, options.Find().SetLimit(int64(limit)))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrReadFailed, err)
		recordSpanError(span, err)
		return nil, err
	}

	var raw []bson.D
	if err := cursor.All(ctx, &raw); err != nil {
		err = fmt.Errorf("%w: %w", ErrReadFailed, err)
		recordSpanError(span, err)
		return nil, err
	}

	docs = make([]Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, normalizeDocument(d))
	}
	span.SetAttributes(attribute.Int("db.returned", len(docs)))
	return docs, nil
}

// CollectionNames lists the collections in the configured database.
func (s *MongoStore) CollectionNames(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { observe(s.observer, "list_collections", start, err) }()

	if s.db == nil {
		return nil, ErrStorageUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "docstore.mongo.list_collections")
	defer span.End()

	names, err = s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrReadFailed, err)
		recordSpanError(span, err)
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("docstore: disconnect: %w", err)
	}
	return nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
