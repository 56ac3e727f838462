package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore keeps documents in process memory. Insertion order is the
// native list order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		now:         time.Now,
	}
}

// Insert appends record to collection and returns its generated id.
func (s *MemoryStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	doc, err := encodeRecord(record, s.now())
	if err != nil {
		return "", err
	}

	out := normalizeDocument(doc)
	if existing, ok := out[fieldID]; !ok || existing == nil {
		out[fieldID] = bson.NewObjectID().Hex()
	}

	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], out)
	s.mu.Unlock()

	return out.ID(), nil
}

// List returns up to limit documents whose top-level fields equal filter.
func (s *MemoryStore) List(ctx context.Context, collection string, filter Document, limit int) ([]Document, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	want := normalizeMap(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if len(out) == limit {
			break
		}
		if !matches(doc, want) {
			continue
		}
		out = append(out, copyDocument(doc))
	}
	return out, nil
}

// CollectionNames lists collections holding at least one document.
func (s *MemoryStore) CollectionNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name, docs := range s.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of documents in collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func matches(doc, filter Document) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
