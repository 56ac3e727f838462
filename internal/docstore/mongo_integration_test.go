//go:build integration
// +build integration

package docstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: DATABASE_URL=mongodb://localhost:27017 go test -tags integration ./internal/docstore/
func newIntegrationStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("DATABASE_URL")
	if uri == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := Connect(ctx, uri, 10*time.Second)
	require.NoError(t, err)

	database := fmt.Sprintf("seo_expert_it_%d", time.Now().UnixNano())
	store := NewMongoStore(client, database)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(database).Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestMongoStoreInsertListRoundTrip(t *testing.T) {
	store := newIntegrationStore(t)
	obs := &recordingObserver{}
	store.observer = obs
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Ann", "Bob", "Cy"} {
		id, err := store.Insert(ctx, "lead", map[string]any{"name": name, "email": name + "@example.com", "phone": nil})
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9a-f]{24}$`, id)
		ids = append(ids, id)
	}

	docs, err := store.List(ctx, "lead", nil, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, ids[0], docs[0].ID())
	assert.Equal(t, "Ann", docs[0]["name"])
	assert.Contains(t, docs[0], "phone")
	assert.Nil(t, docs[0]["phone"])
	assert.IsType(t, time.Time{}, docs[0]["created_at"])

	filtered, err := store.List(ctx, "lead", Document{"name": "Cy"}, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[2], filtered[0].ID())

	names, err := store.CollectionNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "lead")

	assert.Equal(t, []string{
		"insert:ok", "insert:ok", "insert:ok",
		"list:ok", "list:ok",
		"list_collections:ok",
	}, obs.calls)
}

func TestMongoStoreListEmptyCollection(t *testing.T) {
	store := newIntegrationStore(t)

	docs, err := store.List(context.Background(), "lead", nil, 10)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
