package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/seo-expert-api/internal/docstore"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

type stubProber struct {
	names []string
	err   error
	panic bool
}

func (s stubProber) CollectionNames(context.Context) ([]string, error) {
	if s.panic {
		panic("driver exploded")
	}
	return s.names, s.err
}

func serve(t *testing.T, fn http.HandlerFunc, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	fn(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRootAlwaysOK(t *testing.T) {
	for _, prober := range []Prober{nil, stubProber{err: errors.New("down")}} {
		h := NewHandler(prober, logging.Discard())
		body := serve(t, h.Root, "/")
		assert.Equal(t, map[string]any{"status": "ok", "service": "seo-expert-api"}, body)
	}
}

func TestTestDatabaseConnected(t *testing.T) {
	h := NewHandler(stubProber{names: []string{"lead"}}, logging.Discard())
	body := serve(t, h.TestDatabase, "/test")
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, []any{"lead"}, body["collections"])
	assert.NotContains(t, body, "error")
}

func TestTestDatabaseConnectedEmpty(t *testing.T) {
	h := NewHandler(stubProber{}, logging.Discard())
	body := serve(t, h.TestDatabase, "/test")
	assert.Equal(t, []any{}, body["collections"])
}

func TestTestDatabaseUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		prober  Prober
		wantErr string
	}{
		{"no prober", nil, "database not configured"},
		{"no connection", docstore.NewMongoStore(nil, "seo_expert"), "database not available"},
		{"probe error", stubProber{err: errors.New("server selection timeout")}, "server selection timeout"},
		{"probe panic", stubProber{panic: true}, "database probe failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.prober, logging.Discard())
			body := serve(t, h.TestDatabase, "/test")
			assert.Equal(t, "unavailable", body["database"])
			assert.Contains(t, body["error"], tt.wantErr)
			assert.NotContains(t, body, "collections")
		})
	}
}
