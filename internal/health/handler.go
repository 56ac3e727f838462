// Package health serves the liveness and database diagnostic routes. Neither
// route ever fails: store problems are reported in the body.
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

// ServiceName is reported by the liveness route.
const ServiceName = "seo-expert-api"

// Prober lists the collections of the backing database.
type Prober interface {
	CollectionNames(ctx context.Context) ([]string, error)
}

// Handler serves GET / and GET /test.
type Handler struct {
	prober Prober
	logger *logging.Logger
}

// NewHandler creates a health handler. A nil prober is reported as an
// unavailable database.
func NewHandler(prober Prober, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{prober: prober, logger: logger}
}

// Status is the liveness payload.
type Status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// DatabaseReport is the diagnostic payload. A connected report always
// carries a collections array; an unavailable one carries the error.
type DatabaseReport struct {
	Database    string
	Collections []string
	Error       string
}

// MarshalJSON emits only the fields that belong to the report's state.
func (d DatabaseReport) MarshalJSON() ([]byte, error) {
	if d.Database == "connected" {
		collections := d.Collections
		if collections == nil {
			collections = []string{}
		}
		return json.Marshal(struct {
			Database    string   `json:"database"`
			Collections []string `json:"collections"`
		}{d.Database, collections})
	}
	return json.Marshal(struct {
		Database string `json:"database"`
		Error    string `json:"error"`
	}{d.Database, d.Error})
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Status{Status: "ok", Service: ServiceName})
}

// TestDatabase handles GET /test
func (h *Handler) TestDatabase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.probe(r.Context()))
}

func (h *Handler) probe(ctx context.Context) (report DatabaseReport) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("database probe panicked", "panic", rec)
			report = DatabaseReport{Database: "unavailable", Error: "database probe failed"}
		}
	}()

	if h.prober == nil {
		return DatabaseReport{Database: "unavailable", Error: "database not configured"}
	}
	names, err := h.prober.CollectionNames(ctx)
	if err != nil {
		h.logger.Warn("database probe failed", "error", err)
		return DatabaseReport{Database: "unavailable", Error: err.Error()}
	}
	return DatabaseReport{Database: "connected", Collections: names}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
