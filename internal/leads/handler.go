package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/wolfman30/seo-expert-api/internal/docstore"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

// MaxLeadBodyBytes caps the size of a POST /lead body.
const MaxLeadBodyBytes = 64 << 10

// Submission outcomes reported to the Recorder.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Notifier is told about every stored lead. Failures are logged only.
type Notifier interface {
	NotifyLeadCreated(ctx context.Context, id string, lead *Lead) error
}

// Recorder counts submission outcomes.
type Recorder interface {
	ObserveSubmission(outcome string)
}

// Handler handles HTTP requests for leads
type Handler struct {
	store        docstore.Store
	validator    *Validator
	registry     Registry
	notifier     Notifier
	recorder     Recorder
	logger       *logging.Logger
	defaultLimit int
	maxLimit     int

	pending sync.WaitGroup
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotifier sends a notification after each stored lead.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithRecorder reports submission outcomes.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithLimits overrides the list defaults. Non-positive values are ignored.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(h *Handler) {
		if defaultLimit > 0 {
			h.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			h.maxLimit = maxLimit
		}
	}
}

// WithRegistry replaces the shapes served by the schema endpoint.
func WithRegistry(r Registry) Option {
	return func(h *Handler) { h.registry = r }
}

// NewHandler creates a new leads handler
func NewHandler(store docstore.Store, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		store:        store,
		validator:    NewValidator(),
		registry:     DefaultRegistry(),
		logger:       logger,
		defaultLimit: 10,
		maxLimit:     100,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.defaultLimit > h.maxLimit {
		h.defaultLimit = h.maxLimit
	}
	return h
}

// CreateLead handles POST /lead requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.validator.DecodeLead(http.MaxBytesReader(w, r.Body, MaxLeadBodyBytes))
	if err != nil {
		h.observe(OutcomeRejected)
		h.logger.Info("lead rejected", "error", err)
		writeValidationError(w, err)
		return
	}

	id, err := h.store.Insert(r.Context(), CollectionName, lead)
	if err != nil {
		h.observe(OutcomeFailed)
		h.logger.Error("failed to create lead", "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.observe(OutcomeCreated)
	h.logger.Info("lead created", "id", id, "source", *lead.Source)

	writeJSON(w, http.StatusOK, CreateLeadResponse{Status: "success", ID: id})
	h.notify(context.WithoutCancel(r.Context()), id, lead)
}

// notify hands the lead to the notifier in the background.
func (h *Handler) notify(ctx context.Context, id string, lead *Lead) {
	if h.notifier == nil {
		return
	}
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		if err := h.notifier.NotifyLeadCreated(ctx, id, lead); err != nil {
			h.logger.Warn("lead notification failed", "error", err, "id", id)
		}
	}()
}

// Drain waits for in-flight notifications to finish or ctx to end.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListLeads handles GET /leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeValidationError(w, &ValidationError{Issues: []FieldIssue{{
				Loc:  []string{"query", "limit"},
				Msg:  "Input should be a valid integer, unable to parse string as an integer",
				Type: "int_parsing",
			}}})
			return
		}
		if parsed < 1 {
			writeValidationError(w, &ValidationError{Issues: []FieldIssue{{
				Loc:  []string{"query", "limit"},
				Msg:  "Input should be greater than or equal to 1",
				Type: "greater_than_equal",
			}}})
			return
		}
		limit = min(parsed, h.maxLimit)
	}

	docs, err := h.store.List(r.Context(), CollectionName, nil, limit)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "limit", limit)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// Schema handles GET /schema requests
func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Describe())
}

func (h *Handler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveSubmission(outcome)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		verr = &ValidationError{Issues: []FieldIssue{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}}
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": verr.Issues})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
