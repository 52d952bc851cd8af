package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	batchapp "refurb-cloud/internal/batches/application"
	batches "refurb-cloud/internal/batches/domain"
)

const dateLayout = "2006-01-02"

// Handler serves the batch registry API under /api/v1/batches.
type Handler struct {
	service *batchapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *batchapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("batch handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP dispatches batch routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/batches" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case path == "/api/v1/batches" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasPrefix(path, "/api/v1/batches/") && r.Method == http.MethodGet:
		h.handleGet(w, r, strings.TrimPrefix(path, "/api/v1/batches/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		Model       string `json:"model"`
		Source      string `json:"source"`
		Invoice     string `json:"invoice"`
		Quantity    int    `json:"quantity"`
		ArrivalDate string `json:"arrival_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	arrival := time.Now().UTC()
	if req.ArrivalDate != "" {
		parsed, err := time.Parse(dateLayout, req.ArrivalDate)
		if err != nil {
			http.Error(w, "invalid arrival_date", http.StatusBadRequest)
			return
		}
		arrival = parsed
	}

	batch, err := h.service.Create(r.Context(), batches.Input{
		ID:          req.ID,
		Type:        batches.BatchType(req.Type),
		Model:       req.Model,
		Source:      req.Source,
		Invoice:     req.Invoice,
		Quantity:    req.Quantity,
		ArrivalDate: arrival,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toResponse(batch))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]batchResponse, 0, len(all))
	for _, batch := range all {
		resp = append(resp, toResponse(batch))
	}
	writeJSON(w, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	batch, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, toResponse(batch))
}

type batchResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Model       string `json:"model"`
	Source      string `json:"source"`
	Invoice     string `json:"invoice"`
	Quantity    int    `json:"quantity"`
	ArrivalDate string `json:"arrival_date"`
	QCPass      int    `json:"qc_pass"`
	Defects     int    `json:"defects"`
	Assigned    int    `json:"assigned"`
	Completed   int    `json:"completed"`
	Status      string `json:"status"`
}

func toResponse(batch *batches.Batch) batchResponse {
	rec := batch.Record()
	return batchResponse{
		ID:          rec.ID,
		Type:        string(rec.Type),
		Model:       rec.Model,
		Source:      rec.Source,
		Invoice:     rec.Invoice,
		Quantity:    rec.Quantity,
		ArrivalDate: rec.ArrivalDate.Format(dateLayout),
		QCPass:      rec.QCPass,
		Defects:     rec.Defects,
		Assigned:    rec.Assigned,
		Completed:   rec.Completed,
		Status:      string(rec.Status),
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, batches.ErrInvalidInput), errors.Is(err, batches.ErrNegativeDelta):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, batches.ErrBatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, batches.ErrDuplicateID), errors.Is(err, batches.ErrCounterOverflow):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
