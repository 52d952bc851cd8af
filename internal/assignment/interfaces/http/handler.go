package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	assignmentapp "refurb-cloud/internal/assignment/application"
	"refurb-cloud/internal/audit"
	"refurb-cloud/internal/auth"
	batches "refurb-cloud/internal/batches/domain"
	devices "refurb-cloud/internal/devices/domain"
	technicians "refurb-cloud/internal/technicians/domain"
)

// Handler serves assignment operations under /api/v1/assignments.
type Handler struct {
	service     *assignmentapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *assignmentapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("assignment handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches assignment routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/assignments" && r.Method == http.MethodPost:
		h.handleAssign(w, r)
	case strings.HasPrefix(path, "/api/v1/assignments/") && strings.HasSuffix(path, "/complete") && r.Method == http.MethodPost:
		imei := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/assignments/"), "/complete")
		h.handleComplete(w, r, imei)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IMEI       string `json:"imei"`
		Technician string `json:"technician"`
		FaultType  string `json:"fault_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	result, err := h.service.Assign(r.Context(), req.IMEI, req.Technician, req.FaultType)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logAudit(r, "assignment.assign", req.IMEI, map[string]any{
		"technician": req.Technician,
		"fault_type": req.FaultType,
	})
	writeResult(w, result)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request, imei string) {
	result, err := h.service.Complete(r.Context(), imei)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logAudit(r, "assignment.complete", imei, nil)
	writeResult(w, result)
}

func writeResult(w http.ResponseWriter, result *assignmentapp.Result) {
	resp := map[string]any{
		"imei":        result.Device.IMEI(),
		"status":      string(result.Device.Status()),
		"assigned_to": result.Device.AssignedTo(),
		"batch": map[string]any{
			"id":        result.Batch.ID(),
			"assigned":  result.Batch.Assigned(),
			"completed": result.Batch.Completed(),
			"status":    string(result.Batch.Status()),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) logAudit(r *http.Request, action, imei string, metadata map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if metadata != nil {
		payload, _ = json.Marshal(metadata)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		ID:           audit.NewID(),
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "device",
		ResourceID:   imei,
		Metadata:     payload,
		CreatedAt:    time.Now().UTC(),
	})
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devices.ErrDeviceNotFound), errors.Is(err, batches.ErrBatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, technicians.ErrUnknownTechnician):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, devices.ErrAlreadyAssigned),
		errors.Is(err, devices.ErrAlreadyCompleted),
		errors.Is(err, batches.ErrCounterOverflow):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, devices.ErrEmptyIMEI), errors.Is(err, devices.ErrEmptyTechnician):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
