package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	batches "refurb-cloud/internal/batches/domain"
	deviceapp "refurb-cloud/internal/devices/application"
	devices "refurb-cloud/internal/devices/domain"
	"refurb-cloud/internal/reports"
)

// Handler serves the device registry API under /api/v1/devices.
type Handler struct {
	ingest *deviceapp.IngestService
	repo   devices.Repository
}

// NewHandler constructs a handler.
func NewHandler(ingest *deviceapp.IngestService, repo devices.Repository) (*Handler, error) {
	if ingest == nil {
		return nil, errors.New("device handler: nil ingest service")
	}
	if repo == nil {
		return nil, errors.New("device handler: nil repository")
	}
	return &Handler{ingest: ingest, repo: repo}, nil
}

// ServeHTTP dispatches device routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/devices" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path == "/api/v1/devices/ingest" && r.Method == http.MethodPost:
		h.handleIngest(w, r)
	case strings.HasPrefix(path, "/api/v1/devices/") && r.Method == http.MethodGet:
		h.handleGet(w, r, strings.TrimPrefix(path, "/api/v1/devices/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := devices.Filter{
		Query:  r.URL.Query().Get("q"),
		Status: devices.DeviceStatus(r.URL.Query().Get("status")),
	}
	all, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]deviceResponse, 0, len(all))
	for _, device := range all {
		resp = append(resp, toResponse(device))
	}
	writeJSON(w, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, imei string) {
	device, err := h.repo.Get(r.Context(), imei)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, toResponse(device))
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batch_id")
	var readings []devices.Reading

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		parsed, err := reports.ParseReadings(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		readings = parsed
	} else {
		var req struct {
			BatchID  string `json:"batch_id"`
			Readings []struct {
				IMEI          string `json:"imei"`
				Model         string `json:"model"`
				BatteryHealth int    `json:"battery_health"`
				CycleCount    int    `json:"cycle_count"`
				FailCount     int    `json:"fail_count"`
				TesterName    string `json:"tester_name"`
			} `json:"readings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if batchID == "" {
			batchID = req.BatchID
		}
		for _, item := range req.Readings {
			readings = append(readings, devices.Reading{
				IMEI:          item.IMEI,
				Model:         item.Model,
				BatteryHealth: item.BatteryHealth,
				CycleCount:    item.CycleCount,
				FailCount:     item.FailCount,
				TesterName:    item.TesterName,
			})
		}
	}

	inserted, err := h.ingest.Ingest(r.Context(), batchID, readings)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]deviceResponse, 0, len(inserted))
	for _, device := range inserted {
		resp = append(resp, toResponse(device))
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"ingested": len(resp), "devices": resp})
}

type deviceResponse struct {
	IMEI          string    `json:"imei"`
	BatchID       string    `json:"batch_id"`
	Model         string    `json:"model"`
	BatteryHealth int       `json:"battery_health"`
	CycleCount    int       `json:"cycle_count"`
	FailCount     int       `json:"fail_count"`
	TesterName    string    `json:"tester_name"`
	UploadDate    time.Time `json:"upload_date"`
	ManualQCFlag  bool      `json:"manual_qc_flag"`
	Score         int       `json:"score"`
	Status        string    `json:"status"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	FaultType     string    `json:"fault_type,omitempty"`
}

func toResponse(device *devices.Device) deviceResponse {
	rec := device.Record()
	return deviceResponse{
		IMEI:          rec.IMEI,
		BatchID:       rec.BatchID,
		Model:         rec.Model,
		BatteryHealth: rec.BatteryHealth,
		CycleCount:    rec.CycleCount,
		FailCount:     rec.FailCount,
		TesterName:    rec.TesterName,
		UploadDate:    rec.UploadDate,
		ManualQCFlag:  rec.ManualQCFlag,
		Score:         rec.Score,
		Status:        string(rec.Status),
		AssignedTo:    rec.AssignedTo,
		FaultType:     rec.FaultType,
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devices.ErrDeviceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, devices.ErrDuplicateIMEI):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, batches.ErrBatchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, batches.ErrCounterOverflow):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, devices.ErrEmptyIMEI),
		errors.Is(err, devices.ErrEmptyModel),
		errors.Is(err, devices.ErrInvalidReading):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
