package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"refurb-cloud/internal/analytics/application"
)

// DashboardHandler serves GET /api/v1/dashboard.
type DashboardHandler struct {
	service *application.DashboardService
}

// NewDashboardHandler constructs a handler.
func NewDashboardHandler(service *application.DashboardService) (*DashboardHandler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	return &DashboardHandler{service: service}, nil
}

// ServeHTTP computes and returns the current dashboard snapshot.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
