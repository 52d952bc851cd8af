package reports

import (
	"errors"
	"net/http"
	"time"

	"refurb-cloud/internal/analytics/application"
	batches "refurb-cloud/internal/batches/domain"
	devices "refurb-cloud/internal/devices/domain"
	"refurb-cloud/internal/observability/metrics"
)

// Handler serves report exports under /api/v1/reports.
type Handler struct {
	cfg       Config
	batchRepo batches.Repository
	devRepo   devices.Repository
	dashboard *application.DashboardService
}

// NewHandler constructs a handler.
func NewHandler(cfg Config, batchRepo batches.Repository, devRepo devices.Repository, dashboard *application.DashboardService) (*Handler, error) {
	if batchRepo == nil || devRepo == nil {
		return nil, errors.New("report handler: nil repository")
	}
	if dashboard == nil {
		return nil, errors.New("report handler: nil dashboard service")
	}
	return &Handler{cfg: cfg, batchRepo: batchRepo, devRepo: devRepo, dashboard: dashboard}, nil
}

// ServeHTTP dispatches report routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/reports/batches.csv":
		h.export(w, r, "csv", h.writeBatchesCSV)
	case "/api/v1/reports/devices.csv":
		h.export(w, r, "csv", h.writeDevicesCSV)
	case "/api/v1/reports/inventory.xlsx":
		h.export(w, r, "xlsx", h.writeInventoryXLSX)
	case "/api/v1/reports/summary.pdf":
		h.export(w, r, "pdf", h.writeSummaryPDF)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, format string, write func(http.ResponseWriter, *http.Request) error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	if !h.cfg.FormatAllowed(format) {
		result = metrics.ResultError
		http.Error(w, "format disabled", http.StatusForbidden)
		return
	}
	if err := write(w, r); err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) batchRows(r *http.Request) ([]BatchRow, error) {
	all, err := h.batchRepo.List(r.Context())
	if err != nil {
		return nil, err
	}
	rows := BatchRows(all)
	if len(rows) > h.cfg.MaxExportRows {
		rows = rows[:h.cfg.MaxExportRows]
	}
	return rows, nil
}

func (h *Handler) deviceRows(r *http.Request) ([]DeviceRow, error) {
	all, err := h.devRepo.List(r.Context(), devices.Filter{})
	if err != nil {
		return nil, err
	}
	rows := DeviceRows(all)
	if len(rows) > h.cfg.MaxExportRows {
		rows = rows[:h.cfg.MaxExportRows]
	}
	return rows, nil
}

func (h *Handler) writeBatchesCSV(w http.ResponseWriter, r *http.Request) error {
	rows, err := h.batchRows(r)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report_batches.csv"`)
	return WriteBatchesCSV(w, rows)
}

func (h *Handler) writeDevicesCSV(w http.ResponseWriter, r *http.Request) error {
	rows, err := h.deviceRows(r)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report_devices.csv"`)
	return WriteDevicesCSV(w, rows)
}

func (h *Handler) writeInventoryXLSX(w http.ResponseWriter, r *http.Request) error {
	batchRows, err := h.batchRows(r)
	if err != nil {
		return err
	}
	var deviceRows []DeviceRow
	if h.cfg.IncludeDevices {
		deviceRows, err = h.deviceRows(r)
		if err != nil {
			return err
		}
	}
	payload, err := BuildInventoryXLSX(batchRows, deviceRows)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	_, err = w.Write(payload)
	return err
}

func (h *Handler) writeSummaryPDF(w http.ResponseWriter, r *http.Request) error {
	snapshot, err := h.dashboard.Snapshot(r.Context())
	if err != nil {
		return err
	}
	batchRows, err := h.batchRows(r)
	if err != nil {
		return err
	}
	payload, err := BuildSummaryPDF(h.cfg.Title, snapshot, batchRows, time.Now().UTC())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.pdf"`)
	_, err = w.Write(payload)
	return err
}
