package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"refurb-cloud/internal/analytics/application"
	analyticsinterfaces "refurb-cloud/internal/analytics/interfaces"
	assignmentapp "refurb-cloud/internal/assignment/application"
	assignmenthttp "refurb-cloud/internal/assignment/interfaces/http"
	"refurb-cloud/internal/audit"
	"refurb-cloud/internal/auth"
	batchapp "refurb-cloud/internal/batches/application"
	batchdomain "refurb-cloud/internal/batches/domain"
	batchmemory "refurb-cloud/internal/batches/infrastructure/memory"
	batchpostgres "refurb-cloud/internal/batches/infrastructure/postgres"
	batchhttp "refurb-cloud/internal/batches/interfaces/http"
	deviceapp "refurb-cloud/internal/devices/application"
	devicedomain "refurb-cloud/internal/devices/domain"
	devicememory "refurb-cloud/internal/devices/infrastructure/memory"
	devicepostgres "refurb-cloud/internal/devices/infrastructure/postgres"
	devicehttp "refurb-cloud/internal/devices/interfaces/http"
	"refurb-cloud/internal/eventing"
	"refurb-cloud/internal/observability/metrics"
	"refurb-cloud/internal/reports"
	techmemory "refurb-cloud/internal/technicians/infrastructure/memory"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	var deviceRepo devicedomain.Repository
	var batchRepo batchdomain.Repository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		deviceRepo = devicepostgres.NewDeviceRepository(db)
		batchRepo = batchpostgres.NewBatchRepository(db)
	} else {
		memDevices := devicememory.NewDeviceRepository()
		memBatches := batchmemory.NewBatchRepository()
		metrics.RegisterRegistryGauges(
			func() float64 { return float64(memDevices.Count()) },
			func() float64 { return float64(memBatches.CountActive()) },
		)
		deviceRepo = memDevices
		batchRepo = memBatches
	}

	techRepo := techmemory.NewTechnicianRepository(cfg.Technicians)
	auditLogger := audit.NewMemoryLogger(cfg.AuditRetention)

	bus := eventing.NewInMemoryBus()
	bus.Subscribe(eventing.EventTypeOf[deviceapp.DeviceClassified](), func(ctx context.Context, event any) error {
		evt, ok := event.(deviceapp.DeviceClassified)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		disposition := "manual qc"
		if evt.Passed {
			disposition = "auto pass"
		}
		logger.Printf("device classified: imei=%s batch=%s disposition=%s", evt.IMEI, evt.BatchID, disposition)
		return nil
	})

	batchService, err := batchapp.NewService(batchRepo)
	if err != nil {
		logger.Fatalf("batch service error: %v", err)
	}
	ingestService, err := deviceapp.NewIngestService(deviceRepo, batchService, bus, systemClock{})
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}
	assignmentService, err := assignmentapp.NewService(deviceRepo, batchRepo, techRepo)
	if err != nil {
		logger.Fatalf("assignment service error: %v", err)
	}
	dashboardService, err := application.NewDashboardService(batchRepo, deviceRepo)
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}

	reportCfg, err := reports.LoadConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}

	deviceHandler, err := devicehttp.NewHandler(ingestService, deviceRepo)
	if err != nil {
		logger.Fatalf("device handler error: %v", err)
	}
	batchHandler, err := batchhttp.NewHandler(batchService)
	if err != nil {
		logger.Fatalf("batch handler error: %v", err)
	}
	assignmentHandler, err := assignmenthttp.NewHandler(assignmentService, auditLogger)
	if err != nil {
		logger.Fatalf("assignment handler error: %v", err)
	}
	dashboardHandler, err := analyticsinterfaces.NewDashboardHandler(dashboardService)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}
	reportHandler, err := reports.NewHandler(reportCfg, batchRepo, deviceRepo, dashboardService)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/devices", deviceHandler)
	mux.Handle("/api/v1/devices/", deviceHandler)
	mux.Handle("/api/v1/batches", batchHandler)
	mux.Handle("/api/v1/batches/", batchHandler)
	mux.Handle("/api/v1/assignments", assignmentHandler)
	mux.Handle("/api/v1/assignments/", assignmentHandler)
	mux.Handle("/api/v1/dashboard", dashboardHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	Technicians    []string
	AuditRetention int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", ""),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		Technicians:    splitCSV(getenvDefault("TECHNICIANS", "Alice,Bob,Charlie")),
		AuditRetention: getenvIntDefault("AUDIT_RETENTION", 1000),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
