package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "refurb_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	ingestReadings *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	classifiedTotal *prometheus.CounterVec

	assignTotal   *prometheus.CounterVec
	assignLatency *prometheus.HistogramVec

	completeTotal *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestReadings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_readings_total",
				Help: "Total ingested diagnostic readings by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		classifiedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "classified_devices_total",
				Help: "Classified devices by disposition",
			},
			[]string{"disposition"},
		)

		assignTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "assignments_total",
				Help: "Total assignment operations by result",
			},
			[]string{"result"},
		)
		assignLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "assignment_latency_seconds",
				Help:    "Assignment latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		completeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "completions_total",
				Help: "Total device completion operations by result",
			},
			[]string{"result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			ingestReadings, ingestLatency,
			classifiedTotal,
			assignTotal, assignLatency,
			completeTotal,
			reportExportTotal, reportExportLatency,
		)
	})
}

// RegisterRegistryGauges exposes live registry sizes.
func RegisterRegistryGauges(deviceCount, activeBatches func() float64) {
	if deviceCount != nil {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "devices_total",
				Help: "Devices currently held in the registry",
			},
			deviceCount,
		))
	}
	if activeBatches != nil {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_batches",
				Help: "Batches not yet completed",
			},
			activeBatches,
		))
	}
}

// ObserveIngest records one ingest call.
func ObserveIngest(result string, readings int, elapsed time.Duration) {
	if ingestReadings == nil {
		return
	}
	ingestReadings.WithLabelValues(result).Add(float64(readings))
	ingestLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveClassified records one classified device.
func ObserveClassified(disposition string) {
	if classifiedTotal == nil {
		return
	}
	classifiedTotal.WithLabelValues(disposition).Inc()
}

// ObserveAssignment records one assignment operation.
func ObserveAssignment(result string, elapsed time.Duration) {
	if assignTotal == nil {
		return
	}
	assignTotal.WithLabelValues(result).Inc()
	assignLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveCompletion records one completion operation.
func ObserveCompletion(result string) {
	if completeTotal == nil {
		return
	}
	completeTotal.WithLabelValues(result).Inc()
}

// ObserveReportExport records one report export.
func ObserveReportExport(format, result string, elapsed time.Duration) {
	if reportExportTotal == nil {
		return
	}
	reportExportTotal.WithLabelValues(format, result).Inc()
	reportExportLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}
