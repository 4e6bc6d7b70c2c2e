package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeshift_runs_total",
		Help: "Finished pipeline runs by kind and final status",
	}, []string{"kind", "status"})

	runsInProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "codeshift_runs_in_progress",
		Help: "Pipeline runs currently executing",
	}, []string{"kind"})

	fileResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeshift_file_results_total",
		Help: "Per-file outcomes by pipeline stage",
	}, []string{"stage", "result"})

	remoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codeshift_remote_call_duration_seconds",
		Help:    "Duration of calls to remote transformation/deployment services",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})
)

// Результаты обработки файла для метрик.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// RunStarted отмечает начало запуска.
func RunStarted(kind string) {
	runsInProgress.WithLabelValues(kind).Inc()
}

// RunFinished отмечает завершение запуска с итоговым статусом.
func RunFinished(kind, status string) {
	runsInProgress.WithLabelValues(kind).Dec()
	runsTotal.WithLabelValues(kind, status).Inc()
}

// FileResult учитывает исход обработки одного файла на стадии.
func FileResult(stage string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	fileResultsTotal.WithLabelValues(stage, result).Inc()
}

// ObserveRemoteCall записывает длительность обращения к удалённому сервису.
//
//	defer telemetry.ObserveRemoteCall("transform", time.Now())
func ObserveRemoteCall(operation string, started time.Time) {
	remoteCallDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
