// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"chime-sidebar/internal/common/errors"
)

const (
	OperationUpdateParameters = "update_parameters"
	OperationDownloadLink     = "download_link"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SidebarSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidebar_submissions_total",
			Help: "Sidebar submissions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	SidebarSubmissionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidebar_submission_errors_total",
			Help: "Rejected sidebar submissions by error code and field",
		},
		[]string{"operation", "error_code", "field"},
	)

	SidebarSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidebar_submission_duration_seconds",
			Help:    "Time spent coercing and transforming a submission",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"operation"},
	)

	ParsCacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidebar_pars_cache_writes_total",
			Help: "Parameter cache writes by result",
		},
		[]string{"result"},
	)
)

// ObserveSubmission records the outcome and latency of one submission.
func ObserveSubmission(operation string, start time.Time, err error) {
	SidebarSubmissionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		SidebarSubmissions.WithLabelValues(operation, OutcomeSuccess).Inc()
		return
	}
	SidebarSubmissions.WithLabelValues(operation, OutcomeFailure).Inc()
	all := errors.Flatten(err)
	if len(all) == 0 {
		SidebarSubmissionErrors.WithLabelValues(operation, string(errors.ErrCodeInternal), "").Inc()
		return
	}
	for _, stdErr := range all {
		SidebarSubmissionErrors.WithLabelValues(operation, string(stdErr.Code), stdErr.Field()).Inc()
	}
}

// ObserveJob records a finished worker job.
func ObserveJob(taskType string, start time.Time, err error) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	if err == nil {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, string(errors.Normalize(err).Code)).Inc()
}
