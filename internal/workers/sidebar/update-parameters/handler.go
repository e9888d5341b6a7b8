// internal/workers/sidebar/update-parameters/handler.go
package updateparameters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"chime-sidebar/internal/common/config"
	"chime-sidebar/internal/common/errors"
	"chime-sidebar/internal/common/logger"
	"chime-sidebar/internal/common/metrics"
	"chime-sidebar/internal/common/observability"
	"chime-sidebar/internal/sidebar"
	"chime-sidebar/internal/sidebar/parscache"
)

const TaskType = config.WorkerUpdateParameters

type Handler struct {
	config     *Config
	cache      *parscache.Store
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. cache may be nil, in which case Output
// carries no parsKey.
func NewHandler(config *Config, cache *parscache.Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if !config.CacheEnabled {
		cache = nil
	}
	return &Handler{
		config:     config,
		cache:      cache,
		obs:        obs,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	start := time.Now()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.finish(ctx, start, err)
		h.errHandler.HandleJobError(ctx, client, job, errors.NewParseError(err))
		return
	}

	output, err := h.Execute(ctx, &input)
	h.finish(ctx, start, err)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute coerces the raw values, assembles and serializes the model
// parameters and, when caching is on, stores the blob for export.
func (h *Handler) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "sidebar.update_parameters",
		attribute.String("task_type", TaskType),
		attribute.Int("input_count", len(input.InputValues)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(errors.Normalize(err).Code))
		}
		span.End()
		metrics.ObserveSubmission(metrics.OperationUpdateParameters, start, err)
	}()

	values, err := sidebar.Coerce(input.InputValues)
	if err != nil {
		return nil, err
	}

	pars, blob, err := sidebar.AssembleSerialized(values)
	if err != nil {
		return nil, err
	}

	out = &Output{Pars: pars, ParsSerialized: blob, SubmissionID: input.SubmissionID}
	if out.SubmissionID == "" {
		out.SubmissionID = uuid.NewString()
	}

	if h.cache != nil {
		key, cacheErr := h.cache.Put(ctx, blob)
		if cacheErr != nil {
			metrics.ParsCacheWrites.WithLabelValues("error").Inc()
			h.logger.Warn("pars cache write failed", map[string]interface{}{
				"submissionId": out.SubmissionID,
				"error":        cacheErr,
			})
		} else {
			metrics.ParsCacheWrites.WithLabelValues("stored").Inc()
			out.ParsKey = key
		}
	}

	return out, nil
}

func (h *Handler) finish(ctx context.Context, start time.Time, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}
	metrics.ObserveJob(TaskType, start, err)
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		h.errHandler.HandleJobError(ctx, client, job, errors.NewSerializationFailedError(err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"submissionId": output.SubmissionID,
		"parsKey":      output.ParsKey,
	})
}
