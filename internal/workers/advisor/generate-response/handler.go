// internal/workers/advisor/generate-response/handler.go
package generateresponse

import (
	"context"
	"encoding/json"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/metrics"
	"advisor-ai/internal/common/validation"
	service "advisor-ai/internal/services/generate-response"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "advisor-generate-response"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["prompt", "clientContext"],
  "properties": {
    "prompt": {"type": "string", "minLength": 1},
    "clientContext": {"type": "string", "minLength": 1},
    "responseType": {"enum": ["email", "proposal"]}
  }
}`)

type Executor interface {
	Execute(ctx context.Context, input *service.Input) (*service.Output, error)
}

type Handler struct {
	config       *Config
	service      Executor
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig *config.Config
	Service   Executor
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.With(map[string]interface{}{"worker": TaskType})
	return &Handler{
		config:       createConfigFromAppConfig(opts.AppConfig),
		service:      opts.Service,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing generate response job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.service.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func parseInput(job entities.Job) (*service.Input, error) {
	raw := []byte(job.GetVariables())
	if result := inputSchema.ValidateJSON(raw); !result.Valid {
		return nil, errors.NewValidationError(result.Error())
	}

	var input service.Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInvalidRequestError("Failed to parse job variables", err.Error())
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *service.Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("Generated response", map[string]interface{}{
		"jobKey":   job.GetKey(),
		"category": output.Category,
		"missing":  len(output.MissingInfo),
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
