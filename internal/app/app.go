// Package app connects the infrastructure and builds the services shared by
// the API server and the worker manager.
package app

import (
	"context"
	"fmt"
	"time"

	"advisor-ai/internal/common/aws"
	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/database"
	"advisor-ai/internal/common/errors"
	httpclient "advisor-ai/internal/common/http"
	"advisor-ai/internal/common/llm"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/repository"
	analysisresponse "advisor-ai/internal/services/analysis-response"
	analyzeemail "advisor-ai/internal/services/analyze-email"
	categorizeemail "advisor-ai/internal/services/categorize-email"
	"advisor-ai/internal/services/clients"
	generateresponse "advisor-ai/internal/services/generate-response"
	generatesummary "advisor-ai/internal/services/generate-summary"
	"advisor-ai/internal/services/responses"

	"github.com/prometheus/client_golang/prometheus"
)

// Options selects the optional backends a binary needs.
type Options struct {
	Redis bool
	Mail  bool
}

type Infrastructure struct {
	Postgres *database.PostgresClient
	Redis    *database.RedisClient
	Search   *database.ElasticsearchClient
	Repos    *repository.Repositories
	HTTP     *httpclient.Client
	LLM      *llm.Client

	// Mailer and Notifier stay nil when SES or SNS is disabled.
	Mailer   responses.Mailer
	Notifier analyzeemail.Notifier
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// between attempts.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		fields := map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		}
		if stdErr, ok := errors.As(err); ok && stdErr.Details != "" {
			fields["details"] = stdErr.Details
		}
		log.Warn(operationName+" failed, retrying", fields)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operationName, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Connect opens Postgres, and Redis, Elasticsearch and AWS clients as configured.
func Connect(ctx context.Context, cfg *config.Config, opts Options, log logger.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	err := RetryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		infra.Postgres = pg
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	infra.Repos = repository.New(infra.Postgres.DB)
	if err := infra.Postgres.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		log.Warn("postgres pool metrics not registered", map[string]interface{}{"error": err.Error()})
	}
	log.Info("PostgreSQL connected", nil)

	if opts.Redis {
		err := RetryWithBackoff(ctx, func() error {
			rc, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rc.Ping(ctx); err != nil {
				rc.Close()
				return err
			}
			infra.Redis = rc
			return nil
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			infra.Close()
			return nil, err
		}
		log.Info("Redis connected", nil)
	}

	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			infra.Close()
			return nil, err
		}
		index := clients.LoadConfig(cfg.Database.Elasticsearch).Index
		if err := es.EnsureIndex(ctx, index, clients.IndexMapping); err != nil {
			// Search falls back to filtering the advisor's list.
			log.Warn("Elasticsearch unavailable, client search disabled", map[string]interface{}{"error": err.Error()})
		} else {
			infra.Search = es
			log.Info("Elasticsearch index ready", map[string]interface{}{"index": index})
		}
	}

	infra.HTTP = httpclient.NewClient(config.GetDuration(cfg.APIs.OpenAI.Timeout) + 10*time.Second)
	infra.LLM = llm.NewClient(cfg.APIs.OpenAI, infra.HTTP.HTTPClient(), log)

	awsCfg := cfg.Integrations.AWS
	if opts.Mail && awsCfg.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, awsCfg.Region, awsCfg.SES.FromEmail)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Mailer = ses
	}
	if awsCfg.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, awsCfg.Region, awsCfg.SNS.TopicARN)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Notifier = sns
	}

	return infra, nil
}

func (i *Infrastructure) Close() {
	if i.Redis != nil {
		i.Redis.Close()
	}
	if i.Postgres != nil {
		i.Postgres.Close()
	}
}

type Services struct {
	Generate         *generateresponse.Service
	Summarize        *generatesummary.Service
	Categorize       *categorizeemail.Service
	Analyze          *analyzeemail.Service
	AnalysisResponse *analysisresponse.Service
	Clients          *clients.Service
	Responses        *responses.Service
}

func NewServices(cfg *config.Config, infra *Infrastructure, log logger.Logger) *Services {
	repos := infra.Repos
	openai := cfg.APIs.OpenAI

	clientDeps := clients.ServiceDependencies{
		Repo:   repos.Clients,
		InTx:   clients.PostgresTx(infra.Postgres.DB, repos.Clients),
		Logger: log.With(map[string]interface{}{"service": "clients"}),
	}
	if infra.Search != nil {
		clientDeps.Index = infra.Search
	}

	return &Services{
		Generate: generateresponse.NewService(generateresponse.ServiceDependencies{
			LLM:    infra.LLM,
			Logger: log.With(map[string]interface{}{"service": generateresponse.Operation}),
		}, generateresponse.LoadConfig(openai)),
		Summarize: generatesummary.NewService(generatesummary.ServiceDependencies{
			LLM:       infra.LLM,
			Summaries: repos.Summaries,
			Logger:    log.With(map[string]interface{}{"service": generatesummary.Operation}),
		}, generatesummary.LoadConfig(openai)),
		Categorize: categorizeemail.NewService(categorizeemail.ServiceDependencies{
			LLM:    infra.LLM,
			Logger: log.With(map[string]interface{}{"service": categorizeemail.Operation}),
		}, categorizeemail.LoadConfig(openai)),
		Analyze: analyzeemail.NewService(analyzeemail.ServiceDependencies{
			LLM:      infra.LLM,
			Clients:  repos.Clients,
			Analyses: repos.Analyses,
			Notifier: infra.Notifier,
			Logger:   log.With(map[string]interface{}{"service": analyzeemail.Operation}),
		}, analyzeemail.LoadConfig(openai)),
		AnalysisResponse: analysisresponse.NewService(analysisresponse.ServiceDependencies{
			Analyses:  repos.Analyses,
			Clients:   repos.Clients,
			Documents: repos.Documents,
			Notes:     repos.Notes,
			Tasks:     repos.Tasks,
			Logger:    log.With(map[string]interface{}{"service": "analysis-response"}),
		}),
		Clients: clients.NewService(clientDeps, clients.LoadConfig(cfg.Database.Elasticsearch)),
		Responses: responses.NewService(responses.ServiceDependencies{
			Responses: repos.Responses,
			Clients:   repos.Clients,
			Mailer:    infra.Mailer,
			Logger:    log.With(map[string]interface{}{"service": "responses"}),
		}),
	}
}
