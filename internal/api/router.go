// Package api is the gin HTTP surface of the advisor backend: the Gmail inbox
// endpoints, the generation endpoints and the advisor CRUD routes.
package api

import (
	"context"
	"io"
	"net/http"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/observability"
	"advisor-ai/internal/models"
	analysisresponse "advisor-ai/internal/services/analysis-response"
	analyzeemail "advisor-ai/internal/services/analyze-email"
	categorizeemail "advisor-ai/internal/services/categorize-email"
	"advisor-ai/internal/services/clients"
	generateresponse "advisor-ai/internal/services/generate-response"
	generatesummary "advisor-ai/internal/services/generate-summary"
	"advisor-ai/internal/services/responses"
	"advisor-ai/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
)

// MailClient is the Gmail side of the inbox endpoints.
type MailClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, tok *oauth2.Token) (*gmailapi.Profile, error)
	ListMessages(ctx context.Context, tok *oauth2.Token) (*gmailapi.ListMessagesResponse, error)
	CreateReplyDraft(ctx context.Context, tok *oauth2.Token, messageID, content string) (*gmailapi.Draft, error)
}

type ResponseGenerator interface {
	Execute(ctx context.Context, input *generateresponse.Input) (*generateresponse.Output, error)
}

type SummaryGenerator interface {
	Execute(ctx context.Context, input *generatesummary.Input) (*generatesummary.Output, error)
}

type EmailCategorizer interface {
	Execute(ctx context.Context, input *categorizeemail.Input) (*categorizeemail.Output, error)
}

type EmailAnalyzer interface {
	Execute(ctx context.Context, input *analyzeemail.Input) (*analyzeemail.Output, error)
}

type AnalysisResponder interface {
	Execute(ctx context.Context, input *analysisresponse.Input) (*analysisresponse.Output, error)
}

type ClientService interface {
	Get(ctx context.Context, userID, id string) (*models.Client, error)
	Search(ctx context.Context, userID string, filter clients.SearchFilter) ([]*models.Client, error)
	Create(ctx context.Context, userID string, input *clients.CreateInput) (*models.Client, error)
	Update(ctx context.Context, userID, id string, update models.ClientUpdate) (*models.Client, error)
	Delete(ctx context.Context, userID, id string) error
	Import(ctx context.Context, userID string, r io.Reader) (*clients.ImportResult, error)
}

type ResponseService interface {
	Save(ctx context.Context, userID string, input *responses.SaveInput) (*models.Response, error)
	List(ctx context.Context, userID, clientID string, limit int) ([]*models.Response, error)
	UpdateStatus(ctx context.Context, userID, id string, status models.ResponseStatus) (*models.Response, error)
	Send(ctx context.Context, userID, id string, input *responses.SendInput) (*responses.SendOutput, error)
}

type NoteStore interface {
	Create(ctx context.Context, n *models.Note) error
	ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Note, error)
	Update(ctx context.Context, clientID, id, content string) (*models.Note, error)
	Delete(ctx context.Context, clientID, id string) error
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, clientID, id string, status models.TaskStatus) (*models.Task, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	ListByClient(ctx context.Context, clientID string) ([]*models.Document, error)
	Delete(ctx context.Context, clientID, id string) error
}

type SummaryStore interface {
	Latest(ctx context.Context, clientID string) (*models.ClientSummary, error)
}

type PromptStore interface {
	List(ctx context.Context) ([]*models.Prompt, error)
	Create(ctx context.Context, p *models.Prompt) error
	Update(ctx context.Context, p *models.Prompt) (*models.Prompt, error)
}

type AnalysisStore interface {
	Get(ctx context.Context, id string) (*models.EmailAnalysisRecord, error)
}

// Check is one dependency probed by /ready.
type Check func(ctx context.Context) error

type Dependencies struct {
	Config   *config.Config
	Logger   logger.Logger
	Sessions session.Store
	Gmail    MailClient
	Verifier TokenVerifier
	// Redis backs the rate limiter; nil disables it.
	Redis         redis.Cmdable
	Observability *observability.Observability

	Generate         ResponseGenerator
	Summarize        SummaryGenerator
	Categorize       EmailCategorizer
	Analyze          EmailAnalyzer
	AnalysisResponse AnalysisResponder

	Clients   ClientService
	Responses ResponseService
	Notes     NoteStore
	Tasks     TaskStore
	Documents DocumentStore
	Summaries SummaryStore
	Prompts   PromptStore
	Analyses  AnalysisStore

	Checks map[string]Check
}

type Handler struct {
	deps   Dependencies
	logger logger.Logger
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		deps:   deps,
		logger: deps.Logger.With(map[string]interface{}{"component": "api"}),
	}
}

// NewRouter wires middleware and every route onto a gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	h := NewHandler(deps)
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Observability.TraceExporter != "" && cfg.Observability.TraceExporter != "none" {
		r.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	}
	r.Use(RequestLogger(h.logger), Metrics(), CORS(cfg.Server))

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.Server.RateLimit.Enabled && deps.Redis != nil {
		api.Use(NewRateLimiter(deps.Redis, cfg.Server.RateLimit, h.logger).Middleware())
	}

	// Gmail session endpoints
	api.GET("/auth-status", h.AuthStatus)
	api.POST("/auth/initialize", h.InitializeAuth)
	api.GET("/auth/gmail", h.GmailRedirect)
	api.GET("/auth/gmail/callback", h.GmailCallback)
	api.POST("/auth/logout", h.Logout)
	api.GET("/emails", h.ListEmails)
	api.POST("/drafts", h.CreateDraft)

	// Generation
	api.POST("/generate", h.GenerateResponse)
	api.POST("/generate-summary", h.GenerateSummary)
	api.POST("/analyze-email", h.CategorizeEmail)
	api.GET("/prompts", h.ListPrompts)

	secured := api.Group("")
	secured.Use(h.RequireAdvisor())
	{
		secured.POST("/prompts/populate-analysis-response", h.PopulateAnalysisResponse)
		secured.POST("/prompts", h.CreatePrompt)
		secured.PUT("/prompts/:id", h.UpdatePrompt)

		secured.GET("/clients", h.ListClients)
		secured.POST("/clients", h.CreateClient)
		secured.POST("/clients/import", h.ImportClients)
		secured.GET("/clients/:id", h.GetClient)
		secured.PATCH("/clients/:id", h.UpdateClient)
		secured.DELETE("/clients/:id", h.DeleteClient)

		secured.GET("/clients/:id/notes", h.ListNotes)
		secured.POST("/clients/:id/notes", h.CreateNote)
		secured.PATCH("/clients/:id/notes/:noteId", h.UpdateNote)
		secured.DELETE("/clients/:id/notes/:noteId", h.DeleteNote)

		secured.GET("/clients/:id/tasks", h.ListTasks)
		secured.POST("/clients/:id/tasks", h.CreateTask)
		secured.PATCH("/clients/:id/tasks/:taskId/status", h.UpdateTaskStatus)

		secured.GET("/clients/:id/documents", h.ListDocuments)
		secured.POST("/clients/:id/documents", h.CreateDocument)
		secured.DELETE("/clients/:id/documents/:documentId", h.DeleteDocument)

		secured.GET("/clients/:id/responses", h.ListResponses)
		secured.POST("/clients/:id/responses", h.SaveResponse)
		secured.PATCH("/responses/:id/status", h.UpdateResponseStatus)
		secured.POST("/responses/:id/send", h.SendResponse)

		secured.POST("/clients/:id/summary", h.CreateSummary)
		secured.GET("/clients/:id/summary", h.LatestSummary)

		secured.POST("/email-analyses", h.AnalyzeEmail)
		secured.GET("/email-analyses/:id", h.GetEmailAnalysis)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
