// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/models"
	analyzeemail "advisor-ai/internal/services/analyze-email"
	categorizeemail "advisor-ai/internal/services/categorize-email"
	"advisor-ai/internal/services/clients"
	generateresponse "advisor-ai/internal/services/generate-response"
	generatesummary "advisor-ai/internal/services/generate-summary"
	"advisor-ai/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
)

// ==========================
// Gmail session endpoints
// ==========================

func sessionCookie(t *testing.T, store session.Store) (string, *oauth2.Token) {
	t.Helper()
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}
	id, err := session.NewID()
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), id, tok))
	return "advisorai_session=" + id, tok
}

func TestAuthStatus(t *testing.T) {
	deps := newTestDeps(t)
	router := NewRouter(deps)

	w := perform(router, http.MethodGet, "/api/auth-status", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])

	w = perform(router, http.MethodGet, "/api/auth-status", nil, map[string]string{"Cookie": "advisorai_session=unknown"})
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])

	cookie, _ := sessionCookie(t, deps.Sessions)
	w = perform(router, http.MethodGet, "/api/auth-status", nil, map[string]string{"Cookie": cookie})
	assert.Equal(t, true, decodeBody(t, w)["authenticated"])
}

func TestInitializeAuth(t *testing.T) {
	gmail := new(MockMailClient)
	gmail.On("AuthURL", mock.MatchedBy(func(state string) bool { return len(state) == 32 })).
		Return("https://accounts.google.com/o/oauth2/auth?state=x")

	deps := newTestDeps(t)
	deps.Gmail = gmail
	w := perform(NewRouter(deps), http.MethodPost, "/api/auth/initialize", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=x", decodeBody(t, w)["authUrl"])
	gmail.AssertExpectations(t)
}

func TestGmailRedirect(t *testing.T) {
	gmail := new(MockMailClient)
	gmail.On("AuthURL", "").Return("https://accounts.google.com/o/oauth2/auth")

	deps := newTestDeps(t)
	deps.Gmail = gmail
	w := perform(NewRouter(deps), http.MethodGet, "/api/auth/gmail", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth", w.Header().Get("Location"))
}

func TestGmailCallback_NoCode(t *testing.T) {
	deps := newTestDeps(t)
	w := perform(NewRouter(deps), http.MethodGet, "/api/auth/gmail/callback", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"type":"gmail-auth-complete"`)
	assert.Contains(t, body, `"success":false`)
	assert.Contains(t, body, "No authorization code received")
	assert.Contains(t, body, "window.close()")
}

func TestGmailCallback_Success(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}
	gmail := new(MockMailClient)
	gmail.On("Exchange", mock.Anything, "auth-code").Return(tok, nil)
	gmail.On("Profile", mock.Anything, tok).Return(&gmailapi.Profile{EmailAddress: "advisor@example.com"}, nil)

	deps := newTestDeps(t)
	deps.Gmail = gmail
	store := deps.Sessions.(*session.MemoryStore)

	w := perform(NewRouter(deps), http.MethodGet, "/api/auth/gmail/callback?code=auth-code", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, 1, store.Len())

	setCookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, "advisorai_session=")
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "SameSite=Lax")
	assert.Contains(t, setCookie, "Max-Age=86400")
	gmail.AssertExpectations(t)
}

func TestGmailCallback_ProfileFailure(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "access"}
	gmail := new(MockMailClient)
	gmail.On("Exchange", mock.Anything, "auth-code").Return(tok, nil)
	gmail.On("Profile", mock.Anything, tok).Return(nil, errors.NewGmailAPIError("access Gmail API", stderrors.New("403")))

	deps := newTestDeps(t)
	deps.Gmail = gmail
	w := perform(NewRouter(deps), http.MethodGet, "/api/auth/gmail/callback?code=auth-code", nil, nil)

	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "Failed to access Gmail API")
}

func TestListEmails(t *testing.T) {
	gmail := new(MockMailClient)
	deps := newTestDeps(t)
	deps.Gmail = gmail
	router := NewRouter(deps)

	t.Run("not authenticated", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/api/emails", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeBody(t, w)["error"])
	})

	t.Run("lists messages", func(t *testing.T) {
		cookie, tok := sessionCookie(t, deps.Sessions)
		gmail.On("ListMessages", mock.Anything, mock.MatchedBy(func(got *oauth2.Token) bool {
			return got.AccessToken == tok.AccessToken
		})).Return(&gmailapi.ListMessagesResponse{
			Messages: []*gmailapi.Message{{Id: "m1", ThreadId: "t1"}},
		}, nil).Once()

		w := perform(router, http.MethodGet, "/api/emails", nil, map[string]string{"Cookie": cookie})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"m1"`)
	})

	t.Run("gmail failure", func(t *testing.T) {
		cookie, _ := sessionCookie(t, deps.Sessions)
		gmail.On("ListMessages", mock.Anything, mock.Anything).
			Return(nil, errors.NewGmailAPIError("fetch emails", stderrors.New("boom"))).Once()

		w := perform(router, http.MethodGet, "/api/emails", nil, map[string]string{"Cookie": cookie})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Failed to fetch emails", body["error"])
		assert.NotContains(t, body, "details")
	})
}

func TestCreateDraft(t *testing.T) {
	gmail := new(MockMailClient)
	deps := newTestDeps(t)
	deps.Gmail = gmail
	router := NewRouter(deps)
	cookie, _ := sessionCookie(t, deps.Sessions)

	gmail.On("CreateReplyDraft", mock.Anything, mock.Anything, "msg-1", "Thanks for reaching out").
		Return(&gmailapi.Draft{Id: "draft-1"}, nil)

	w := perform(router, http.MethodPost, "/api/drafts",
		strings.NewReader(`{"messageId":"msg-1","content":"Thanks for reaching out"}`),
		map[string]string{"Cookie": cookie})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "draft-1", decodeBody(t, w)["id"])

	w = perform(router, http.MethodPost, "/api/drafts", strings.NewReader(`{"content":"x"}`), map[string]string{"Cookie": cookie})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	deps := newTestDeps(t)
	router := NewRouter(deps)
	cookie, _ := sessionCookie(t, deps.Sessions)

	w := perform(router, http.MethodPost, "/api/auth/logout", nil, map[string]string{"Cookie": cookie})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, deps.Sessions.(*session.MemoryStore).Len())
}

// ==========================
// Generation endpoints
// ==========================

func TestGenerateResponse(t *testing.T) {
	gen := new(MockGenerator)
	deps := newTestDeps(t)
	deps.Generate = gen
	router := NewRouter(deps)

	t.Run("success", func(t *testing.T) {
		gen.On("Execute", mock.Anything, &generateresponse.Input{
			Prompt:        "Write a follow-up",
			ClientContext: "Client Name: Jane",
			ResponseType:  models.ResponseTypeEmail,
		}).Return(&generateresponse.Output{
			Summary:       "Follow-up",
			EmailResponse: "Dear Jane",
			Category:      "general",
			MissingInfo:   []string{},
		}, nil).Once()

		w := perform(router, http.MethodPost, "/api/generate",
			strings.NewReader(`{"prompt":"Write a follow-up","clientContext":"Client Name: Jane","responseType":"email"}`), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Dear Jane", body["emailResponse"])
		assert.Equal(t, "general", body["category"])
	})

	t.Run("missing parameters", func(t *testing.T) {
		gen.On("Execute", mock.Anything, mock.Anything).
			Return(nil, errors.NewValidationError("prompt and clientContext are required")).Once()

		w := perform(router, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":""}`), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required parameters", decodeBody(t, w)["error"])
	})

	t.Run("key not configured", func(t *testing.T) {
		gen.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.NewLLMNotConfiguredError()).Once()

		w := perform(router, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"a","clientContext":"b"}`), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "OpenAI API key is not configured", decodeBody(t, w)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := perform(router, http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":`), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateSummary_NeverPersists(t *testing.T) {
	sum := new(MockSummarizer)
	sum.On("Execute", mock.Anything, mock.MatchedBy(func(in *generatesummary.Input) bool {
		return !in.Persist && in.Client.ID == "c1"
	})).Return(&generatesummary.Output{Summary: "## Overview"}, nil)

	deps := newTestDeps(t)
	deps.Summarize = sum
	w := perform(NewRouter(deps), http.MethodPost, "/api/generate-summary",
		strings.NewReader(`{"client":{"id":"c1","name":"Jane"},"persist":true}`), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "## Overview", decodeBody(t, w)["summary"])
	sum.AssertExpectations(t)
}

func TestCategorizeEmail_InvalidCategory(t *testing.T) {
	cat := new(MockCategorizer)
	cat.On("Execute", mock.Anything, &categorizeemail.Input{
		EmailContent: "Please rebalance",
		Categories:   []string{"portfolio-review"},
	}).Return(nil, errors.NewInvalidCategoryError("weather"))

	deps := newTestDeps(t)
	deps.Categorize = cat
	w := perform(NewRouter(deps), http.MethodPost, "/api/analyze-email",
		strings.NewReader(`{"emailContent":"Please rebalance","categories":["portfolio-review"]}`), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to determine valid category", decodeBody(t, w)["error"])
}

// ==========================
// Clients
// ==========================

func TestListClients_PassesFilters(t *testing.T) {
	svc := new(MockClientService)
	svc.On("Search", mock.Anything, "advisor-1", clients.SearchFilter{
		Query:       "jane",
		Status:      models.ClientStatusActive,
		RiskProfile: models.RiskModerate,
	}).Return([]*models.Client{{ID: "c1", Name: "Jane"}}, nil)

	deps := newTestDeps(t)
	deps.Clients = svc
	w := perform(NewRouter(deps), http.MethodGet, "/api/clients?q=jane&status=active&risk_profile=moderate", nil,
		map[string]string{"Authorization": bearerToken(t, "advisor-1")})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"c1"`)
	svc.AssertExpectations(t)
}

func TestImportClients(t *testing.T) {
	csv := "name,email,portfolioValue,riskProfile\nJane,jane@example.com,1000,moderate\n"

	t.Run("multipart upload", func(t *testing.T) {
		svc := new(MockClientService)
		svc.On("Import", mock.Anything, "advisor-1", csv).
			Return(&clients.ImportResult{Imported: 1, Clients: []*models.Client{{ID: "c1"}}}, nil)
		deps := newTestDeps(t)
		deps.Clients = svc

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "clients.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(csv))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w := perform(NewRouter(deps), http.MethodPost, "/api/clients/import", &buf, map[string]string{
			"Authorization": bearerToken(t, "advisor-1"),
			"Content-Type":  mw.FormDataContentType(),
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, float64(1), decodeBody(t, w)["imported"])
	})

	t.Run("row errors are returned", func(t *testing.T) {
		rowErr := errors.NewInvalidRequestError("Validation errors found", "Row 2: Invalid email format")
		rowErr.Metadata = map[string]interface{}{"rows": []clients.RowError{{Row: 2, Errors: []string{"Invalid email format"}}}}

		svc := new(MockClientService)
		svc.On("Import", mock.Anything, "advisor-1", csv).Return(nil, rowErr)
		deps := newTestDeps(t)
		deps.Clients = svc

		w := perform(NewRouter(deps), http.MethodPost, "/api/clients/import", strings.NewReader(csv), map[string]string{
			"Authorization": bearerToken(t, "advisor-1"),
			"Content-Type":  "text/csv",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Validation errors found", body["error"])
		assert.Equal(t, "Row 2: Invalid email format", body["details"])
		assert.Len(t, body["rows"], 1)
	})

	t.Run("duplicates", func(t *testing.T) {
		svc := new(MockClientService)
		svc.On("Import", mock.Anything, "advisor-1", csv).
			Return(nil, errors.NewDuplicateClientError([]string{"jane@example.com"}))
		deps := newTestDeps(t)
		deps.Clients = svc

		w := perform(NewRouter(deps), http.MethodPost, "/api/clients/import", strings.NewReader(csv), map[string]string{
			"Authorization": bearerToken(t, "advisor-1"),
			"Content-Type":  "text/csv",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, []interface{}{"jane@example.com"}, decodeBody(t, w)["emails"])
	})
}

func TestClientRecords_ForeignClientIsNotFound(t *testing.T) {
	svc := new(MockClientService)
	svc.On("Get", mock.Anything, "advisor-1", "c9").Return(nil, errors.NewResourceNotFoundError("Client", "c9"))
	notes := new(MockNoteStore)

	deps := newTestDeps(t)
	deps.Clients = svc
	deps.Notes = notes
	w := perform(NewRouter(deps), http.MethodGet, "/api/clients/c9/notes", nil,
		map[string]string{"Authorization": bearerToken(t, "advisor-1")})

	assert.Equal(t, http.StatusNotFound, w.Code)
	notes.AssertNotCalled(t, "ListByClient")
}

func TestCreateNote(t *testing.T) {
	svc := new(MockClientService)
	svc.On("Get", mock.Anything, "advisor-1", "c1").Return(&models.Client{ID: "c1"}, nil)
	notes := new(MockNoteStore)
	notes.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Note) bool {
		return n.ClientID == "c1" && n.Content == "Called about retirement"
	})).Return(nil)

	deps := newTestDeps(t)
	deps.Clients = svc
	deps.Notes = notes
	router := NewRouter(deps)
	auth := map[string]string{"Authorization": bearerToken(t, "advisor-1")}

	w := perform(router, http.MethodPost, "/api/clients/c1/notes", strings.NewReader(`{"content":"Called about retirement"}`), auth)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "note-1", decodeBody(t, w)["id"])

	w = perform(router, http.MethodPost, "/api/clients/c1/notes", strings.NewReader(`{"content":"  "}`), auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_DefaultsPriority(t *testing.T) {
	svc := new(MockClientService)
	svc.On("Get", mock.Anything, "advisor-1", "c1").Return(&models.Client{ID: "c1"}, nil)
	tasks := new(MockTaskStore)
	tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
		return task.Priority == models.TaskPriorityMedium && task.Status == models.TaskStatusPending
	})).Return(nil)

	deps := newTestDeps(t)
	deps.Clients = svc
	deps.Tasks = tasks
	router := NewRouter(deps)
	auth := map[string]string{"Authorization": bearerToken(t, "advisor-1")}

	w := perform(router, http.MethodPost, "/api/clients/c1/tasks", strings.NewReader(`{"title":"Send KYC forms"}`), auth)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(router, http.MethodPatch, "/api/clients/c1/tasks/task-1/status", strings.NewReader(`{"status":"done"}`), auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	tasks.AssertNotCalled(t, "UpdateStatus")
}

func TestCreateSummary_BuildsInputFromRecords(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	client := &models.Client{
		ID:             "c1",
		Name:           "Jane",
		Surname:        "Doe",
		PortfolioValue: 250000,
		RiskProfile:    models.RiskModerate,
		Status:         models.ClientStatusActive,
	}

	svc := new(MockClientService)
	svc.On("Get", mock.Anything, "advisor-1", "c1").Return(client, nil)
	notes := new(MockNoteStore)
	notes.On("ListByClient", mock.Anything, "c1", 0).Return([]*models.Note{{Content: "Wants to retire at 60", CreatedAt: created}}, nil)
	tasks := new(MockTaskStore)
	tasks.On("ListByClient", mock.Anything, "c1", 0).Return([]*models.Task{}, nil)
	resps := new(MockResponseService)
	resps.On("List", mock.Anything, "advisor-1", "c1", 0).Return([]*models.Response{{Summary: "Review", Status: models.ResponseStatusApproved}}, nil)

	sum := new(MockSummarizer)
	sum.On("Execute", mock.Anything, mock.MatchedBy(func(in *generatesummary.Input) bool {
		return in.Persist &&
			in.Client.Name == "Jane" &&
			*in.Client.PortfolioValue == 250000 &&
			len(in.Notes) == 1 && in.Notes[0].Content == "Wants to retire at 60" &&
			len(in.Responses) == 1 && in.Responses[0].Status == "approved" &&
			len(in.Tasks) == 0
	})).Return(&generatesummary.Output{Summary: "## Jane", SummaryID: "s1"}, nil)

	deps := newTestDeps(t)
	deps.Clients = svc
	deps.Notes = notes
	deps.Tasks = tasks
	deps.Responses = resps
	deps.Summarize = sum

	w := perform(NewRouter(deps), http.MethodPost, "/api/clients/c1/summary", nil,
		map[string]string{"Authorization": bearerToken(t, "advisor-1")})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", decodeBody(t, w)["summaryId"])
	sum.AssertExpectations(t)
}

// ==========================
// Email analyses
// ==========================

func TestAnalyzeEmail_UsesAdvisorID(t *testing.T) {
	analyzer := new(MockAnalyzer)
	analyzer.On("Execute", mock.Anything, &analyzeemail.Input{EmailContent: "Hi", UserID: "advisor-1"}).
		Return(&analyzeemail.Output{AnalysisID: "a1", ClientID: "c1"}, nil)

	deps := newTestDeps(t)
	deps.Analyze = analyzer
	w := perform(NewRouter(deps), http.MethodPost, "/api/email-analyses", strings.NewReader(`{"emailContent":"Hi"}`),
		map[string]string{"Authorization": bearerToken(t, "advisor-1")})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a1", decodeBody(t, w)["analysisId"])
}

func TestGetEmailAnalysis_OtherAdvisor(t *testing.T) {
	analyses := new(MockAnalysisStore)
	analyses.On("Get", mock.Anything, "a1").Return(&models.EmailAnalysisRecord{ID: "a1", ClientID: "c1"}, nil)
	svc := new(MockClientService)
	svc.On("Get", mock.Anything, "advisor-2", "c1").Return(nil, errors.NewResourceNotFoundError("Client", "c1"))

	deps := newTestDeps(t)
	deps.Analyses = analyses
	deps.Clients = svc
	w := perform(NewRouter(deps), http.MethodGet, "/api/email-analyses/a1", nil,
		map[string]string{"Authorization": bearerToken(t, "advisor-2")})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Email analysis not found", decodeBody(t, w)["error"])
}

// ==========================
// Health
// ==========================

func TestReady(t *testing.T) {
	deps := newTestDeps(t)
	deps.Checks = map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return stderrors.New("connection refused") },
	}
	w := perform(NewRouter(deps), http.MethodGet, "/ready", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, "connection refused", checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(newTestDeps(t))
	perform(router, http.MethodGet, "/health", nil, nil)

	w := perform(router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "advisor_http_requests_total")
}
