// internal/api/mocks_test.go
package api

import (
	"context"
	"io"

	"advisor-ai/internal/models"
	analyzeemail "advisor-ai/internal/services/analyze-email"
	categorizeemail "advisor-ai/internal/services/categorize-email"
	"advisor-ai/internal/services/clients"
	generateresponse "advisor-ai/internal/services/generate-response"
	generatesummary "advisor-ai/internal/services/generate-summary"
	"advisor-ai/internal/services/responses"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
)

// ==========================
// Mocks
// ==========================

type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockMailClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockMailClient) Profile(ctx context.Context, tok *oauth2.Token) (*gmailapi.Profile, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmailapi.Profile), args.Error(1)
}

func (m *MockMailClient) ListMessages(ctx context.Context, tok *oauth2.Token) (*gmailapi.ListMessagesResponse, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmailapi.ListMessagesResponse), args.Error(1)
}

func (m *MockMailClient) CreateReplyDraft(ctx context.Context, tok *oauth2.Token, messageID, content string) (*gmailapi.Draft, error) {
	args := m.Called(ctx, tok, messageID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmailapi.Draft), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Execute(ctx context.Context, input *generateresponse.Input) (*generateresponse.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generateresponse.Output), args.Error(1)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Execute(ctx context.Context, input *generatesummary.Input) (*generatesummary.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generatesummary.Output), args.Error(1)
}

type MockCategorizer struct {
	mock.Mock
}

func (m *MockCategorizer) Execute(ctx context.Context, input *categorizeemail.Input) (*categorizeemail.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*categorizeemail.Output), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Execute(ctx context.Context, input *analyzeemail.Input) (*analyzeemail.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzeemail.Output), args.Error(1)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Search(ctx context.Context, userID string, filter clients.SearchFilter) ([]*models.Client, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockClientService) Create(ctx context.Context, userID string, input *clients.CreateInput) (*models.Client, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, userID, id string, update models.ClientUpdate) (*models.Client, error) {
	args := m.Called(ctx, userID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockClientService) Import(ctx context.Context, userID string, r io.Reader) (*clients.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, userID, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ImportResult), args.Error(1)
}

type MockResponseService struct {
	mock.Mock
}

func (m *MockResponseService) Save(ctx context.Context, userID string, input *responses.SaveInput) (*models.Response, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseService) List(ctx context.Context, userID, clientID string, limit int) ([]*models.Response, error) {
	args := m.Called(ctx, userID, clientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Response), args.Error(1)
}

func (m *MockResponseService) UpdateStatus(ctx context.Context, userID, id string, status models.ResponseStatus) (*models.Response, error) {
	args := m.Called(ctx, userID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseService) Send(ctx context.Context, userID, id string, input *responses.SendInput) (*responses.SendOutput, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.SendOutput), args.Error(1)
}

type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) Create(ctx context.Context, n *models.Note) error {
	args := m.Called(ctx, n)
	n.ID = "note-1"
	return args.Error(0)
}

func (m *MockNoteStore) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Note, error) {
	args := m.Called(ctx, clientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Note), args.Error(1)
}

func (m *MockNoteStore) Update(ctx context.Context, clientID, id, content string) (*models.Note, error) {
	args := m.Called(ctx, clientID, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteStore) Delete(ctx context.Context, clientID, id string) error {
	return m.Called(ctx, clientID, id).Error(0)
}

type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	t.ID = "task-1"
	return args.Error(0)
}

func (m *MockTaskStore) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Task, error) {
	args := m.Called(ctx, clientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskStore) UpdateStatus(ctx context.Context, clientID, id string, status models.TaskStatus) (*models.Task, error) {
	args := m.Called(ctx, clientID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

type MockAnalysisStore struct {
	mock.Mock
}

func (m *MockAnalysisStore) Get(ctx context.Context, id string) (*models.EmailAnalysisRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAnalysisRecord), args.Error(1)
}
