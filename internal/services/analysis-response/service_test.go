// internal/services/analysis-response/service_test.go
package analysisresponse

import (
	"context"
	"testing"
	"time"

	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, id string) (*models.EmailAnalysisRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAnalysisRecord), args.Error(1)
}

type MockClients struct {
	mock.Mock
}

func (m *MockClients) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

type fakeLists struct {
	documents []*models.Document
	notes     []*models.Note
	tasks     []*models.Task
	noteLimit int
}

type documentLister struct{ f *fakeLists }

func (d documentLister) ListByClient(_ context.Context, _ string) ([]*models.Document, error) {
	return d.f.documents, nil
}

type noteLister struct{ f *fakeLists }

func (n noteLister) ListByClient(_ context.Context, _ string, limit int) ([]*models.Note, error) {
	n.f.noteLimit = limit
	return n.f.notes, nil
}

type taskLister struct{ f *fakeLists }

func (tl taskLister) ListByClient(_ context.Context, _ string, _ int) ([]*models.Task, error) {
	return tl.f.tasks, nil
}

func newTestService(t *testing.T, analyses *MockStore, clients *MockClients, lists *fakeLists) *Service {
	return NewService(ServiceDependencies{
		Analyses:  analyses,
		Clients:   clients,
		Documents: documentLister{lists},
		Notes:     noteLister{lists},
		Tasks:     taskLister{lists},
		Logger:    logger.NewTestLogger(t),
	})
}

// ==========================
// Execute
// ==========================

func TestService_Execute(t *testing.T) {
	analyses := new(MockStore)
	analyses.On("Get", mock.Anything, "a1").Return(&models.EmailAnalysisRecord{
		ID:       "a1",
		ClientID: "c1",
		EmailAnalysis: models.EmailAnalysis{
			EmailSummary: "Asks about offshore limits",
			EmailIntent:  models.EmailIntent{Category: "Offshore Investments"},
			KeyTopics:    []string{"offshore", "tax"},
		},
		RawEmail: "Hi, can I move R1m offshore?",
	}, nil)

	clients := new(MockClients)
	clients.On("Get", mock.Anything, "advisor-1", "c1").Return(&models.Client{
		ID: "c1", Name: "Jane", Surname: "Smith", Email: "jane@example.com",
		Status: models.ClientStatusActive, PortfolioValue: 2500000, RiskProfile: models.RiskAggressive,
	}, nil)

	lists := &fakeLists{
		documents: []*models.Document{{Name: "Tax certificate", FileType: "application/pdf", FileSize: 2048}},
		notes:     []*models.Note{{Content: "Prefers email", CreatedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}},
		tasks:     []*models.Task{{Title: "Send Reg 28 summary", Status: models.TaskStatusPending}},
	}

	out, err := newTestService(t, analyses, clients, lists).Execute(context.Background(), &Input{
		EmailAnalysisID: "a1",
		AdvisorData:     models.AdvisorProfile{FirstName: "Sam", LastName: "Naidoo", Company: "Acme Wealth"},
		UserID:          "advisor-1",
	})
	require.NoError(t, err)

	p := out.PopulatedPrompt
	assert.Contains(t, p, "I'm a financial advisor Sam Naidoo from a wealth management company called Acme Wealth.")
	assert.Contains(t, p, "Intent: Offshore Investments")
	assert.Contains(t, p, "Key Topics: offshore, tax")
	assert.Contains(t, p, "Raw Email: Hi, can I move R1m offshore?")
	assert.Contains(t, p, "- Name: Jane Smith")
	assert.Contains(t, p, "- Portfolio Value: 2500000")
	assert.Contains(t, p, "- Tax certificate (application/pdf) - File size: 2048 bytes")
	assert.Contains(t, p, "- Prefers email (Date: 3/5/2024)")
	assert.Contains(t, p, "- Send Reg 28 summary - Status: pending")
	assert.Equal(t, 0, lists.noteLimit)
}

func TestService_Execute_ForeignClient(t *testing.T) {
	analyses := new(MockStore)
	analyses.On("Get", mock.Anything, "a1").Return(&models.EmailAnalysisRecord{ID: "a1", ClientID: "c9"}, nil)
	clients := new(MockClients)
	clients.On("Get", mock.Anything, "advisor-1", "c9").Return(nil, errors.NewResourceNotFoundError("Client", "c9"))

	_, err := newTestService(t, analyses, clients, &fakeLists{}).Execute(context.Background(), &Input{
		EmailAnalysisID: "a1",
		UserID:          "advisor-1",
	})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResourceNotFound, stdErr.Code)
}

func TestService_Execute_MissingID(t *testing.T) {
	_, err := newTestService(t, new(MockStore), new(MockClients), &fakeLists{}).
		Execute(context.Background(), &Input{UserID: "advisor-1"})
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}
