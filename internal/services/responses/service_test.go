// internal/services/responses/service_test.go
package responses

import (
	"context"
	"testing"

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

func (m *MockStore) Create(ctx context.Context, resp *models.Response) error {
	args := m.Called(ctx, resp)
	resp.ID = "resp-1"
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, id string) (*models.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockStore) ListByClient(ctx context.Context, clientID string, limit int) ([]*models.Response, error) {
	args := m.Called(ctx, clientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Response), args.Error(1)
}

func (m *MockStore) UpdateStatus(ctx context.Context, id string, status models.ResponseStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockClientStore struct {
	mock.Mock
}

func (m *MockClientStore) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientStore) Touch(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, msg models.EmailMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type fixture struct {
	store   *MockStore
	clients *MockClientStore
	mailer  *MockMailer
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{store: new(MockStore), clients: new(MockClientStore), mailer: new(MockMailer)}
	f.svc = NewService(ServiceDependencies{
		Responses: f.store,
		Clients:   f.clients,
		Mailer:    f.mailer,
		Logger:    logger.NewTestLogger(t),
	})
	return f
}

var jane = &models.Client{ID: "c1", UserID: "user-1", Name: "Jane", Email: "jane@example.com"}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Save / List
// ==========================

func TestService_Save(t *testing.T) {
	f := newFixture(t)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	f.store.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
		return r.Status == models.ResponseStatusPending && r.ResponseType == models.ResponseTypeEmail && r.MissingInfo != nil
	})).Return(nil)

	resp, err := f.svc.Save(context.Background(), "user-1", &SaveInput{
		ClientID: "c1",
		Summary:  "Tax planning advice",
		Content:  "Dear Jane, ...",
		Category: "tax-planning",
	})
	require.NoError(t, err)
	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, []string{}, resp.MissingInfo)
}

func TestService_Save_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Save(context.Background(), "user-1", &SaveInput{ClientID: "c1"})
	assertCode(t, err, errors.ErrCodeValidationFailed)

	_, err = f.svc.Save(context.Background(), "user-1", &SaveInput{ClientID: "c1", Content: "x", ResponseType: "sms"})
	assertCode(t, err, errors.ErrCodeInvalidRequest)
}

func TestService_Save_ForeignClient(t *testing.T) {
	f := newFixture(t)
	f.clients.On("Get", mock.Anything, "user-2", "c1").Return(nil, errors.NewResourceNotFoundError("Client", "c1"))

	_, err := f.svc.Save(context.Background(), "user-2", &SaveInput{ClientID: "c1", Content: "x"})
	assertCode(t, err, errors.ErrCodeResourceNotFound)
	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	f.store.On("ListByClient", mock.Anything, "c1", 5).Return([]*models.Response{{ID: "r1"}}, nil)

	got, err := f.svc.List(context.Background(), "user-1", "c1", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// ==========================
// Status and delivery
// ==========================

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	f.store.On("Get", mock.Anything, "r1").Return(&models.Response{ID: "r1", ClientID: "c1", Status: models.ResponseStatusPending}, nil)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	f.store.On("UpdateStatus", mock.Anything, "r1", models.ResponseStatusApproved).Return(nil)

	resp, err := f.svc.UpdateStatus(context.Background(), "user-1", "r1", models.ResponseStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseStatusApproved, resp.Status)
}

func TestService_UpdateStatus_Invalid(t *testing.T) {
	_, err := newFixture(t).svc.UpdateStatus(context.Background(), "user-1", "r1", "sent")
	assertCode(t, err, errors.ErrCodeInvalidRequest)
}

func TestService_UpdateStatus_OtherAdvisorSeesNotFound(t *testing.T) {
	f := newFixture(t)
	f.store.On("Get", mock.Anything, "r1").Return(&models.Response{ID: "r1", ClientID: "c1"}, nil)
	f.clients.On("Get", mock.Anything, "user-2", "c1").Return(nil, errors.NewResourceNotFoundError("Client", "c1"))

	_, err := f.svc.UpdateStatus(context.Background(), "user-2", "r1", models.ResponseStatusRejected)
	assertCode(t, err, errors.ErrCodeResourceNotFound)
	f.store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Send_RequiresApproval(t *testing.T) {
	f := newFixture(t)
	f.store.On("Get", mock.Anything, "r1").Return(&models.Response{ID: "r1", ClientID: "c1", Status: models.ResponseStatusPending}, nil)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)

	_, err := f.svc.Send(context.Background(), "user-1", "r1", nil)
	assertCode(t, err, errors.ErrCodeInvalidState)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestService_Send(t *testing.T) {
	f := newFixture(t)
	f.store.On("Get", mock.Anything, "r1").Return(&models.Response{
		ID: "r1", ClientID: "c1", Status: models.ResponseStatusApproved, Content: "Dear Jane, ...",
	}, nil)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	f.mailer.On("SendEmail", mock.Anything, models.EmailMessage{
		To:      []string{"jane@example.com"},
		Subject: "Your tax question",
		Body:    "Dear Jane, ...",
		ReplyTo: "advisor@example.com",
	}).Return("ses-123", nil)
	f.clients.On("Touch", mock.Anything, "user-1", "c1").Return(assert.AnError)

	out, err := f.svc.Send(context.Background(), "user-1", "r1", &SendInput{Subject: "Your tax question", ReplyTo: "advisor@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ses-123", out.MessageID)
	assert.Equal(t, "jane@example.com", out.To)
	f.mailer.AssertExpectations(t)
	f.clients.AssertExpectations(t)
}

func TestService_Send_MailerFailure(t *testing.T) {
	f := newFixture(t)
	f.store.On("Get", mock.Anything, "r1").Return(&models.Response{ID: "r1", ClientID: "c1", Status: models.ResponseStatusApproved}, nil)
	f.clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything).Return("", assert.AnError)

	_, err := f.svc.Send(context.Background(), "user-1", "r1", nil)
	assertCode(t, err, errors.ErrCodeNotificationSendFailed)
	f.clients.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Send_NoMailer(t *testing.T) {
	store, clients := new(MockStore), new(MockClientStore)
	store.On("Get", mock.Anything, "r1").Return(&models.Response{ID: "r1", ClientID: "c1", Status: models.ResponseStatusApproved}, nil)
	clients.On("Get", mock.Anything, "user-1", "c1").Return(jane, nil)
	svc := NewService(ServiceDependencies{Responses: store, Clients: clients, Logger: logger.NewNoOpLogger()})

	_, err := svc.Send(context.Background(), "user-1", "r1", nil)
	assertCode(t, err, errors.ErrCodeExternalService)
}
