package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CheckUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) IssueCaptcha(ctx context.Context) (*service.CaptchaChallenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CaptchaChallenge), args.Error(1)
}

func (m *MockAccountService) SendEmailCode(ctx context.Context, in service.SendEmailCodeInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAccountService) Register(ctx context.Context, in service.RegisterInput) (*model.User, string, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAccountService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAccountService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Owner(ctx context.Context, projectID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, actorID uuid.UUID, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, actorID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, actorID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, actorID uuid.UUID, in service.ListProjectsInput) (*service.ListProjectsOutput, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProjectsOutput), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, actorID, projectID uuid.UUID, in service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, actorID, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, actorID, projectID uuid.UUID) error {
	args := m.Called(ctx, actorID, projectID)
	return args.Error(0)
}

type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) Add(ctx context.Context, actorID, projectID, userID uuid.UUID, role model.Role) (*model.Membership, error) {
	args := m.Called(ctx, actorID, projectID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipService) UpdateRole(ctx context.Context, actorID, membershipID uuid.UUID, role model.Role) (*model.Membership, error) {
	args := m.Called(ctx, actorID, membershipID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipService) Remove(ctx context.Context, actorID, membershipID uuid.UUID) error {
	args := m.Called(ctx, actorID, membershipID)
	return args.Error(0)
}

func (m *MockMembershipService) TransferOwnership(ctx context.Context, actorID, projectID, toUserID uuid.UUID) error {
	args := m.Called(ctx, actorID, projectID, toUserID)
	return args.Error(0)
}

func (m *MockMembershipService) List(ctx context.Context, actorID, projectID uuid.UUID) ([]*model.Membership, error) {
	args := m.Called(ctx, actorID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Membership), args.Error(1)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Create(ctx context.Context, actorID uuid.UUID, in service.CreateNoteInput) (*model.Note, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, actorID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, actorID, noteID uuid.UUID, in service.UpdateNoteInput) (*model.Note, error) {
	args := m.Called(ctx, actorID, noteID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, actorID, noteID uuid.UUID) error {
	args := m.Called(ctx, actorID, noteID)
	return args.Error(0)
}

func (m *MockNoteService) GetPublic(ctx context.Context, publicID uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) ListVisible(ctx context.Context, actorID uuid.UUID) ([]model.NoteSummary, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NoteSummary), args.Error(1)
}

func (m *MockNoteService) Search(ctx context.Context, actorID uuid.UUID, query string, limit int) ([]model.NoteSummary, error) {
	args := m.Called(ctx, actorID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NoteSummary), args.Error(1)
}

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Upload(ctx context.Context, actorID, projectID uuid.UUID, in service.UploadAssetInput) (*model.Asset, error) {
	args := m.Called(ctx, actorID, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) List(ctx context.Context, actorID, projectID uuid.UUID, in service.ListAssetsInput) (*service.ListAssetsOutput, error) {
	args := m.Called(ctx, actorID, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListAssetsOutput), args.Error(1)
}

func (m *MockAssetService) Get(ctx context.Context, actorID, projectID, assetID uuid.UUID) (*service.AssetWithURL, error) {
	args := m.Called(ctx, actorID, projectID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssetWithURL), args.Error(1)
}

func (m *MockAssetService) Delete(ctx context.Context, actorID, projectID, assetID uuid.UUID) error {
	args := m.Called(ctx, actorID, projectID, assetID)
	return args.Error(0)
}
