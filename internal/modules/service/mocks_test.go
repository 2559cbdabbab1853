package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/infra/blob"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/stretchr/testify/mock"
)

// MockMembershipRepo is a mock implementation of repo.MembershipRepo. The write
// methods take the stored row and owner count to feed the check from the
// "stored" and "others" expectations registered with On.
type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) Create(ctx context.Context, ms *model.Membership, check repo.MembershipCheck) error {
	args := m.Called(ctx, ms)
	if err := args.Error(1); err != nil {
		return err
	}
	return check(nil, ms, args.Get(0).(int64))
}

func (m *MockMembershipRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, check repo.MembershipCheck) (*model.Membership, error) {
	args := m.Called(ctx, id, role)
	if err := args.Error(2); err != nil {
		return nil, err
	}
	stored := args.Get(0).(*model.Membership)
	proposed := *stored
	proposed.Role = role
	if err := check(stored, &proposed, args.Get(1).(int64)); err != nil {
		return nil, err
	}
	return &proposed, nil
}

func (m *MockMembershipRepo) Delete(ctx context.Context, id uuid.UUID, check repo.RemovalCheck) (*model.Membership, error) {
	args := m.Called(ctx, id)
	if err := args.Error(2); err != nil {
		return nil, err
	}
	stored := args.Get(0).(*model.Membership)
	if err := check(stored, args.Get(1).(int64)); err != nil {
		return nil, err
	}
	return stored, nil
}

func (m *MockMembershipRepo) TransferOwnership(ctx context.Context, projectID, fromUserID, toUserID uuid.UUID, demoteTo model.Role, check repo.TransferCheck) error {
	args := m.Called(ctx, projectID, fromUserID, toUserID, demoteTo)
	if err := args.Error(3); err != nil {
		return err
	}
	return check(args.Get(0).(*model.Project), args.Get(1).(*model.Membership), args.Get(2).(*model.Membership))
}

func (m *MockMembershipRepo) Get(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepo) GetByUserProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Membership, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Membership), args.Error(1)
}

func (m *MockMembershipRepo) ListUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateWithHooks(ctx context.Context, u *model.User, hooks ...repo.UserCreatedHook) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNoteRepo is a mock implementation of repo.NoteRepo
type MockNoteRepo struct {
	mock.Mock
}

func (m *MockNoteRepo) Create(ctx context.Context, n *model.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepo) Update(ctx context.Context, n *model.Note, fields ...string) error {
	args := m.Called(ctx, n, fields)
	return args.Error(0)
}

func (m *MockNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNoteRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NoteSummary), args.Error(1)
}

func (m *MockNoteRepo) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]model.NoteSummary, error) {
	args := m.Called(ctx, userID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NoteSummary), args.Error(1)
}

// MockAssetRepo is a mock implementation of repo.AssetRepo
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepo) Get(ctx context.Context, projectID, id uuid.UUID) (*model.Asset, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) ListByProject(ctx context.Context, projectID uuid.UUID, afterUploadedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Asset, error) {
	args := m.Called(ctx, projectID, afterUploadedAt, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockAssetRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, exchange, routingKey string, body any) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) UploadFormFile(ctx context.Context, key string, fh *multipart.FileHeader) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, key, fh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockVisibleNotesCache is a mock implementation of VisibleNotesCache
type MockVisibleNotesCache struct {
	mock.Mock
}

func (m *MockVisibleNotesCache) Get(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NoteSummary), args.Error(1)
}

func (m *MockVisibleNotesCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}
