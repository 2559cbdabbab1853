package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/pkg/paging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService interface {
	Owner(ctx context.Context, projectID uuid.UUID) (*model.User, error)
	Create(ctx context.Context, actorID uuid.UUID, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, actorID, projectID uuid.UUID) (*model.Project, error)
	List(ctx context.Context, actorID uuid.UUID, in ListProjectsInput) (*ListProjectsOutput, error)
	Update(ctx context.Context, actorID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, actorID, projectID uuid.UUID) error
}

type projectService struct {
	r           repo.ProjectRepo
	memberships repo.MembershipRepo
	cache       VisibleNotesCache
	log         *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, memberships repo.MembershipRepo, cache VisibleNotesCache, log *zap.Logger) ProjectService {
	return &projectService{r: r, memberships: memberships, cache: cache, log: log}
}

// Owner resolves the single owner of a project. Zero owners, or more than one left
// behind by corrupted data, both yield nil without an error.
func (s *projectService) Owner(ctx context.Context, projectID uuid.UUID) (*model.User, error) {
	if _, err := s.r.Get(ctx, projectID); err != nil {
		return nil, notFoundAs(err, ErrProjectNotFound)
	}
	owners, err := s.r.Owners(ctx, projectID, 2)
	if err != nil {
		return nil, err
	}
	if len(owners) != 1 {
		return nil, nil
	}
	return owners[0], nil
}

type CreateProjectInput struct {
	Title       string
	Description *string
	Status      model.ProjectStatus
}

func (s *projectService) Create(ctx context.Context, actorID uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	status := in.Status
	if status == "" {
		status = model.ProjectStatusPlanning
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	p := &model.Project{
		Title:       title,
		Description: in.Description,
		Status:      status,
	}
	if err := s.r.CreateWithOwner(ctx, p, actorID); err != nil {
		return nil, membershipErr(err)
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, actorID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.r.Get(ctx, projectID)
	if err != nil {
		return nil, notFoundAs(err, ErrProjectNotFound)
	}
	if _, err := requireMember(ctx, s.memberships, actorID, projectID); err != nil {
		return nil, err
	}
	return p, nil
}

const defaultPageSize = 20

type ListProjectsInput struct {
	Limit  int
	Cursor string
}

type ListProjectsOutput struct {
	Items      []*model.Project `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

func (s *projectService) List(ctx context.Context, actorID uuid.UUID, in ListProjectsInput) (*ListProjectsOutput, error) {
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	var (
		afterT  time.Time
		afterID uuid.UUID
		err     error
	)
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	items, err := s.r.ListForUser(ctx, actorID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListProjectsOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *model.ProjectStatus
}

func (s *projectService) Update(ctx context.Context, actorID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
	if _, err := s.r.Get(ctx, projectID); err != nil {
		return nil, notFoundAs(err, ErrProjectNotFound)
	}
	if _, err := requireRole(ctx, s.memberships, actorID, projectID, model.Role.CanManageMembers); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *in.Status
	}
	if len(updates) > 0 {
		if err := s.r.Update(ctx, projectID, updates); err != nil {
			return nil, notFoundAs(err, ErrProjectNotFound)
		}
	}
	return s.r.Get(ctx, projectID)
}

// Delete is owner-only and refused for personal spaces. Notes, assets and memberships cascade, so every former
// member's sidebar is evicted.
func (s *projectService) Delete(ctx context.Context, actorID, projectID uuid.UUID) error {
	p, err := s.r.Get(ctx, projectID)
	if err != nil {
		return notFoundAs(err, ErrProjectNotFound)
	}
	if _, err := requireRole(ctx, s.memberships, actorID, projectID, isOwner); err != nil {
		return err
	}
	if p.IsPersonalSpace {
		return ErrPersonalSpace
	}

	members, err := s.memberships.ListUserIDs(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.r.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	if err := s.cache.Invalidate(ctx, members...); err != nil {
		s.log.Sugar().Warnw("invalidate visible notes after project delete", "project_id", projectID, "err", err)
	}
	return nil
}
