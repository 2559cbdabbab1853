package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MembershipService interface {
	Add(ctx context.Context, actorID, projectID, userID uuid.UUID, role model.Role) (*model.Membership, error)
	UpdateRole(ctx context.Context, actorID, membershipID uuid.UUID, role model.Role) (*model.Membership, error)
	Remove(ctx context.Context, actorID, membershipID uuid.UUID) error
	TransferOwnership(ctx context.Context, actorID, projectID, toUserID uuid.UUID) error
	List(ctx context.Context, actorID, projectID uuid.UUID) ([]*model.Membership, error)
}

type membershipService struct {
	r         repo.MembershipRepo
	users     repo.UserRepo
	cache     VisibleNotesCache
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewMembershipService(r repo.MembershipRepo, users repo.UserRepo, cache VisibleNotesCache, publisher EventPublisher, cfg *config.Config, log *zap.Logger) MembershipService {
	return &membershipService{
		r:         r,
		users:     users,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *membershipService) Add(ctx context.Context, actorID, projectID, userID uuid.UUID, role model.Role) (*model.Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := requireRole(ctx, s.r, actorID, projectID, model.Role.CanManageMembers); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	m := &model.Membership{UserID: userID, ProjectID: projectID, Role: role}
	if err := s.r.Create(ctx, m, ValidateMembership); err != nil {
		return nil, membershipErr(notFoundAs(err, ErrProjectNotFound))
	}

	s.changed(ctx, m, ActionCreated)
	return m, nil
}

func (s *membershipService) UpdateRole(ctx context.Context, actorID, membershipID uuid.UUID, role model.Role) (*model.Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	current, err := s.r.Get(ctx, membershipID)
	if err != nil {
		return nil, notFoundAs(err, ErrMembershipNotFound)
	}
	if _, err := requireRole(ctx, s.r, actorID, current.ProjectID, model.Role.CanManageMembers); err != nil {
		return nil, err
	}

	updated, err := s.r.UpdateRole(ctx, membershipID, role, ValidateMembership)
	if err != nil {
		return nil, membershipErr(notFoundAs(err, ErrMembershipNotFound))
	}

	s.changed(ctx, updated, ActionUpdated)
	return updated, nil
}

// Remove lets owners and admins remove anyone, and any member remove themselves.
func (s *membershipService) Remove(ctx context.Context, actorID, membershipID uuid.UUID) error {
	current, err := s.r.Get(ctx, membershipID)
	if err != nil {
		return notFoundAs(err, ErrMembershipNotFound)
	}
	if current.UserID != actorID {
		if _, err := requireRole(ctx, s.r, actorID, current.ProjectID, model.Role.CanManageMembers); err != nil {
			return err
		}
	}

	removed, err := s.r.Delete(ctx, membershipID, ValidateMembershipRemoval)
	if err != nil {
		return notFoundAs(err, ErrMembershipNotFound)
	}

	s.changed(ctx, removed, ActionDeleted)
	return nil
}

// TransferOwnership hands the owner role to another member; the previous owner stays on as admin.
// Personal spaces keep the owner they were provisioned for.
func (s *membershipService) TransferOwnership(ctx context.Context, actorID, projectID, toUserID uuid.UUID) error {
	check := func(p *model.Project, from, to *model.Membership) error {
		if from.Role != model.RoleOwner {
			return ErrForbidden
		}
		if p.IsPersonalSpace {
			return ErrPersonalSpace
		}
		return nil
	}

	err := s.r.TransferOwnership(ctx, projectID, actorID, toUserID, model.RoleAdmin, check)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// either the actor or the target is not a member
			if _, mErr := requireMember(ctx, s.r, actorID, projectID); mErr != nil {
				return mErr
			}
			return ErrNotAMember
		}
		return membershipErr(err)
	}
	if actorID == toUserID {
		return nil
	}

	s.changed(ctx, &model.Membership{ProjectID: projectID, UserID: actorID, Role: model.RoleAdmin}, ActionUpdated)
	s.changed(ctx, &model.Membership{ProjectID: projectID, UserID: toUserID, Role: model.RoleOwner}, ActionUpdated)
	return nil
}

func (s *membershipService) List(ctx context.Context, actorID, projectID uuid.UUID) ([]*model.Membership, error) {
	if _, err := requireMember(ctx, s.r, actorID, projectID); err != nil {
		return nil, err
	}
	return s.r.ListByProject(ctx, projectID)
}

// changed evicts the member's sidebar and tells other processes about the write. Both
// are best effort once the membership row is committed.
func (s *membershipService) changed(ctx context.Context, m *model.Membership, action string) {
	if err := s.cache.Invalidate(ctx, m.UserID); err != nil {
		s.log.Sugar().Warnw("invalidate visible notes", "user_id", m.UserID, "err", err)
	}
	if s.publisher == nil {
		return
	}
	ev := MembershipChangedEvent{
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Action:    action,
	}
	if err := s.publisher.PublishJSON(ctx, s.cfg.RabbitMQ.Exchange.Events, RoutingMembershipChanged, ev); err != nil {
		s.log.Sugar().Warnw("publish membership event", "project_id", m.ProjectID, "err", err)
	}
}
