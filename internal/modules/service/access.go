package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"gorm.io/gorm"
)

// requireMember returns the actor's membership of the project, or ErrForbidden when
// there is none.
func requireMember(ctx context.Context, memberships repo.MembershipRepo, actorID, projectID uuid.UUID) (*model.Membership, error) {
	m, err := memberships.GetByUserProject(ctx, actorID, projectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// requireRole is requireMember plus a role predicate such as model.Role.CanWrite.
func requireRole(ctx context.Context, memberships repo.MembershipRepo, actorID, projectID uuid.UUID, allowed func(model.Role) bool) (*model.Membership, error) {
	m, err := requireMember(ctx, memberships, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !allowed(m.Role) {
		return nil, ErrForbidden
	}
	return m, nil
}

func isOwner(r model.Role) bool { return r == model.RoleOwner }

// notFoundAs converts gorm's not-found into the given service error.
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// membershipErr maps storage-level conflicts onto the membership validation errors.
func membershipErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrOwnerExists):
		return ErrMultipleOwners
	case errors.Is(err, repo.ErrMembershipExists):
		return ErrDuplicateMembership
	}
	return err
}
