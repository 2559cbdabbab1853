package service

import "github.com/memodb-io/notespace/internal/modules/model"

// ValidateMembership checks a membership write before it is persisted.
//
// stored is the row as currently persisted (nil for inserts), proposed is the row to be
// written and otherOwners counts owner-role memberships of the same project excluding
// this record. The check is pure; callers evaluate it inside the transaction that holds
// the project lock and must not write when it fails.
func ValidateMembership(stored *model.Membership, proposed *model.Membership, otherOwners int64) error {
	if !proposed.Role.Valid() {
		return ErrInvalidRole
	}
	if proposed.Role == model.RoleOwner && otherOwners > 0 {
		return ErrMultipleOwners
	}
	if stored != nil && stored.Role == model.RoleOwner && proposed.Role != model.RoleOwner && otherOwners == 0 {
		return ErrOrphanedProject
	}
	return nil
}

// ValidateMembershipRemoval guards deletes the same way a demotion is guarded.
func ValidateMembershipRemoval(stored *model.Membership, otherOwners int64) error {
	if stored.Role == model.RoleOwner && otherOwners == 0 {
		return ErrOrphanedProject
	}
	return nil
}
