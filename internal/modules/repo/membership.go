package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipCheck validates a write against the locked project state. stored is nil
// on insert; otherOwners excludes the row being written.
type MembershipCheck func(stored *model.Membership, proposed *model.Membership, otherOwners int64) error

// RemovalCheck validates a delete against the locked project state.
type RemovalCheck func(stored *model.Membership, otherOwners int64) error

// TransferCheck inspects the locked project and both sides of an ownership transfer
// before anything is written.
type TransferCheck func(project *model.Project, from *model.Membership, to *model.Membership) error

type MembershipRepo interface {
	Create(ctx context.Context, m *model.Membership, check MembershipCheck) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, check MembershipCheck) (*model.Membership, error)
	Delete(ctx context.Context, id uuid.UUID, check RemovalCheck) (*model.Membership, error)
	TransferOwnership(ctx context.Context, projectID, fromUserID, toUserID uuid.UUID, demoteTo model.Role, check TransferCheck) error
	Get(ctx context.Context, id uuid.UUID) (*model.Membership, error)
	GetByUserProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Membership, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Membership, error)
	ListUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

type membershipRepo struct{ db *gorm.DB }

func NewMembershipRepo(db *gorm.DB) MembershipRepo {
	return &membershipRepo{db: db}
}

// lockProject takes the row lock that serializes every membership write of a project.
func lockProject(tx *gorm.DB, projectID uuid.UUID) error {
	_, err := lockProjectRow(tx, projectID)
	return err
}

func lockProjectRow(tx *gorm.DB, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "is_personal_space").
		Where("id = ?", projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func countOtherOwners(tx *gorm.DB, projectID, excludeID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Membership{}).
		Where("project_id = ? AND role = ? AND id <> ?", projectID, model.RoleOwner, excludeID).
		Count(&n).Error
	return n, err
}

func (r *membershipRepo) Create(ctx context.Context, m *model.Membership, check MembershipCheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProject(tx, m.ProjectID); err != nil {
			return err
		}
		others, err := countOtherOwners(tx, m.ProjectID, uuid.Nil)
		if err != nil {
			return err
		}
		if err := check(nil, m, others); err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return translateUnique(err)
		}
		return nil
	})
}

func (r *membershipRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, check MembershipCheck) (*model.Membership, error) {
	var updated *model.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored model.Membership
		if err := tx.Where("id = ?", id).First(&stored).Error; err != nil {
			return err
		}
		if err := lockProject(tx, stored.ProjectID); err != nil {
			return err
		}
		// Re-read under the lock; a concurrent writer may have changed the row.
		if err := tx.Where("id = ?", id).First(&stored).Error; err != nil {
			return err
		}
		others, err := countOtherOwners(tx, stored.ProjectID, stored.ID)
		if err != nil {
			return err
		}
		proposed := stored
		proposed.Role = role
		if err := check(&stored, &proposed, others); err != nil {
			return err
		}
		if err := tx.Model(&model.Membership{}).Where("id = ?", id).Update("role", role).Error; err != nil {
			return translateUnique(err)
		}
		updated = &proposed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *membershipRepo) Delete(ctx context.Context, id uuid.UUID, check RemovalCheck) (*model.Membership, error) {
	var removed *model.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored model.Membership
		if err := tx.Where("id = ?", id).First(&stored).Error; err != nil {
			return err
		}
		if err := lockProject(tx, stored.ProjectID); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).First(&stored).Error; err != nil {
			return err
		}
		others, err := countOtherOwners(tx, stored.ProjectID, stored.ID)
		if err != nil {
			return err
		}
		if err := check(&stored, others); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&model.Membership{}).Error; err != nil {
			return err
		}
		removed = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// TransferOwnership demotes the current owner and promotes the target in one
// transaction. The demotion is written first so the single-owner index never sees
// two owners.
func (r *membershipRepo) TransferOwnership(ctx context.Context, projectID, fromUserID, toUserID uuid.UUID, demoteTo model.Role, check TransferCheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProjectRow(tx, projectID)
		if err != nil {
			return err
		}
		var from, to model.Membership
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, fromUserID).First(&from).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, toUserID).First(&to).Error; err != nil {
			return err
		}
		if err := check(p, &from, &to); err != nil {
			return err
		}
		if from.ID == to.ID {
			return nil
		}
		if err := tx.Model(&model.Membership{}).Where("id = ?", from.ID).Update("role", demoteTo).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Membership{}).Where("id = ?", to.ID).Update("role", model.RoleOwner).Error; err != nil {
			return translateUnique(err)
		}
		return nil
	})
}

func (r *membershipRepo) Get(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) GetByUserProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Membership, error) {
	var ms []*model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC, id ASC").
		Find(&ms).Error
	return ms, err
}

func (r *membershipRepo) ListUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	return ids, err
}
