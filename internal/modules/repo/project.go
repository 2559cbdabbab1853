package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	CreateWithOwner(ctx context.Context, p *model.Project, ownerID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Owners(ctx context.Context, projectID uuid.UUID, limit int) ([]*model.User, error)
	WithTx(tx *gorm.DB) ProjectRepo
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) WithTx(tx *gorm.DB) ProjectRepo {
	return &projectRepo{db: tx}
}

// CreateWithOwner inserts the project and its owner membership atomically. When the
// repo is bound to an outer transaction the work joins it through a savepoint.
func (r *projectRepo) CreateWithOwner(ctx context.Context, p *model.Project, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		m := &model.Membership{
			UserID:    ownerID,
			ProjectID: p.ID,
			Role:      model.RoleOwner,
		}
		if err := tx.Create(m).Error; err != nil {
			return translateUnique(err)
		}
		return nil
	})
}

func (r *projectRepo) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListForUser(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.project_id = projects.id").
		Where("memberships.user_id = ?", userID)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where(
			"(projects.created_at < ?) OR (projects.created_at = ? AND projects.id < ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	var projects []*model.Project
	query := q.Order("projects.created_at DESC, projects.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return projects, query.Find(&projects).Error
}

func (r *projectRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Owners returns up to limit users holding the owner role in the project.
func (r *projectRepo) Owners(ctx context.Context, projectID uuid.UUID, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.project_id = ? AND memberships.role = ?", projectID, model.RoleOwner).
		Order("memberships.joined_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
