package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"gorm.io/gorm"
)

type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	Get(ctx context.Context, projectID, id uuid.UUID) (*model.Asset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, afterUploadedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Asset, error)
	SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) Get(ctx context.Context, projectID, id uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) ListByProject(ctx context.Context, projectID uuid.UUID, afterUploadedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Asset, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)

	if !afterUploadedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where(
			"(uploaded_at < ?) OR (uploaded_at = ? AND id < ?)",
			afterUploadedAt, afterUploadedAt, afterID,
		)
	}

	var assets []*model.Asset
	query := q.Order("uploaded_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return assets, query.Find(&assets).Error
}

// SetNameIfEmpty backfills the display name after upload without clobbering a name set meanwhile.
func (r *assetRepo) SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ? AND name = ''", id).
		Update("name", name).Error
}

func (r *assetRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		Delete(&model.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
