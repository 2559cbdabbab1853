package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"gorm.io/gorm"
)

// UserCreatedHook runs inside the transaction that inserts a user. Returning an
// error rolls the user back together with everything the hooks wrote.
type UserCreatedHook func(ctx context.Context, tx *gorm.DB, u *model.User) error

type UserRepo interface {
	CreateWithHooks(ctx context.Context, u *model.User, hooks ...UserCreatedHook) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) CreateWithHooks(ctx context.Context, u *model.User, hooks ...UserCreatedHook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return translateUnique(err)
		}
		for _, hook := range hooks {
			if err := hook(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("lower(username) = ?", strings.ToLower(username)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("lower(username) = ?", strings.ToLower(username)).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("lower(email) = ?", strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

// Delete removes the user; memberships, authored notes and the profile cascade,
// uploaded assets keep their rows with a null uploader.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error
}
