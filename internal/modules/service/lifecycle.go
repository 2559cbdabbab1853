package service

import (
	"context"
	"sync"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"gorm.io/gorm"
)

// UserHooks is the registry of procedures run when a user is created. Hooks execute
// in registration order inside the user-creation transaction.
type UserHooks struct {
	mu    sync.RWMutex
	hooks []repo.UserCreatedHook
}

func NewUserHooks(hooks ...repo.UserCreatedHook) *UserHooks {
	return &UserHooks{hooks: hooks}
}

func (h *UserHooks) Register(hook repo.UserCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// All returns a snapshot safe to range over while other goroutines register.
func (h *UserHooks) All() []repo.UserCreatedHook {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]repo.UserCreatedHook(nil), h.hooks...)
}

// PersonalSpaceHook provisions the user's personal project with the user as owner.
func PersonalSpaceHook(projects repo.ProjectRepo) repo.UserCreatedHook {
	return func(ctx context.Context, tx *gorm.DB, u *model.User) error {
		empty := ""
		p := &model.Project{
			Title:           u.Username,
			Description:     &empty,
			Status:          model.ProjectStatusPlanning,
			IsPersonalSpace: true,
		}
		return projects.WithTx(tx).CreateWithOwner(ctx, p, u.ID)
	}
}

// ProfileHook creates the empty profile row that carries activation state.
func ProfileHook() repo.UserCreatedHook {
	return func(ctx context.Context, tx *gorm.DB, u *model.User) error {
		return tx.WithContext(ctx).Create(&model.Profile{UserID: u.ID}).Error
	}
}

// DefaultUserHooks wires the hooks every new account gets.
func DefaultUserHooks(projects repo.ProjectRepo) *UserHooks {
	h := NewUserHooks()
	h.Register(PersonalSpaceHook(projects))
	h.Register(ProfileHook())
	return h
}
