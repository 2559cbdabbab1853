package bootstrap

import (
	"context"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/modules/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsurePersonalSpaces provisions a personal space for users that have none, e.g.
// accounts imported before provisioning existed. It runs at startup and is a no-op
// once every user owns one.
func EnsurePersonalSpaces(ctx context.Context, db *gorm.DB, projects repo.ProjectRepo, log *zap.Logger) error {
	var users []model.User
	err := db.WithContext(ctx).
		Where(`NOT EXISTS (
			SELECT 1 FROM memberships m
			JOIN projects p ON p.id = m.project_id
			WHERE m.user_id = users.id AND m.role = ? AND p.is_personal_space
		)`, model.RoleOwner).
		Find(&users).Error
	if err != nil {
		return err
	}

	provision := service.PersonalSpaceHook(projects)
	for i := range users {
		u := &users[i]
		if err := provision(ctx, db.WithContext(ctx), u); err != nil {
			return err
		}
		log.Sugar().Infow("personal space created", "user_id", u.ID, "username", u.Username)
	}
	return nil
}
