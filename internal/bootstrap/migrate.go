package bootstrap

import (
	"context"
	"fmt"

	"github.com/memodb-io/notespace/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []any{
	&model.User{},
	&model.Profile{},
	&model.Project{},
	&model.Membership{},
	&model.Note{},
	&model.Asset{},
}

// Migrate brings the schema up to date, including the single-owner partial index.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	d := db.WithContext(ctx)
	// gen_random_uuid on postgres < 13
	if err := d.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		log.Sugar().Warnw("create pgcrypto extension", "err", err)
	}
	if err := d.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := d.Exec(model.OwnerIndexDDL).Error; err != nil {
		return fmt.Errorf("create %s: %w", model.OwnerIndexName, err)
	}
	log.Sugar().Infow("schema migrated", "tables", len(Models))
	return nil
}
