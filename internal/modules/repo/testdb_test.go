package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the integration database and migrates the schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "host=localhost user=notespace password=helloworld dbname=notespace port=15432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}
	if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Project{},
		&model.Membership{},
		&model.Note{},
		&model.Asset{},
	))
	require.NoError(t, db.Exec(model.OwnerIndexDDL).Error)
	return db
}

// createUser inserts a user with a unique name and removes it (and everything that
// cascades from it) when the test ends.
func createUser(t *testing.T, db *gorm.DB, prefix string) *model.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u := &model.User{
		Username:     prefix + "_" + suffix,
		Email:        prefix + "_" + suffix + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = ?", u.ID) })
	return u
}

func createProject(t *testing.T, db *gorm.DB, owner *model.User) *model.Project {
	t.Helper()
	p := &model.Project{Title: "p_" + uuid.NewString()[:8], Status: model.ProjectStatusPlanning}
	require.NoError(t, NewProjectRepo(db).CreateWithOwner(context.Background(), p, owner.ID))
	t.Cleanup(func() { db.Exec("DELETE FROM projects WHERE id = ?", p.ID) })
	return p
}

func allowAll(*model.Membership, *model.Membership, int64) error { return nil }
