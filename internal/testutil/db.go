package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"projectly/internal/config"
	"projectly/internal/model"
)

// NewDB opens a fresh sqlite database under t.TempDir with the full schema
// migrated and foreign keys enforced.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := config.SQLiteDSN("file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)")
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a profile and returns it.
func CreateUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{Email: email, FirstName: "Test", Profile: &model.Profile{Role: model.RoleHead}}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateProject inserts a project owned by creator with the given members
// (creator included).
func CreateProject(t *testing.T, db *gorm.DB, name string, creator model.User, members ...model.User) model.Project {
	t.Helper()
	p := model.Project{Name: name, CreatedByID: creator.ID, Members: append([]model.User{creator}, members...)}
	if err := db.Omit("CreatedBy", "Members.*").Create(&p).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}
