package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

type PermissionService struct{ db *gorm.DB }

func NewPermissionService(db *gorm.DB) *PermissionService { return &PermissionService{db: db} }

func validPermission(p string) bool {
	switch p {
	case model.PermissionView, model.PermissionEdit, model.PermissionAdmin:
		return true
	}
	return false
}

func preloadPermission(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Project").Preload("GrantedBy")
}

// List returns the permissions the caller granted.
func (s *PermissionService) List(ctx context.Context, c Caller, projectID *uint) ([]model.AccessPermission, error) {
	q := preloadPermission(s.db.WithContext(ctx)).Where("granted_by_id = ?", c.UserID)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var out []model.AccessPermission
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return out, nil
}

// Grant records a permission on a project the caller is a member of. A user
// holds at most one permission per project.
func (s *PermissionService) Grant(ctx context.Context, c Caller, req model.AccessPermissionRequest) (*model.AccessPermission, error) {
	if !validPermission(req.Permission) {
		return nil, invalid("permission", fmt.Sprintf("%q is not a valid choice.", req.Permission))
	}
	p := model.AccessPermission{
		UserID: req.User, ProjectID: req.Project, Permission: req.Permission, GrantedByID: c.UserID,
	}
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, req.Project, c.UserID); err != nil {
			return err
		}
		if _, err := loadUsers(tx, "user", []uint{req.User}); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.AccessPermission{}).
			Where("user_id = ? AND project_id = ?", req.User, req.Project).Count(&n).Error; err != nil {
			return fmt.Errorf("check permission: %w", err)
		}
		if n > 0 {
			return uniqueTogether()
		}
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return uniqueTogether()
			}
			return fmt.Errorf("create permission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var out model.AccessPermission
	if err := preloadPermission(db).First(&out, p.ID).Error; err != nil {
		return nil, notFound(err, "permission")
	}
	return &out, nil
}

func uniqueTogether() error {
	return invalid("non_field_errors", "The fields user, project must make a unique set.")
}
