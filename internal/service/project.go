package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

type ProjectService struct{ db *gorm.DB }

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{db: db} }

func (s *ProjectService) List(ctx context.Context, c Caller) ([]model.Project, error) {
	db := s.db.WithContext(ctx)
	var projects []model.Project
	err := db.Preload("Members", orderByID).
		Where("id IN (?)", memberProjectIDs(db, c.UserID)).
		Order("id").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Create stores a project owned by the caller, who always ends up a member.
func (s *ProjectService) Create(ctx context.Context, c Caller, req model.ProjectRequest) (*model.Project, error) {
	v := &ValidationError{}
	name := strings.TrimSpace(deref(req.Name))
	checkLen(v, "name", name, 255, true)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p := model.Project{Name: name, Description: deref(req.Description), CreatedByID: c.UserID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{c.UserID}
		if req.Members != nil {
			ids = appendUnique(ids, *req.Members...)
		}
		members, err := loadUsers(tx, "members", ids)
		if err != nil {
			return err
		}
		p.Members = members
		if err := tx.Omit("CreatedBy", "Members.*").Create(&p).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectService) Get(ctx context.Context, c Caller, id uint) (*model.Project, error) {
	return s.get(s.db.WithContext(ctx), c, id)
}

func (s *ProjectService) get(db *gorm.DB, c Caller, id uint) (*model.Project, error) {
	var p model.Project
	err := db.Preload("Members", orderByID).
		Where("id = ? AND id IN (?)", id, memberProjectIDs(db, c.UserID)).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, "project")
	}
	return &p, nil
}

// Update applies the fields present in req. A members list replaces the
// whole member set; the creator always stays a member.
func (s *ProjectService) Update(ctx context.Context, c Caller, id uint, req model.ProjectRequest) (*model.Project, error) {
	var p *model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = s.get(tx, c, id); err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
			checkLen(v, "name", p.Name, 255, true)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		if req.Members != nil {
			members, err := loadUsers(tx, "members", appendUnique([]uint{p.CreatedByID}, *req.Members...))
			if err != nil {
				return err
			}
			if err := replaceUsers(tx, p, "Members", members); err != nil {
				return err
			}
			p.Members = members
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project; boards, tasks and the other owned rows go
// with it through ON DELETE CASCADE.
func (s *ProjectService) Delete(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, id, c.UserID); err != nil {
			return err
		}
		p := model.Project{ID: id}
		if err := tx.Model(&p).Association("Members").Clear(); err != nil {
			return fmt.Errorf("clear members: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

// replaceUsers swaps a many-to-many user association for users.
func replaceUsers(tx *gorm.DB, owner any, assoc string, users []model.User) error {
	a := tx.Model(owner).Association(assoc)
	var err error
	if len(users) == 0 {
		err = a.Clear()
	} else {
		err = a.Replace(users)
	}
	if err != nil {
		return fmt.Errorf("replace %s: %w", strings.ToLower(assoc), err)
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id") }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func appendUnique(dst []uint, ids ...uint) []uint {
	seen := make(map[uint]bool, len(dst)+len(ids))
	for _, id := range dst {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			dst = append(dst, id)
		}
	}
	return dst
}
