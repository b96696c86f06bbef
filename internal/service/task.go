package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/logger"
	"projectly/internal/model"
)

type TaskService struct{ db *gorm.DB }

func NewTaskService(db *gorm.DB) *TaskService { return &TaskService{db: db} }

// visibleTasks restricts a query to tasks the caller created, is assigned
// to, or whose project the caller is a member of.
func visibleTasks(db *gorm.DB, uid uint) *gorm.DB {
	return db.Where("(project_id IN (?) OR created_by_id = ? OR assigned_to_id = ?)",
		memberProjectIDs(db, uid), uid, uid)
}

func validStatus(s string) bool {
	switch s {
	case model.TaskToDo, model.TaskInProgress, model.TaskDone:
		return true
	}
	return false
}

func parseDate(v *ValidationError, field string, o model.Optional[string]) *datatypes.Date {
	if o.Value == nil || *o.Value == "" {
		return nil
	}
	t, err := time.Parse(model.DateLayout, *o.Value)
	if err != nil {
		v.Add(field, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

func (s *TaskService) List(ctx context.Context, c Caller, f model.TaskFilter) ([]model.Task, error) {
	db := s.db.WithContext(ctx)
	q := visibleTasks(db, c.UserID)
	if f.Project != nil {
		q = q.Where("project_id = ?", *f.Project)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to_id = ?", *f.AssignedTo)
	}
	var tasks []model.Task
	if err := q.Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, c Caller, id uint) (*model.Task, error) {
	return s.get(s.db.WithContext(ctx), c, id)
}

func (s *TaskService) get(db *gorm.DB, c Caller, id uint) (*model.Task, error) {
	var t model.Task
	if err := visibleTasks(db, c.UserID).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err, "task")
	}
	return &t, nil
}

// Create stores the task and, when it is assigned, notifies the assignee in
// the same transaction.
func (s *TaskService) Create(ctx context.Context, c Caller, req model.TaskRequest) (*model.Task, error) {
	t := model.Task{
		Title:       strings.TrimSpace(deref(req.Title)),
		Description: deref(req.Description),
		Status:      model.TaskToDo,
		CreatedByID: c.UserID,
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	v := &ValidationError{}
	checkLen(v, "title", t.Title, 200, true)
	if !validStatus(t.Status) {
		v.Add("status", fmt.Sprintf("%q is not a valid choice.", t.Status))
	}
	t.DueDate = parseDate(v, "due_date", req.DueDate)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.AssignedTo.Value != nil {
			if _, err := loadUsers(tx, "assigned_to", []uint{*req.AssignedTo.Value}); err != nil {
				return err
			}
			t.AssignedToID = req.AssignedTo.Value
		}
		if req.Project.Value != nil {
			if err := requireMember(tx, *req.Project.Value, c.UserID); err != nil {
				return err
			}
			t.ProjectID = req.Project.Value
		}
		if err := tx.Omit(clause.Associations).Create(&t).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if t.AssignedToID != nil {
			return notifyAssigned(tx, &t, *t.AssignedToID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("task.create", "task_id", t.ID, "uid", c.UserID)
	return &t, nil
}

// Update applies the fields present in req. Only a change to a different,
// non-null assignee produces a notification.
func (s *TaskService) Update(ctx context.Context, c Caller, id uint, req model.TaskRequest) (*model.Task, error) {
	var t *model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if t, err = s.get(tx, c, id); err != nil {
			return err
		}
		previous := t.AssignedToID

		v := &ValidationError{}
		if req.Title != nil {
			t.Title = strings.TrimSpace(*req.Title)
			checkLen(v, "title", t.Title, 200, true)
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			if !validStatus(*req.Status) {
				v.Add("status", fmt.Sprintf("%q is not a valid choice.", *req.Status))
			}
			t.Status = *req.Status
		}
		if req.DueDate.Set {
			t.DueDate = parseDate(v, "due_date", req.DueDate)
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		if req.AssignedTo.Set {
			if req.AssignedTo.Value != nil {
				if _, err := loadUsers(tx, "assigned_to", []uint{*req.AssignedTo.Value}); err != nil {
					return err
				}
			}
			t.AssignedToID = req.AssignedTo.Value
		}
		if req.Project.Set {
			if req.Project.Value != nil {
				if err := requireMember(tx, *req.Project.Value, c.UserID); err != nil {
					return err
				}
			}
			t.ProjectID = req.Project.Value
		}

		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		if t.AssignedToID != nil && (previous == nil || *previous != *t.AssignedToID) {
			return notifyAssigned(tx, t, *t.AssignedToID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.get(tx, c, id)
		if err != nil {
			return err
		}
		return tx.Delete(t).Error
	})
}

func notifyAssigned(tx *gorm.DB, t *model.Task, assignee uint) error {
	n := model.Notification{
		UserID:           assignee,
		NotificationType: model.NotifyTaskAssigned,
		Message:          "You have been assigned a new task: " + t.Title,
		RelatedTaskID:    &t.ID,
		RelatedProjectID: t.ProjectID,
	}
	if err := tx.Omit(clause.Associations).Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	logger.Debug("notification.task_assigned", "task_id", t.ID, "uid", assignee)
	return nil
}

// --- subtasks ---

func (s *TaskService) ListSubTasks(ctx context.Context, c Caller, taskID uint) ([]model.SubTask, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.get(db, c, taskID); err != nil {
		return nil, err
	}
	var subs []model.SubTask
	err := db.Preload("ParentTask").Preload("AssignedTo").
		Where("parent_task_id = ?", taskID).Order("id").Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return subs, nil
}

func (s *TaskService) CreateSubTask(ctx context.Context, c Caller, taskID uint, req model.SubTaskRequest) (*model.SubTask, error) {
	sub := model.SubTask{
		ParentTaskID: taskID,
		Title:        strings.TrimSpace(deref(req.Title)),
		Description:  deref(req.Description),
		Completed:    deref(req.Completed),
	}
	v := &ValidationError{}
	checkLen(v, "title", sub.Title, 255, true)
	sub.DueDate = parseDate(v, "due_date", req.DueDate)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(tx, c, taskID); err != nil {
			return err
		}
		if req.AssignedTo.Value != nil {
			if _, err := loadUsers(tx, "assigned_to", []uint{*req.AssignedTo.Value}); err != nil {
				return err
			}
			sub.AssignedToID = req.AssignedTo.Value
		}
		return tx.Omit(clause.Associations).Create(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return s.loadSubTask(db, sub.ID)
}

func (s *TaskService) getSubTask(db *gorm.DB, c Caller, id uint) (*model.SubTask, error) {
	var sub model.SubTask
	taskIDs := visibleTasks(db, c.UserID).Model(&model.Task{}).Select("id")
	err := db.Where("id = ? AND parent_task_id IN (?)", id, taskIDs).First(&sub).Error
	if err != nil {
		return nil, notFound(err, "subtask")
	}
	return &sub, nil
}

func (s *TaskService) loadSubTask(db *gorm.DB, id uint) (*model.SubTask, error) {
	var sub model.SubTask
	if err := db.Preload("ParentTask").Preload("AssignedTo").First(&sub, id).Error; err != nil {
		return nil, notFound(err, "subtask")
	}
	return &sub, nil
}

func (s *TaskService) UpdateSubTask(ctx context.Context, c Caller, id uint, req model.SubTaskRequest) (*model.SubTask, error) {
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		sub, err := s.getSubTask(tx, c, id)
		if err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Title != nil {
			sub.Title = strings.TrimSpace(*req.Title)
			checkLen(v, "title", sub.Title, 255, true)
		}
		if req.Description != nil {
			sub.Description = *req.Description
		}
		if req.Completed != nil {
			sub.Completed = *req.Completed
		}
		if req.DueDate.Set {
			sub.DueDate = parseDate(v, "due_date", req.DueDate)
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		if req.AssignedTo.Set {
			if req.AssignedTo.Value != nil {
				if _, err := loadUsers(tx, "assigned_to", []uint{*req.AssignedTo.Value}); err != nil {
					return err
				}
			}
			sub.AssignedToID = req.AssignedTo.Value
		}
		return tx.Omit(clause.Associations).Save(sub).Error
	})
	if err != nil {
		return nil, err
	}
	return s.loadSubTask(db, id)
}

func (s *TaskService) DeleteSubTask(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.getSubTask(tx, c, id)
		if err != nil {
			return err
		}
		return tx.Delete(sub).Error
	})
}
