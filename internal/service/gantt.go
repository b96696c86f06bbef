package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

// GanttService manages the per-project chart and its tasks. Dependencies are
// directed edges between tasks of the same chart; cycles are not checked.
type GanttService struct{ db *gorm.DB }

func NewGanttService(db *gorm.DB) *GanttService { return &GanttService{db: db} }

// Chart returns the project's chart, creating it on first access.
func (s *GanttService) Chart(ctx context.Context, c Caller, projectID uint) (*model.GanttChart, error) {
	var g model.GanttChart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, projectID, c.UserID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Where(model.GanttChart{ProjectID: projectID}).FirstOrCreate(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GanttService) chart(db *gorm.DB, c Caller, projectID uint) (*model.GanttChart, error) {
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var g model.GanttChart
	if err := db.Where("project_id = ?", projectID).First(&g).Error; err != nil {
		return nil, notFound(err, "gantt chart")
	}
	return &g, nil
}

func (s *GanttService) ListTasks(ctx context.Context, c Caller, projectID uint) ([]model.GanttTask, error) {
	db := s.db.WithContext(ctx)
	g, err := s.chart(db, c, projectID)
	if err != nil {
		return nil, err
	}
	var tasks []model.GanttTask
	err = db.Preload("Dependencies", orderByID).Where("gantt_chart_id = ?", g.ID).Order("id").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list gantt tasks: %w", err)
	}
	return tasks, nil
}

func (s *GanttService) CreateTask(ctx context.Context, c Caller, projectID uint, req model.GanttTaskRequest) (*model.GanttTask, error) {
	t := model.GanttTask{Name: strings.TrimSpace(deref(req.Name)), Progress: deref(req.Progress)}
	v := &ValidationError{}
	checkLen(v, "name", t.Name, 255, true)
	start := requiredDate(v, "start_date", req.StartDate)
	end := requiredDate(v, "end_date", req.EndDate)
	checkGantt(v, start, end, req.Progress)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	t.StartDate, t.EndDate = datatypes.Date(start), datatypes.Date(end)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.chart(tx, c, projectID)
		if err != nil {
			return err
		}
		t.GanttChartID = g.ID
		if req.Dependencies != nil {
			if t.Dependencies, err = loadDependencies(tx, g.ID, *req.Dependencies); err != nil {
				return err
			}
		}
		if err := tx.Omit("GanttChart", "Dependencies.*").Create(&t).Error; err != nil {
			return fmt.Errorf("create gantt task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GanttService) GetTask(ctx context.Context, c Caller, id uint) (*model.GanttTask, error) {
	return s.getTask(s.db.WithContext(ctx), c, id)
}

func (s *GanttService) getTask(db *gorm.DB, c Caller, id uint) (*model.GanttTask, error) {
	charts := db.Model(&model.GanttChart{}).Select("id").Where("project_id IN (?)", memberProjectIDs(db, c.UserID))
	var t model.GanttTask
	err := db.Preload("Dependencies", orderByID).Where("id = ? AND gantt_chart_id IN (?)", id, charts).First(&t).Error
	if err != nil {
		return nil, notFound(err, "gantt task")
	}
	return &t, nil
}

func (s *GanttService) UpdateTask(ctx context.Context, c Caller, id uint, req model.GanttTaskRequest) (*model.GanttTask, error) {
	var t *model.GanttTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if t, err = s.getTask(tx, c, id); err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Name != nil {
			t.Name = strings.TrimSpace(*req.Name)
			checkLen(v, "name", t.Name, 255, true)
		}
		start, end := time.Time(t.StartDate), time.Time(t.EndDate)
		if req.StartDate != nil {
			start = requiredDate(v, "start_date", req.StartDate)
		}
		if req.EndDate != nil {
			end = requiredDate(v, "end_date", req.EndDate)
		}
		checkGantt(v, start, end, req.Progress)
		if err := v.OrNil(); err != nil {
			return err
		}
		t.StartDate, t.EndDate = datatypes.Date(start), datatypes.Date(end)
		if req.Progress != nil {
			t.Progress = *req.Progress
		}
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return fmt.Errorf("save gantt task: %w", err)
		}
		if req.Dependencies != nil {
			deps, err := loadDependencies(tx, t.GanttChartID, *req.Dependencies)
			if err != nil {
				return err
			}
			a := tx.Model(t).Association("Dependencies")
			if len(deps) == 0 {
				err = a.Clear()
			} else {
				err = a.Replace(deps)
			}
			if err != nil {
				return fmt.Errorf("replace dependencies: %w", err)
			}
			t.Dependencies = deps
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes the task and every dependency edge touching it.
func (s *GanttService) DeleteTask(ctx context.Context, c Caller, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.getTask(tx, c, id)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM gantt_task_dependencies WHERE gantt_task_id = ? OR dependency_id = ?", t.ID, t.ID).Error; err != nil {
			return fmt.Errorf("delete dependency edges: %w", err)
		}
		return tx.Omit(clause.Associations).Delete(t).Error
	})
}

func loadDependencies(tx *gorm.DB, chartID uint, ids []uint) ([]model.GanttTask, error) {
	ids = appendUnique(nil, ids...)
	if len(ids) == 0 {
		return []model.GanttTask{}, nil
	}
	var deps []model.GanttTask
	if err := tx.Where("id IN ? AND gantt_chart_id = ?", ids, chartID).Order("id").Find(&deps).Error; err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	found := make(map[uint]bool, len(deps))
	for _, d := range deps {
		found[d.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, invalid("dependencies", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return deps, nil
}

func requiredDate(v *ValidationError, field string, s *string) time.Time {
	if s == nil || *s == "" {
		v.Add(field, "This field is required.")
		return time.Time{}
	}
	t, err := time.Parse(model.DateLayout, *s)
	if err != nil {
		v.Add(field, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		return time.Time{}
	}
	return t
}

func checkGantt(v *ValidationError, start, end time.Time, progress *int) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		v.Add("end_date", "End date must not be before start date.")
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		v.Add("progress", "Ensure this value is between 0 and 100.")
	}
}
