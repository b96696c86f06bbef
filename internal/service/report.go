package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/logger"
	"projectly/internal/model"
	"projectly/internal/storage"
)

// FileStore persists uploaded bytes and hands back a relative path.
type FileStore interface {
	Save(ctx context.Context, dir, filename string, r io.Reader) (*storage.Stored, error)
	Delete(path string) error
}

// Upload is one file taken from a multipart request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type ReportService struct {
	db    *gorm.DB
	store FileStore
}

func NewReportService(db *gorm.DB, store FileStore) *ReportService {
	return &ReportService{db: db, store: store}
}

func validReportType(t string) bool {
	switch t {
	case model.ReportProgress, model.ReportFinancial, model.ReportSummary, model.ReportStandard:
		return true
	}
	return false
}

// visibleReports keeps reports the caller created or that were shared with
// the caller.
func visibleReports(db *gorm.DB, uid uint) *gorm.DB {
	shared := db.Table("report_shared_with").Select("report_id").Where("user_id = ?", uid)
	return db.Where("(created_by_id = ? OR id IN (?))", uid, shared)
}

func preloadReport(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy").Preload("SharedWith", orderByID).Preload("Files", orderByID).Preload("Project")
}

func (s *ReportService) List(ctx context.Context, c Caller) ([]model.Report, error) {
	db := s.db.WithContext(ctx)
	var reports []model.Report
	if err := preloadReport(visibleReports(db, c.UserID)).Order("id").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) ListForProject(ctx context.Context, c Caller, projectID uint) ([]model.Report, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var reports []model.Report
	if err := preloadReport(db.Where("project_id = ?", projectID)).Order("id").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list project reports: %w", err)
	}
	return reports, nil
}

// Create stores a report owned by the caller. projectID, when non-nil,
// overrides the project in req.
func (s *ReportService) Create(ctx context.Context, c Caller, projectID *uint, req model.ReportRequest) (*model.Report, error) {
	r := model.Report{
		Title:       strings.TrimSpace(deref(req.Title)),
		ReportType:  model.ReportStandard,
		CreatedByID: c.UserID,
		ProjectID:   req.Project.Value,
	}
	if projectID != nil {
		r.ProjectID = projectID
	}
	if req.ReportType != nil {
		r.ReportType = *req.ReportType
	}
	v := &ValidationError{}
	checkLen(v, "title", r.Title, 255, true)
	if !validReportType(r.ReportType) {
		v.Add("report_type", fmt.Sprintf("%q is not a valid choice.", r.ReportType))
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if r.ProjectID != nil {
			if err := requireMember(tx, *r.ProjectID, c.UserID); err != nil {
				return err
			}
		}
		if req.SharedWith != nil {
			users, err := loadUsers(tx, "shared_with", appendUnique(nil, *req.SharedWith...))
			if err != nil {
				return err
			}
			r.SharedWith = users
		}
		if err := tx.Omit("CreatedBy", "Project", "Files", "SharedWith.*").Create(&r).Error; err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(db, r.ID)
}

func (s *ReportService) load(db *gorm.DB, id uint) (*model.Report, error) {
	var r model.Report
	if err := preloadReport(db).First(&r, id).Error; err != nil {
		return nil, notFound(err, "report")
	}
	return &r, nil
}

func (s *ReportService) Get(ctx context.Context, c Caller, id uint) (*model.Report, error) {
	return s.get(s.db.WithContext(ctx), c, id)
}

func (s *ReportService) get(db *gorm.DB, c Caller, id uint) (*model.Report, error) {
	var r model.Report
	if err := preloadReport(visibleReports(db, c.UserID)).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, notFound(err, "report")
	}
	return &r, nil
}

func (s *ReportService) Update(ctx context.Context, c Caller, id uint, req model.ReportRequest) (*model.Report, error) {
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := s.get(tx, c, id)
		if err != nil {
			return err
		}
		v := &ValidationError{}
		if req.Title != nil {
			r.Title = strings.TrimSpace(*req.Title)
			checkLen(v, "title", r.Title, 255, true)
		}
		if req.ReportType != nil {
			if !validReportType(*req.ReportType) {
				v.Add("report_type", fmt.Sprintf("%q is not a valid choice.", *req.ReportType))
			}
			r.ReportType = *req.ReportType
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		if req.Project.Set {
			if req.Project.Value != nil {
				if err := requireMember(tx, *req.Project.Value, c.UserID); err != nil {
					return err
				}
			}
			r.ProjectID = req.Project.Value
			r.Project = nil
		}
		if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		if req.SharedWith != nil {
			users, err := loadUsers(tx, "shared_with", appendUnique(nil, *req.SharedWith...))
			if err != nil {
				return err
			}
			return replaceUsers(tx, r, "SharedWith", users)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(db, id)
}

// Delete removes the report with its files, including the stored bytes.
func (s *ReportService) Delete(ctx context.Context, c Caller, id uint) error {
	var files []model.ReportFile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.get(tx, c, id)
		if err != nil {
			return err
		}
		files = r.Files
		if err := tx.Model(r).Association("SharedWith").Clear(); err != nil {
			return fmt.Errorf("clear shares: %w", err)
		}
		if err := tx.Where("report_id = ?", r.ID).Delete(&model.ReportFile{}).Error; err != nil {
			return fmt.Errorf("delete report files: %w", err)
		}
		return tx.Omit(clause.Associations).Delete(r).Error
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.store.Delete(f.File); err != nil {
			logger.Warn("report.file_cleanup", "report_id", id, "file", f.File, "err", err)
		}
	}
	return nil
}

// AddFile attaches an upload to a report; only the creator may do so.
func (s *ReportService) AddFile(ctx context.Context, c Caller, reportID uint, up Upload) (*model.ReportFile, error) {
	db := s.db.WithContext(ctx)
	r, err := s.get(db, c, reportID)
	if err != nil {
		return nil, err
	}
	if r.CreatedByID != c.UserID {
		return nil, ErrForbidden
	}
	st, err := s.store.Save(ctx, storage.DatedDir("reports", time.Now()), up.Filename, up.Reader)
	if err != nil {
		return nil, fmt.Errorf("store report file: %w", err)
	}
	f := model.ReportFile{ReportID: r.ID, File: st.Path, ContentType: st.ContentType, Size: st.Size}
	if err := db.Omit(clause.Associations).Create(&f).Error; err != nil {
		if derr := s.store.Delete(st.Path); derr != nil {
			logger.Warn("report.file_cleanup", "report_id", r.ID, "file", st.Path, "err", derr)
		}
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return &f, nil
}

var reportColumns = []string{"ID", "Title", "Type", "Project", "Created By", "Created At", "Files", "Shared With"}

// Export writes the caller's visible reports as an XLSX workbook.
func (s *ReportService) Export(ctx context.Context, c Caller, w io.Writer) error {
	reports, err := s.List(ctx, c)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Reports"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &reportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range reports {
		project := ""
		if r.Project != nil {
			project = r.Project.Name
		}
		files := make([]string, 0, len(r.Files))
		for _, rf := range r.Files {
			files = append(files, storage.BaseName(rf.File))
		}
		shared := make([]string, 0, len(r.SharedWith))
		for _, u := range r.SharedWith {
			shared = append(shared, u.Email)
		}
		row := []interface{}{
			r.ID, r.Title, r.ReportType, project, r.CreatedBy.Email,
			r.CreatedAt.Format(time.RFC3339), strings.Join(files, ", "), strings.Join(shared, ", "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	logger.Info("report.export", "uid", c.UserID, "rows", len(reports))
	return nil
}
