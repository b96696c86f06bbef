package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/logger"
	"projectly/internal/model"
	"projectly/internal/storage"
)

// FileService stores project attachments, shared files and anonymous quick
// uploads. Bytes go to the FileStore, metadata to the database.
type FileService struct {
	db    *gorm.DB
	store FileStore
}

func NewFileService(db *gorm.DB, store FileStore) *FileService {
	return &FileService{db: db, store: store}
}

func (s *FileService) ListAttachments(ctx context.Context, c Caller, projectID uint) ([]model.Attachment, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var out []model.Attachment
	if err := db.Where("project_id = ?", projectID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

// CreateAttachment stores up under attachments/. An empty name falls back to
// the uploaded file name.
func (s *FileService) CreateAttachment(ctx context.Context, c Caller, projectID uint, up Upload, name string) (*model.Attachment, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = up.Filename
	}
	v := &ValidationError{}
	checkLen(v, "name", name, 255, false)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	st, err := s.store.Save(ctx, "attachments", up.Filename, up.Reader)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	a := model.Attachment{
		ProjectID: projectID, File: st.Path, Name: name,
		ContentType: st.ContentType, Size: st.Size, UploadedByID: c.UserID,
	}
	if err := db.Omit(clause.Associations).Create(&a).Error; err != nil {
		s.cleanup([]string{st.Path})
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	logger.Info("attachment.create", "project_id", projectID, "uid", c.UserID, "size", st.Size)
	return &a, nil
}

func visibleShares(db *gorm.DB, uid uint) *gorm.DB {
	shared := db.Table("file_share_shared_with").Select("file_share_id").Where("user_id = ?", uid)
	return db.Where("(uploaded_by_id = ? OR id IN (?) OR project_id IN (?))", uid, shared, memberProjectIDs(db, uid))
}

func preloadShare(db *gorm.DB) *gorm.DB {
	return db.Preload("UploadedBy").Preload("SharedWith", orderByID).Preload("Project")
}

// ListShares returns shares the caller uploaded, received, or can see
// through project membership.
func (s *FileService) ListShares(ctx context.Context, c Caller, projectID *uint) ([]model.FileShare, error) {
	q := preloadShare(visibleShares(s.db.WithContext(ctx), c.UserID))
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var out []model.FileShare
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return out, nil
}

// Share stores every upload as a separate FileShare with the same project,
// recipients and description.
func (s *FileService) Share(ctx context.Context, c Caller, req model.ShareRequest, uploads []Upload) ([]model.FileShare, error) {
	if len(uploads) == 0 {
		return nil, invalid("file", "No file was submitted.")
	}
	db := s.db.WithContext(ctx)
	if req.Project != nil {
		if err := requireMember(db, *req.Project, c.UserID); err != nil {
			return nil, err
		}
	}
	recipients, err := loadUsers(db, "shared_with", appendUnique(nil, req.SharedWith...))
	if err != nil {
		return nil, err
	}

	dir := storage.DatedDir("shared_files", time.Now())
	shares := make([]model.FileShare, 0, len(uploads))
	var saved []string
	for _, up := range uploads {
		st, err := s.store.Save(ctx, dir, up.Filename, up.Reader)
		if err != nil {
			s.cleanup(saved)
			return nil, fmt.Errorf("store shared file: %w", err)
		}
		saved = append(saved, st.Path)
		shares = append(shares, model.FileShare{
			File: st.Path, Name: up.Filename, Description: req.Description,
			ContentType: st.ContentType, Size: st.Size,
			UploadedByID: c.UserID, ProjectID: req.Project, SharedWith: recipients,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range shares {
			if err := tx.Omit("UploadedBy", "Project", "SharedWith.*").Create(&shares[i]).Error; err != nil {
				return fmt.Errorf("create share: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cleanup(saved)
		return nil, err
	}

	ids := make([]uint, len(shares))
	for i, sh := range shares {
		ids[i] = sh.ID
	}
	var out []model.FileShare
	if err := preloadShare(db).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reload shares: %w", err)
	}
	logger.Info("file.share", "uid", c.UserID, "files", len(out), "recipients", len(recipients))
	return out, nil
}

// QuickUpload stores files under uploads/ on behalf of uploader. Either every
// file is recorded or none is.
func (s *FileService) QuickUpload(ctx context.Context, uploader uint, uploads []Upload) ([]model.FileShare, error) {
	out := make([]model.FileShare, 0, len(uploads))
	var saved []string
	for _, up := range uploads {
		st, err := s.store.Save(ctx, "uploads", up.Filename, up.Reader)
		if err != nil {
			s.cleanup(saved)
			return nil, fmt.Errorf("store upload: %w", err)
		}
		saved = append(saved, st.Path)
		out = append(out, model.FileShare{
			File: st.Path, Name: up.Filename,
			ContentType: st.ContentType, Size: st.Size, UploadedByID: uploader,
		})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range out {
			if err := tx.Omit(clause.Associations).Create(&out[i]).Error; err != nil {
				return fmt.Errorf("create upload: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cleanup(saved)
		return nil, err
	}
	return out, nil
}

func (s *FileService) cleanup(paths []string) {
	for _, p := range paths {
		if err := s.store.Delete(p); err != nil {
			logger.Warn("file.cleanup", "file", p, "err", err)
		}
	}
}
