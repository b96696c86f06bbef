package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

// CollabService holds the project calendar and its message log.
type CollabService struct{ db *gorm.DB }

func NewCollabService(db *gorm.DB) *CollabService { return &CollabService{db: db} }

func (s *CollabService) ListEvents(ctx context.Context, c Caller, projectID uint) ([]model.Event, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var events []model.Event
	if err := db.Where("project_id = ?", projectID).Order("start_date, id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *CollabService) CreateEvent(ctx context.Context, c Caller, projectID uint, req model.EventRequest) (*model.Event, error) {
	e := model.Event{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedByID: c.UserID,
	}
	v := &ValidationError{}
	checkLen(v, "title", e.Title, 255, true)
	start := parseDateTime(v, "start_date", req.StartDate, true)
	end := parseDateTime(v, "end_date", req.EndDate, true)
	if start != nil && end != nil && end.Before(*start) {
		v.Add("end_date", "End date must not be before start date.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	e.StartDate, e.EndDate = *start, *end
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, projectID, c.UserID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&e).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *CollabService) ListCommunications(ctx context.Context, c Caller, projectID uint) ([]model.Communication, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, projectID, c.UserID); err != nil {
		return nil, err
	}
	var msgs []model.Communication
	err := db.Preload("Sender").Preload("Recipients", orderByID).
		Where("project_id = ?", projectID).Order("sent_at DESC, id DESC").Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	return msgs, nil
}

// CreateCommunication records a message sent by the caller to recipients.
func (s *CollabService) CreateCommunication(ctx context.Context, c Caller, projectID uint, req model.CommunicationRequest) (*model.Communication, error) {
	m := model.Communication{
		ProjectID: projectID,
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
		SenderID:  c.UserID,
	}
	v := &ValidationError{}
	checkLen(v, "subject", m.Subject, 255, true)
	if strings.TrimSpace(m.Message) == "" {
		v.Add("message", "This field is required.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := requireMember(tx, projectID, c.UserID); err != nil {
			return err
		}
		recipients, err := loadUsers(tx, "recipients", appendUnique(nil, req.Recipients...))
		if err != nil {
			return err
		}
		m.Recipients = recipients
		if err := tx.Omit("Project", "Sender", "Recipients.*").Create(&m).Error; err != nil {
			return fmt.Errorf("create communication: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := db.First(&m.Sender, c.UserID).Error; err != nil {
		return nil, notFound(err, "sender")
	}
	return &m, nil
}
