package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"projectly/internal/model"
)

type NotificationService struct{ db *gorm.DB }

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the caller's notifications newest first, optionally filtered
// by read state.
func (s *NotificationService) List(ctx context.Context, c Caller, isRead *bool) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).Preload("RelatedTask").Preload("RelatedProject").
		Where("user_id = ?", c.UserID)
	if isRead != nil {
		q = q.Where("is_read = ?", *isRead)
	}
	var out []model.Notification
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, c Caller) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", c.UserID, false).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkAllRead flips every unread notification of the caller and reports how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, c Caller) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", c.UserID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
