package service

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"projectly/internal/model"
)

// Caller is the authenticated user a request acts for.
type Caller struct {
	UserID uint
	Email  string
}

// memberProjectIDs selects the IDs of projects uid is a member of, for use
// as an IN subquery.
func memberProjectIDs(db *gorm.DB, uid uint) *gorm.DB {
	return db.Table("project_members").Select("project_id").Where("user_id = ?", uid)
}

// requireMember reports ErrNotFound unless uid is a member of the project,
// hiding projects the caller cannot see.
func requireMember(db *gorm.DB, projectID, uid uint) error {
	var n int64
	err := db.Table("project_members").
		Where("project_id = ? AND user_id = ?", projectID, uid).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// loadUsers resolves ids to users, rejecting unknown ones the way a
// primary-key field would.
func loadUsers(db *gorm.DB, field string, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := db.Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", field, err)
	}
	found := make(map[uint]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, invalid(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return users, nil
}

func checkLen(v *ValidationError, field, value string, max int, required bool) {
	switch {
	case required && value == "":
		v.Add(field, "This field is required.")
	case len([]rune(value)) > max:
		v.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
	}
}

// dateTimeLayouts are the accepted datetime inputs; values without an offset
// are taken as UTC.
var dateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}

// parseDateTime reads an ISO 8601 datetime field, recording a field error
// when it is malformed or required but missing.
func parseDateTime(v *ValidationError, field string, s *string, required bool) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		if required {
			v.Add(field, "This field is required.")
		}
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
			return &t
		}
	}
	v.Add(field, "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z].")
	return nil
}
